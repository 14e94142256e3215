package impl

import (
	"context"
	"log/slog"
	"time"

	deliverycontext "warden/internal/delivery/context"
	"warden/internal/domain/entity"
	domainerrors "warden/internal/domain/errors"
	"warden/internal/domain/repository"
	"warden/internal/domain/service"
	"warden/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// sessionService implements the SessionUsecase interface.
type sessionService struct {
	txManager   repository.TransactionManager
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	tokens      service.TokenService
	logger      *slog.Logger
	now         func() time.Time
}

// SessionServiceParams holds dependencies for sessionService, injected by Fx.
type SessionServiceParams struct {
	fx.In

	TxManager   repository.TransactionManager
	UserRepo    repository.UserRepository
	SessionRepo repository.SessionRepository
	Tokens      service.TokenService
	Logger      *slog.Logger
}

// NewSessionService is the constructor for sessionService.
func NewSessionService(params SessionServiceParams) usecase.SessionUsecase {
	return &sessionService{
		txManager:   params.TxManager,
		userRepo:    params.UserRepo,
		sessionRepo: params.SessionRepo,
		tokens:      params.Tokens,
		logger:      params.Logger,
		now:         time.Now,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *sessionService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Resolve validates a raw token. The owner is re-fetched on every
// resolution: a session whose user vanished mid-deletion is treated as
// invalid even before its physical purge.
func (srv *sessionService) Resolve(ctx context.Context, token string) (*usecase.ResolvedSession, error) {
	if token == "" {
		return nil, domainerrors.ErrNotAuthenticated
	}

	tokenHash := srv.tokens.HashToken(token)

	session, err := srv.sessionRepo.FindByTokenHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, domainerrors.ErrNotAuthenticated
		}
		srv.log(ctx).Error("Failed to resolve session", slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to resolve session")
	}

	// The store already filters expired rows; re-checking here keeps the
	// expiry invariant independent of the lookup's SQL.
	if !session.Active(srv.now()) {
		return nil, domainerrors.ErrNotAuthenticated
	}

	user, err := srv.userRepo.FindByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			srv.log(ctx).Warn("Session resolved to missing user", slog.Any("sessionID", session.ID))

			return nil, domainerrors.ErrNotAuthenticated
		}
		srv.log(ctx).Error("Failed to load session owner", slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to load session owner")
	}

	return &usecase.ResolvedSession{Session: session, User: user}, nil
}

// ListSessions returns the client-safe view of a user's live sessions.
func (srv *sessionService) ListSessions(ctx context.Context, userID uuid.UUID, currentTokenHash string) ([]*entity.SessionInfo, error) {
	srv.log(ctx).Debug("Listing sessions", slog.Any("userID", userID))

	sessions, err := srv.sessionRepo.ListByUserID(ctx, userID)
	if err != nil {
		srv.log(ctx).Error("Failed to list sessions", slog.Any("error", err), slog.Any("userID", userID))

		return nil, errors.Wrap(err, "failed to list sessions")
	}

	infos := make([]*entity.SessionInfo, 0, len(sessions))
	for _, session := range sessions {
		infos = append(infos, session.Info(session.TokenHash == currentTokenHash))
	}

	return infos, nil
}

// RevokeSession revokes one session by ID after checking ownership.
func (srv *sessionService) RevokeSession(ctx context.Context, userID, sessionID uuid.UUID) error {
	srv.log(ctx).Info("Revoking session", slog.Any("userID", userID), slog.Any("sessionID", sessionID))

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		sessionRepo := repoFactory.SessionRepo()

		session, err := sessionRepo.FindByID(ctx, sessionID)
		if err != nil {
			if errors.Is(err, repository.ErrSessionNotFound) {
				return errors.Wrap(domainerrors.ErrNotFound, "session not found")
			}

			return errors.Wrap(err, "failed to find session")
		}

		if session.UserID != userID {
			return errors.Wrap(domainerrors.ErrForbidden, "session does not belong to user")
		}

		if err := sessionRepo.DeleteByID(ctx, sessionID); err != nil {
			return errors.Wrap(err, "failed to delete session")
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to revoke session", slog.Any("error", err), slog.Any("userID", userID), slog.Any("sessionID", sessionID))

		return errors.Wrap(err, "failed to revoke session")
	}

	srv.log(ctx).Info("Session revoked", slog.Any("userID", userID), slog.Any("sessionID", sessionID))

	return nil
}

// CleanupExpired purges expired session records. Expired sessions are
// already inert; the purge only reclaims storage.
func (srv *sessionService) CleanupExpired(ctx context.Context) (int64, error) {
	deleted, err := srv.sessionRepo.DeleteExpired(ctx)
	if err != nil {
		srv.log(ctx).Error("Failed to cleanup expired sessions", slog.Any("error", err))

		return 0, errors.Wrap(err, "failed to cleanup expired sessions")
	}

	if deleted > 0 {
		srv.log(ctx).Info("Cleaned up expired sessions", slog.Int64("deletedCount", deleted))
	}

	return deleted, nil
}
