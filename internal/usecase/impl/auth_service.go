// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"warden/config"
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

const (
	operationLogin    = "login"
	operationRegister = "register"

	// sharedIdentity is the rate-limit bucket used when the transport could
	// not determine a client IP. Degraded but safe: unknown callers share
	// one allowance instead of bypassing the limiter.
	sharedIdentity = "unknown"

	maxEmailLength = 255
)

// authService implements the AuthUsecase interface. It is the orchestrator:
// each operation is an ordered pipeline where an early failure short-circuits
// every later step.
type authService struct {
	txManager   repository.TransactionManager
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	hasher      service.PasswordHasher
	policy      service.PasswordPolicy
	tokens      service.TokenService
	limiter     service.RateLimiter
	authCfg     *config.AuthConfig
	rateCfg     *config.RateLimitConfig
	logger      *slog.Logger
	now         func() time.Time
}

// AuthServiceParams holds dependencies for authService, injected by Fx.
type AuthServiceParams struct {
	fx.In

	TxManager   repository.TransactionManager
	UserRepo    repository.UserRepository
	SessionRepo repository.SessionRepository
	Hasher      service.PasswordHasher
	Policy      service.PasswordPolicy
	Tokens      service.TokenService
	Limiter     service.RateLimiter
	Config      *config.Config
	Logger      *slog.Logger
}

// NewAuthService is the constructor for authService. It receives all dependencies as interfaces.
func NewAuthService(params AuthServiceParams) usecase.AuthUsecase {
	return &authService{
		txManager:   params.TxManager,
		userRepo:    params.UserRepo,
		sessionRepo: params.SessionRepo,
		hasher:      params.Hasher,
		policy:      params.Policy,
		tokens:      params.Tokens,
		limiter:     params.Limiter,
		authCfg:     params.Config.Auth,
		rateCfg:     params.Config.RateLimit,
		logger:      params.Logger,
		now:         time.Now,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *authService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

func rateIdentity(req usecase.RequestContext) string {
	if req.ClientIP == "" {
		return sharedIdentity
	}

	return req.ClientIP
}

// admit runs the rate limiter for one operation and translates exhaustion
// into the application error. Rejected attempts still count against the
// window, so retry storms cannot reset it.
func (srv *authService) admit(ctx context.Context, req usecase.RequestContext, operation string, limit config.OperationLimit) error {
	identity := rateIdentity(req)

	_, resetAt, err := srv.limiter.Admit(identity, operation, limit.Limit, limit.Window)
	if err != nil {
		srv.log(ctx).Warn("Rate limit exceeded",
			slog.String("operation", operation),
			slog.String("identity", identity),
			slog.Time("resetAt", resetAt),
		)

		return domainerrors.ErrRateLimitExceeded.WithDetails(
			fmt.Sprintf("retry after %s", resetAt.UTC().Format(time.RFC3339)),
		)
	}

	return nil
}

// Register orchestrates account creation: rate limit, shape validation,
// password policy, then insert.
func (srv *authService) Register(ctx context.Context, input *usecase.RegisterInput) (*usecase.RegisterOutput, error) {
	if err := srv.admit(ctx, input.Request, operationRegister, srv.rateCfg.Register); err != nil {
		return nil, err
	}

	email := entity.NormalizeEmail(input.Email)
	if err := validateEmailShape(email); err != nil {
		return nil, err
	}

	evaluation := srv.policy.Evaluate(input.Password)
	if !evaluation.Accepted {
		return nil, domainerrors.ErrPasswordPolicy.WithDetails(strings.Join(evaluation.Violations, "; "))
	}

	hashedPassword, err := srv.hasher.Hash(input.Password)
	if err != nil {
		srv.log(ctx).Error("Failed to hash password during registration", slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to hash password during registration")
	}

	newUser := &entity.User{
		Email:        email,
		DisplayName:  strings.TrimSpace(input.DisplayName),
		PasswordHash: hashedPassword,
		Preferences: entity.Preferences{
			Notifications: true,
			Theme:         entity.ThemeLight,
		},
	}

	if err := srv.userRepo.Create(ctx, newUser); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			srv.log(ctx).Warn("Registration attempted with registered email", slog.String("email", email))

			return nil, srv.emailTakenError()
		}
		srv.log(ctx).Error("Failed to create user during registration", slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to create user during registration")
	}

	srv.log(ctx).Info("User registered", slog.Any("userID", newUser.ID))

	return &usecase.RegisterOutput{User: newUser.Public()}, nil
}

// emailTakenError picks the disclosure variant for a duplicate email.
// Muting the conflict keeps registration responses enumeration-safe in
// production while staying explicit in development.
func (srv *authService) emailTakenError() error {
	if srv.authCfg.RevealRegisteredEmail {
		return domainerrors.ErrEmailAlreadyExists
	}

	return domainerrors.ErrRegistrationFailed
}

func validateEmailShape(email string) error {
	if email == "" {
		return domainerrors.ErrValidationFailed.WithDetails("email is required")
	}
	if len(email) > maxEmailLength {
		return domainerrors.ErrValidationFailed.WithDetails("email exceeds maximum length")
	}
	at := strings.IndexByte(email, '@')
	if at <= 0 || at == len(email)-1 {
		return domainerrors.ErrValidationFailed.WithDetails("email is malformed")
	}

	return nil
}

// Login verifies credentials and issues a session. Lockout is checked
// before verification: a locked account rejects even the correct password
// without touching the attempt counter.
func (srv *authService) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.LoginOutput, error) {
	if err := srv.admit(ctx, input.Request, operationLogin, srv.rateCfg.Login); err != nil {
		return nil, err
	}

	email := entity.NormalizeEmail(input.Email)

	user, err := srv.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			// Indistinguishable from a wrong password.
			srv.log(ctx).Warn("Login failed", slog.String("email", email))

			return nil, domainerrors.ErrInvalidCredentials
		}
		srv.log(ctx).Error("Failed to load user during login", slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to find user by email")
	}

	now := srv.now()
	if user.Locked(now) {
		srv.log(ctx).Warn("Login rejected for locked account", slog.Any("userID", user.ID))

		return nil, lockedError(user.LockoutRemaining(now))
	}

	// bcrypt is CPU-bound; it runs outside any transaction.
	if !srv.hasher.Check(input.Password, user.PasswordHash) {
		return nil, srv.handleFailedAttempt(ctx, user.ID)
	}

	if err := srv.userRepo.RecordSuccessfulLogin(ctx, user.ID, now); err != nil {
		srv.log(ctx).Error("Failed to record successful login", slog.Any("error", err), slog.Any("userID", user.ID))

		return nil, errors.Wrap(err, "failed to record successful login")
	}
	user.FailedAttempts = 0
	user.LockedUntil = nil
	user.LastLoginAt = &now

	ttl := srv.authCfg.SessionTTL
	if input.RememberMe {
		ttl = srv.authCfg.RememberMeTTL
	}

	token, expiresAt, err := srv.issueSession(ctx, user.ID, ttl, input.Request)
	if err != nil {
		return nil, err
	}

	srv.log(ctx).Debug("User logged in", slog.Any("userID", user.ID))

	return &usecase.LoginOutput{
		Token:     token,
		ExpiresAt: expiresAt,
		TTL:       ttl,
		User:      user.Public(),
	}, nil
}

// handleFailedAttempt records the failure atomically and reports either the
// lockout or the generic credential error with attempts remaining.
func (srv *authService) handleFailedAttempt(ctx context.Context, userID uuid.UUID) error {
	now := srv.now()

	state, err := srv.userRepo.RecordFailedAttempt(ctx, userID, srv.authCfg.MaxFailedAttempts, now.Add(srv.authCfg.LockoutDuration))
	if err != nil {
		srv.log(ctx).Error("Failed to record failed login attempt", slog.Any("error", err), slog.Any("userID", userID))

		return errors.Wrap(err, "failed to record failed login attempt")
	}

	if state.Locked(now) {
		srv.log(ctx).Warn("Account locked after repeated failures",
			slog.Any("userID", userID),
			slog.Int("failedAttempts", state.FailedAttempts),
		)

		return lockedError(state.LockedUntil.Sub(now))
	}

	remaining := srv.authCfg.MaxFailedAttempts - state.FailedAttempts
	srv.log(ctx).Warn("Login failed",
		slog.Any("userID", userID),
		slog.Int("attemptsRemaining", remaining),
	)

	return domainerrors.ErrInvalidCredentials.WithDetails(
		fmt.Sprintf("%d attempts remaining before lockout", remaining),
	)
}

func lockedError(remaining time.Duration) error {
	return domainerrors.ErrAccountLocked.WithDetails(
		fmt.Sprintf("locked for another %s", remaining.Round(time.Second)),
	)
}

// issueSession mints a fresh opaque token and stores its hash. With a
// session cap configured, count and insert share one transaction so
// concurrent logins cannot both squeeze under the limit.
func (srv *authService) issueSession(ctx context.Context, userID uuid.UUID, ttl time.Duration, req usecase.RequestContext) (string, time.Time, error) {
	token, err := srv.tokens.NewToken()
	if err != nil {
		srv.log(ctx).Error("Failed to generate session token", slog.Any("error", err))

		return "", time.Time{}, errors.Wrap(err, "failed to generate session token")
	}

	session := &entity.Session{
		UserID:    userID,
		TokenHash: srv.tokens.HashToken(token),
		ExpiresAt: srv.now().Add(ttl),
		IPAddress: req.ClientIP,
		UserAgent: req.UserAgent,
	}

	if srv.authCfg.MaxActiveSessions > 0 {
		err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
			sessionRepo := repoFactory.SessionRepo()

			active, countErr := sessionRepo.CountActiveByUserID(ctx, userID)
			if countErr != nil {
				return errors.Wrap(countErr, "failed to count active sessions")
			}
			if active >= srv.authCfg.MaxActiveSessions {
				return errors.Wrap(domainerrors.ErrSessionLimitExceeded, "active session limit exceeded")
			}

			return sessionRepo.Create(ctx, session)
		})
	} else {
		err = srv.sessionRepo.Create(ctx, session)
	}
	if err != nil {
		srv.log(ctx).Error("Failed to store session", slog.Any("error", err), slog.Any("userID", userID))

		return "", time.Time{}, errors.Wrap(err, "failed to store session")
	}

	return token, session.ExpiresAt, nil
}

// Logout revokes the caller's session. It is deliberately fail-soft: even
// when the store is unreachable the caller observes a logged-out outcome,
// so the client-held credential can always be cleared.
func (srv *authService) Logout(ctx context.Context, token string) {
	if token == "" {
		return
	}

	tokenHash := srv.tokens.HashToken(token)
	if err := srv.sessionRepo.DeleteByTokenHash(ctx, tokenHash); err != nil {
		srv.log(ctx).Error("Failed to delete session during logout", slog.Any("error", err))

		return
	}

	srv.log(ctx).Debug("Session revoked")
}

// LogoutAll revokes every session of the token's owner. An unresolvable
// token is a client error here, unlike the silent single-logout path.
func (srv *authService) LogoutAll(ctx context.Context, token string) (*usecase.LogoutAllOutput, error) {
	tokenHash := srv.tokens.HashToken(token)

	session, err := srv.sessionRepo.FindByTokenHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, domainerrors.ErrNotAuthenticated
		}
		srv.log(ctx).Error("Failed to resolve session for logout-all", slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to resolve session")
	}

	revoked, err := srv.sessionRepo.DeleteAllByUserID(ctx, session.UserID)
	if err != nil {
		srv.log(ctx).Error("Failed to revoke all sessions", slog.Any("error", err), slog.Any("userID", session.UserID))

		return nil, errors.Wrap(err, "failed to revoke all sessions")
	}

	srv.log(ctx).Info("Revoked all sessions", slog.Any("userID", session.UserID), slog.Int64("revokedCount", revoked))

	return &usecase.LogoutAllOutput{RevokedCount: revoked}, nil
}

// GetProfile returns the public view of the authenticated user.
func (srv *authService) GetProfile(ctx context.Context, userID uuid.UUID) (*entity.PublicUser, error) {
	user, err := srv.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, domainerrors.ErrNotFound.WrapMessage("user not found")
		}

		return nil, errors.Wrap(err, "failed to find user")
	}

	return user.Public(), nil
}

// UpdateProfile applies the patch. A password rotation re-verifies the
// current password, then updates the digest and revokes every sibling
// session in one transaction, sparing the initiating one.
func (srv *authService) UpdateProfile(ctx context.Context, userID uuid.UUID, currentTokenHash string, input *usecase.UpdateProfileInput) (*entity.PublicUser, error) {
	user, err := srv.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, domainerrors.ErrNotFound.WrapMessage("user not found")
		}

		return nil, errors.Wrap(err, "failed to find user")
	}

	patch, err := srv.buildProfilePatch(ctx, user, input)
	if err != nil {
		return nil, err
	}

	if input.PasswordChanged() {
		err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
			if err := repoFactory.UserRepo().UpdateProfile(ctx, userID, patch); err != nil {
				return errors.Wrap(err, "failed to update user profile")
			}

			revoked, err := repoFactory.SessionRepo().DeleteAllByUserIDExcept(ctx, userID, currentTokenHash)
			if err != nil {
				return errors.Wrap(err, "failed to revoke sibling sessions")
			}
			srv.log(ctx).Info("Password changed, sibling sessions revoked",
				slog.Any("userID", userID),
				slog.Int64("revokedCount", revoked),
			)

			return nil
		})
	} else {
		err = srv.userRepo.UpdateProfile(ctx, userID, patch)
	}
	if err != nil {
		srv.log(ctx).Error("Failed to update profile", slog.Any("error", err), slog.Any("userID", userID))

		return nil, errors.Wrap(err, "failed to update profile")
	}

	updated, err := srv.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to reload user after update")
	}

	return updated.Public(), nil
}

// buildProfilePatch validates the input and translates it into a storage
// patch. Preference fields merge shallowly: unsupplied fields keep their
// stored values.
func (srv *authService) buildProfilePatch(ctx context.Context, user *entity.User, input *usecase.UpdateProfileInput) (repository.ProfilePatch, error) {
	var patch repository.ProfilePatch

	if input.DisplayName != nil {
		trimmed := strings.TrimSpace(*input.DisplayName)
		patch.DisplayName = &trimmed
	}
	patch.Notifications = input.Notifications
	if input.Theme != nil {
		if !input.Theme.Valid() {
			return repository.ProfilePatch{}, domainerrors.ErrValidationFailed.WithDetails("unknown theme")
		}
		patch.Theme = input.Theme
	}

	if input.PasswordChanged() {
		if input.CurrentPassword == nil {
			return repository.ProfilePatch{}, domainerrors.ErrValidationFailed.WithDetails("currentPassword is required to change the password")
		}
		if !srv.hasher.Check(*input.CurrentPassword, user.PasswordHash) {
			srv.log(ctx).Warn("Password change rejected, current password mismatch", slog.Any("userID", user.ID))

			return repository.ProfilePatch{}, domainerrors.ErrInvalidCurrentPassword
		}

		evaluation := srv.policy.Evaluate(*input.NewPassword)
		if !evaluation.Accepted {
			return repository.ProfilePatch{}, domainerrors.ErrPasswordPolicy.WithDetails(strings.Join(evaluation.Violations, "; "))
		}

		hashed, err := srv.hasher.Hash(*input.NewPassword)
		if err != nil {
			return repository.ProfilePatch{}, errors.Wrap(err, "failed to hash new password")
		}
		patch.PasswordHash = &hashed
	}

	return patch, nil
}

// DeleteAccount removes the account after re-verifying the password. The
// session purge and the user delete commit or roll back together, so no
// window exists where a deleted user's session still validates.
func (srv *authService) DeleteAccount(ctx context.Context, userID uuid.UUID, currentTokenHash string, input *usecase.DeleteAccountInput) error {
	user, err := srv.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return domainerrors.ErrNotFound.WrapMessage("user not found")
		}

		return errors.Wrap(err, "failed to find user")
	}

	if !srv.hasher.Check(input.Password, user.PasswordHash) {
		srv.log(ctx).Warn("Account deletion rejected, password mismatch", slog.Any("userID", userID))

		return domainerrors.ErrInvalidPassword
	}

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		if _, err := repoFactory.SessionRepo().DeleteAllByUserID(ctx, userID); err != nil {
			return errors.Wrap(err, "failed to delete user sessions")
		}

		if err := repoFactory.UserRepo().Delete(ctx, userID); err != nil {
			return errors.Wrap(err, "failed to delete user")
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to execute account deletion transaction", slog.Any("error", err), slog.Any("userID", userID))

		return errors.Wrap(err, "failed to execute account deletion transaction")
	}

	srv.log(ctx).Info("Account deleted", slog.Any("userID", userID))

	return nil
}

// EvaluatePassword scores a candidate password for client feedback.
func (srv *authService) EvaluatePassword(candidate string) service.PolicyEvaluation {
	return srv.policy.Evaluate(candidate)
}
