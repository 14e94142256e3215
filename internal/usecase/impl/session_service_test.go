package impl

import (
	"context"
	"testing"
	"time"

	"warden/internal/domain/entity"
	"warden/internal/domain/repository"
	mockRepo "warden/internal/mocks/repository"
	mockSvc "warden/internal/mocks/service"
	"warden/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// sessionServiceFixtures holds all test dependencies for session service tests.
type sessionServiceFixtures struct {
	service     usecase.SessionUsecase
	txManager   *mockRepo.MockTransactionManager
	userRepo    *mockRepo.MockUserRepository
	sessionRepo *mockRepo.MockSessionRepository
	tokens      *mockSvc.MockTokenService
}

func createTestSessionService(t *testing.T) sessionServiceFixtures {
	txManager := mockRepo.NewMockTransactionManager(t)
	userRepo := mockRepo.NewMockUserRepository(t)
	sessionRepo := mockRepo.NewMockSessionRepository(t)
	tokens := mockSvc.NewMockTokenService(t)

	srv := NewSessionService(SessionServiceParams{
		TxManager:   txManager,
		UserRepo:    userRepo,
		SessionRepo: sessionRepo,
		Tokens:      tokens,
		Logger:      newDiscardLogger(),
	})

	return sessionServiceFixtures{
		service:     srv,
		txManager:   txManager,
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		tokens:      tokens,
	}
}

func TestSessionService_Resolve_Success(t *testing.T) {
	fx := createTestSessionService(t)
	ctx := context.Background()
	userID := uuid.New()
	session := &entity.Session{
		ID:        uuid.New(),
		UserID:    userID,
		TokenHash: "token-hash",
		ExpiresAt: time.Now().Add(time.Hour),
	}
	user := &entity.User{ID: userID, Email: "a@b.com"}

	fx.tokens.On("HashToken", "raw-token").Return("token-hash")
	fx.sessionRepo.On("FindByTokenHash", ctx, "token-hash").Return(session, nil)
	fx.userRepo.On("FindByID", ctx, userID).Return(user, nil)

	resolved, err := fx.service.Resolve(ctx, "raw-token")

	require.NoError(t, err)
	assert.Equal(t, session.ID, resolved.Session.ID)
	assert.Equal(t, userID, resolved.User.ID)
}

func TestSessionService_Resolve_EmptyToken(t *testing.T) {
	fx := createTestSessionService(t)

	_, err := fx.service.Resolve(context.Background(), "")

	assertAppErrorCode(t, err, "NOT_AUTHENTICATED")
}

func TestSessionService_Resolve_AbsentSession(t *testing.T) {
	fx := createTestSessionService(t)
	ctx := context.Background()

	fx.tokens.On("HashToken", "stale").Return("stale-hash")
	fx.sessionRepo.On("FindByTokenHash", ctx, "stale-hash").
		Return(nil, repository.ErrSessionNotFound)

	_, err := fx.service.Resolve(ctx, "stale")

	assertAppErrorCode(t, err, "NOT_AUTHENTICATED")
}

func TestSessionService_Resolve_ExpiredSessionIsInvalid(t *testing.T) {
	fx := createTestSessionService(t)
	ctx := context.Background()
	issuedAt := time.Now()
	session := &entity.Session{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		TokenHash: "token-hash",
		ExpiresAt: issuedAt.Add(24 * time.Hour),
	}

	// Step the clock one second past the expiry instant. The row is still
	// present in the store, so validity must come from the expiry check
	// alone, with no renewal side effect.
	fx.service.(*sessionService).now = func() time.Time {
		return issuedAt.Add(24*time.Hour + time.Second)
	}

	fx.tokens.On("HashToken", "raw-token").Return("token-hash")
	fx.sessionRepo.On("FindByTokenHash", ctx, "token-hash").Return(session, nil)

	resolved, err := fx.service.Resolve(ctx, "raw-token")

	assert.Nil(t, resolved)
	assertAppErrorCode(t, err, "NOT_AUTHENTICATED")
	fx.userRepo.AssertNotCalled(t, "FindByID")
}

func TestSessionService_Resolve_OrphanedSessionIsInvalid(t *testing.T) {
	fx := createTestSessionService(t)
	ctx := context.Background()
	userID := uuid.New()
	session := &entity.Session{
		ID:        uuid.New(),
		UserID:    userID,
		TokenHash: "token-hash",
		ExpiresAt: time.Now().Add(time.Hour),
	}

	fx.tokens.On("HashToken", "raw-token").Return("token-hash")
	fx.sessionRepo.On("FindByTokenHash", ctx, "token-hash").Return(session, nil)
	// Owner deleted mid-purge: the session must not validate.
	fx.userRepo.On("FindByID", ctx, userID).Return(nil, repository.ErrUserNotFound)

	_, err := fx.service.Resolve(ctx, "raw-token")

	assertAppErrorCode(t, err, "NOT_AUTHENTICATED")
}

func TestSessionService_ListSessions_MarksCurrent(t *testing.T) {
	fx := createTestSessionService(t)
	ctx := context.Background()
	userID := uuid.New()
	current := &entity.Session{ID: uuid.New(), UserID: userID, TokenHash: "current-hash", ExpiresAt: time.Now().Add(time.Hour)}
	other := &entity.Session{ID: uuid.New(), UserID: userID, TokenHash: "other-hash", ExpiresAt: time.Now().Add(time.Hour)}

	fx.sessionRepo.On("ListByUserID", ctx, userID).
		Return([]*entity.Session{current, other}, nil)

	infos, err := fx.service.ListSessions(ctx, userID, "current-hash")

	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.True(t, infos[0].Current)
	assert.False(t, infos[1].Current)
}

func TestSessionService_RevokeSession_Success(t *testing.T) {
	fx := createTestSessionService(t)
	ctx := context.Background()
	userID := uuid.New()
	sessionID := uuid.New()

	var fnErr error
	fx.txManager.On("Execute", ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		Run(func(args mock.Arguments) {
			fn := args.Get(1).(func(repository.RepositoryFactory) error)
			factory := mockRepo.NewMockRepositoryFactory(t)
			txSessionRepo := mockRepo.NewMockSessionRepository(t)
			factory.On("SessionRepo").Return(txSessionRepo)

			txSessionRepo.On("FindByID", ctx, sessionID).
				Return(&entity.Session{ID: sessionID, UserID: userID}, nil)
			txSessionRepo.On("DeleteByID", ctx, sessionID).Return(nil)

			fnErr = fn(factory)
		}).
		Return(nil)

	err := fx.service.RevokeSession(ctx, userID, sessionID)

	require.NoError(t, err)
	require.NoError(t, fnErr)
}

func TestSessionService_RevokeSession_WrongOwnerForbidden(t *testing.T) {
	fx := createTestSessionService(t)
	ctx := context.Background()
	userID := uuid.New()
	sessionID := uuid.New()

	var fnErr error
	fx.txManager.On("Execute", ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		Run(func(args mock.Arguments) {
			fn := args.Get(1).(func(repository.RepositoryFactory) error)
			factory := mockRepo.NewMockRepositoryFactory(t)
			txSessionRepo := mockRepo.NewMockSessionRepository(t)
			factory.On("SessionRepo").Return(txSessionRepo)

			txSessionRepo.On("FindByID", ctx, sessionID).
				Return(&entity.Session{ID: sessionID, UserID: uuid.New()}, nil)

			fnErr = fn(factory)
		}).
		Return(assert.AnError)

	err := fx.service.RevokeSession(ctx, userID, sessionID)

	require.Error(t, err)
	assertAppErrorCode(t, fnErr, "FORBIDDEN")
}

func TestSessionService_CleanupExpired_ReportsCount(t *testing.T) {
	fx := createTestSessionService(t)
	ctx := context.Background()

	fx.sessionRepo.On("DeleteExpired", ctx).Return(int64(7), nil)

	deleted, err := fx.service.CleanupExpired(ctx)

	require.NoError(t, err)
	assert.Equal(t, int64(7), deleted)
}
