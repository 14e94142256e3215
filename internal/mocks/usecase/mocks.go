// Package usecase provides testify mocks for the usecase interfaces,
// used by delivery tests.
package usecase

import (
	"context"
	"testing"

	"warden/internal/domain/entity"
	"warden/internal/domain/service"
	"warden/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockAuthUsecase mocks usecase.AuthUsecase.
type MockAuthUsecase struct {
	mock.Mock
}

// NewMockAuthUsecase creates the mock and verifies expectations on cleanup.
func NewMockAuthUsecase(t *testing.T) *MockAuthUsecase {
	m := &MockAuthUsecase{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockAuthUsecase) Register(ctx context.Context, input *usecase.RegisterInput) (*usecase.RegisterOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*usecase.RegisterOutput), args.Error(1)
}

func (m *MockAuthUsecase) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.LoginOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*usecase.LoginOutput), args.Error(1)
}

func (m *MockAuthUsecase) Logout(ctx context.Context, token string) {
	m.Called(ctx, token)
}

func (m *MockAuthUsecase) LogoutAll(ctx context.Context, token string) (*usecase.LogoutAllOutput, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*usecase.LogoutAllOutput), args.Error(1)
}

func (m *MockAuthUsecase) GetProfile(ctx context.Context, userID uuid.UUID) (*entity.PublicUser, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*entity.PublicUser), args.Error(1)
}

func (m *MockAuthUsecase) UpdateProfile(ctx context.Context, userID uuid.UUID, currentTokenHash string, input *usecase.UpdateProfileInput) (*entity.PublicUser, error) {
	args := m.Called(ctx, userID, currentTokenHash, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*entity.PublicUser), args.Error(1)
}

func (m *MockAuthUsecase) DeleteAccount(ctx context.Context, userID uuid.UUID, currentTokenHash string, input *usecase.DeleteAccountInput) error {
	args := m.Called(ctx, userID, currentTokenHash, input)

	return args.Error(0)
}

func (m *MockAuthUsecase) EvaluatePassword(candidate string) service.PolicyEvaluation {
	args := m.Called(candidate)

	return args.Get(0).(service.PolicyEvaluation)
}

// MockSessionUsecase mocks usecase.SessionUsecase.
type MockSessionUsecase struct {
	mock.Mock
}

// NewMockSessionUsecase creates the mock and verifies expectations on cleanup.
func NewMockSessionUsecase(t *testing.T) *MockSessionUsecase {
	m := &MockSessionUsecase{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockSessionUsecase) Resolve(ctx context.Context, token string) (*usecase.ResolvedSession, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*usecase.ResolvedSession), args.Error(1)
}

func (m *MockSessionUsecase) ListSessions(ctx context.Context, userID uuid.UUID, currentTokenHash string) ([]*entity.SessionInfo, error) {
	args := m.Called(ctx, userID, currentTokenHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*entity.SessionInfo), args.Error(1)
}

func (m *MockSessionUsecase) RevokeSession(ctx context.Context, userID, sessionID uuid.UUID) error {
	args := m.Called(ctx, userID, sessionID)

	return args.Error(0)
}

func (m *MockSessionUsecase) CleanupExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)

	return args.Get(0).(int64), args.Error(1)
}
