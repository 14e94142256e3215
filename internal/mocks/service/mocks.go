// Package service provides testify mocks for the domain service
// interfaces, used by usecase tests.
package service

import (
	"testing"
	"time"

	"warden/internal/domain/service"

	"github.com/stretchr/testify/mock"
)

// MockPasswordHasher mocks service.PasswordHasher.
type MockPasswordHasher struct {
	mock.Mock
}

// NewMockPasswordHasher creates the mock and verifies expectations on cleanup.
func NewMockPasswordHasher(t *testing.T) *MockPasswordHasher {
	m := &MockPasswordHasher{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockPasswordHasher) Hash(password string) (string, error) {
	args := m.Called(password)

	return args.String(0), args.Error(1)
}

func (m *MockPasswordHasher) Check(password, hash string) bool {
	args := m.Called(password, hash)

	return args.Bool(0)
}

// MockPasswordPolicy mocks service.PasswordPolicy.
type MockPasswordPolicy struct {
	mock.Mock
}

// NewMockPasswordPolicy creates the mock and verifies expectations on cleanup.
func NewMockPasswordPolicy(t *testing.T) *MockPasswordPolicy {
	m := &MockPasswordPolicy{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockPasswordPolicy) Evaluate(candidate string) service.PolicyEvaluation {
	args := m.Called(candidate)

	return args.Get(0).(service.PolicyEvaluation)
}

// MockTokenService mocks service.TokenService.
type MockTokenService struct {
	mock.Mock
}

// NewMockTokenService creates the mock and verifies expectations on cleanup.
func NewMockTokenService(t *testing.T) *MockTokenService {
	m := &MockTokenService{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockTokenService) NewToken() (string, error) {
	args := m.Called()

	return args.String(0), args.Error(1)
}

func (m *MockTokenService) HashToken(token string) string {
	args := m.Called(token)

	return args.String(0)
}

// MockRateLimiter mocks service.RateLimiter.
type MockRateLimiter struct {
	mock.Mock
}

// NewMockRateLimiter creates the mock and verifies expectations on cleanup.
func NewMockRateLimiter(t *testing.T) *MockRateLimiter {
	m := &MockRateLimiter{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *MockRateLimiter) Admit(identity, operation string, limit int, window time.Duration) (int, time.Time, error) {
	args := m.Called(identity, operation, limit, window)

	return args.Int(0), args.Get(1).(time.Time), args.Error(2)
}
