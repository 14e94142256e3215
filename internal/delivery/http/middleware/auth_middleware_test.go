package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"warden/config"
	"warden/internal/domain/entity"
	domainerrors "warden/internal/domain/errors"
	mockusecase "warden/internal/mocks/usecase"
	"warden/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newAuthMiddleware(t *testing.T) (*AuthMiddleware, *mockusecase.MockSessionUsecase) {
	t.Helper()

	cfg := &config.Config{}
	cfg.Auth = &config.AuthConfig{SessionCookieName: "warden_session"}

	sessions := mockusecase.NewMockSessionUsecase(t)

	return NewAuthMiddleware(sessions, cfg), sessions
}

func newEchoContext(req *http.Request) echo.Context {
	return echo.New().NewContext(req, httptest.NewRecorder())
}

func resolvedSession(userID, sessionID uuid.UUID, tokenHash string) *usecase.ResolvedSession {
	return &usecase.ResolvedSession{
		Session: &entity.Session{
			ID:        sessionID,
			UserID:    userID,
			TokenHash: tokenHash,
			ExpiresAt: time.Now().Add(time.Hour),
		},
		User: &entity.User{ID: userID},
	}
}

func TestAuthMiddleware_Authenticate_CookieToken(t *testing.T) {
	m, sessions := newAuthMiddleware(t)
	userID := uuid.New()
	sessionID := uuid.New()

	req := httptest.NewRequest(http.MethodGet, "/user/profile", nil)
	req.AddCookie(&http.Cookie{Name: "warden_session", Value: "cookie-token"})
	c := newEchoContext(req)

	sessions.On("Resolve", mock.Anything, "cookie-token").
		Return(resolvedSession(userID, sessionID, "hash-of-cookie-token"), nil)

	var nextCalled bool
	err := m.Authenticate(func(c echo.Context) error {
		nextCalled = true

		return nil
	})(c)

	require.NoError(t, err)
	assert.True(t, nextCalled)

	gotUserID, ok := UserID(c)
	require.True(t, ok)
	assert.Equal(t, userID, gotUserID)

	gotHash, ok := TokenHash(c)
	require.True(t, ok)
	assert.Equal(t, "hash-of-cookie-token", gotHash)
	assert.Equal(t, sessionID, c.Get(ContextKeySessionID))
}

func TestAuthMiddleware_Authenticate_BearerToken(t *testing.T) {
	m, sessions := newAuthMiddleware(t)
	userID := uuid.New()

	req := httptest.NewRequest(http.MethodGet, "/user/profile", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer header-token")
	c := newEchoContext(req)

	sessions.On("Resolve", mock.Anything, "header-token").
		Return(resolvedSession(userID, uuid.New(), "hash"), nil)

	err := m.Authenticate(func(c echo.Context) error { return nil })(c)
	require.NoError(t, err)
}

func TestAuthMiddleware_Authenticate_CookieWinsOverHeader(t *testing.T) {
	m, sessions := newAuthMiddleware(t)

	req := httptest.NewRequest(http.MethodGet, "/user/profile", nil)
	req.AddCookie(&http.Cookie{Name: "warden_session", Value: "cookie-token"})
	req.Header.Set(echo.HeaderAuthorization, "Bearer header-token")
	c := newEchoContext(req)

	sessions.On("Resolve", mock.Anything, "cookie-token").
		Return(resolvedSession(uuid.New(), uuid.New(), "hash"), nil)

	err := m.Authenticate(func(c echo.Context) error { return nil })(c)
	require.NoError(t, err)
}

func TestAuthMiddleware_Authenticate_MissingToken(t *testing.T) {
	m, sessions := newAuthMiddleware(t)

	c := newEchoContext(httptest.NewRequest(http.MethodGet, "/user/profile", nil))

	err := m.Authenticate(func(c echo.Context) error {
		t.Fatal("next should not run")

		return nil
	})(c)

	var appErr domainerrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "NOT_AUTHENTICATED", appErr.ErrorCode())
	sessions.AssertNotCalled(t, "Resolve")
}

func TestAuthMiddleware_Authenticate_RevokedSession(t *testing.T) {
	m, sessions := newAuthMiddleware(t)

	req := httptest.NewRequest(http.MethodGet, "/user/profile", nil)
	req.AddCookie(&http.Cookie{Name: "warden_session", Value: "revoked-token"})
	c := newEchoContext(req)

	sessions.On("Resolve", mock.Anything, "revoked-token").
		Return(nil, domainerrors.ErrNotAuthenticated)

	err := m.Authenticate(func(c echo.Context) error {
		t.Fatal("next should not run")

		return nil
	})(c)

	var appErr domainerrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "NOT_AUTHENTICATED", appErr.ErrorCode())
}
