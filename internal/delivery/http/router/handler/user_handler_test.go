package handler

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"warden/internal/delivery/http/middleware"
	"warden/internal/delivery/http/validator"
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

type userHandlerEnv struct {
	Auth     *mockusecase.MockAuthUsecase
	Sessions *mockusecase.MockSessionUsecase
	Handler  *UserHandler
}

func newUserHandlerContext(t *testing.T, method, target, body string) (*userHandlerEnv, echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	e := echo.New()
	e.Validator = validator.New()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	env := &userHandlerEnv{
		Auth:     mockusecase.NewMockAuthUsecase(t),
		Sessions: mockusecase.NewMockSessionUsecase(t),
	}
	env.Handler = NewUserHandler(env.Auth, env.Sessions, newHandlerTestConfig(), slog.New(slog.DiscardHandler))

	return env, e.NewContext(req, rec), rec
}

func authenticate(c echo.Context, userID uuid.UUID, tokenHash string) {
	c.Set(middleware.ContextKeyUserID, userID)
	c.Set(middleware.ContextKeyTokenHash, tokenHash)
}

func TestUserHandler_GetProfile_Success(t *testing.T) {
	env, c, rec := newUserHandlerContext(t, http.MethodGet, "/user/profile", "")
	userID := uuid.New()
	authenticate(c, userID, "current-hash")

	env.Auth.On("GetProfile", mock.Anything, userID).
		Return(&entity.PublicUser{ID: userID, Email: "user@example.com"}, nil)

	require.NoError(t, env.Handler.GetProfile(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "user@example.com")
	assert.NotContains(t, rec.Body.String(), "passwordHash")
}

func TestUserHandler_GetProfile_WithoutIdentity(t *testing.T) {
	env, c, _ := newUserHandlerContext(t, http.MethodGet, "/user/profile", "")

	err := env.Handler.GetProfile(c)
	require.Error(t, err)

	var appErr domainerrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "NOT_AUTHENTICATED", appErr.ErrorCode())
	env.Auth.AssertNotCalled(t, "GetProfile")
}

func TestUserHandler_UpdateProfile_ForwardsPatch(t *testing.T) {
	env, c, rec := newUserHandlerContext(t, http.MethodPatch, "/user/profile",
		`{"displayName":"Renamed","theme":"dark"}`)
	userID := uuid.New()
	authenticate(c, userID, "current-hash")

	env.Auth.On("UpdateProfile", mock.Anything, userID, "current-hash",
		mock.MatchedBy(func(input *usecase.UpdateProfileInput) bool {
			return input.DisplayName != nil && *input.DisplayName == "Renamed" &&
				input.Theme != nil && *input.Theme == entity.ThemeDark &&
				input.NewPassword == nil
		})).Return(&entity.PublicUser{ID: userID, DisplayName: "Renamed"}, nil)

	require.NoError(t, env.Handler.UpdateProfile(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Renamed")
}

func TestUserHandler_UpdateProfile_RejectsUnknownTheme(t *testing.T) {
	env, c, _ := newUserHandlerContext(t, http.MethodPatch, "/user/profile", `{"theme":"sepia"}`)
	authenticate(c, uuid.New(), "current-hash")

	err := env.Handler.UpdateProfile(c)
	require.Error(t, err)

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
	env.Auth.AssertNotCalled(t, "UpdateProfile")
}

func TestUserHandler_DeleteAccount_ClearsCookie(t *testing.T) {
	env, c, rec := newUserHandlerContext(t, http.MethodDelete, "/user/account",
		`{"password":"the confirmed password"}`)
	userID := uuid.New()
	authenticate(c, userID, "current-hash")

	env.Auth.On("DeleteAccount", mock.Anything, userID, "current-hash",
		mock.MatchedBy(func(input *usecase.DeleteAccountInput) bool {
			return input.Password == "the confirmed password"
		})).Return(nil)

	require.NoError(t, env.Handler.DeleteAccount(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	cookie := sessionCookie(t, rec, "warden_session")
	assert.Empty(t, cookie.Value)
	assert.Equal(t, -1, cookie.MaxAge)
}

func TestUserHandler_ListSessions_ReturnsSessions(t *testing.T) {
	env, c, rec := newUserHandlerContext(t, http.MethodGet, "/user/sessions", "")
	userID := uuid.New()
	authenticate(c, userID, "current-hash")

	env.Sessions.On("ListSessions", mock.Anything, userID, "current-hash").
		Return([]*entity.SessionInfo{
			{ID: uuid.New(), Current: true, ExpiresAt: time.Now().Add(time.Hour)},
			{ID: uuid.New(), Current: false, ExpiresAt: time.Now().Add(time.Hour)},
		}, nil)

	require.NoError(t, env.Handler.ListSessions(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"current":true`)
}

func TestUserHandler_RevokeSession_InvalidID(t *testing.T) {
	env, c, _ := newUserHandlerContext(t, http.MethodDelete, "/user/sessions/not-a-uuid", "")
	authenticate(c, uuid.New(), "current-hash")
	c.SetParamNames("id")
	c.SetParamValues("not-a-uuid")

	err := env.Handler.RevokeSession(c)
	require.Error(t, err)

	var appErr domainerrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "VALIDATION_FAILED", appErr.ErrorCode())
	env.Sessions.AssertNotCalled(t, "RevokeSession")
}

func TestUserHandler_RevokeSession_Success(t *testing.T) {
	env, c, rec := newUserHandlerContext(t, http.MethodDelete, "/user/sessions/x", "")
	userID := uuid.New()
	sessionID := uuid.New()
	authenticate(c, userID, "current-hash")
	c.SetParamNames("id")
	c.SetParamValues(sessionID.String())

	env.Sessions.On("RevokeSession", mock.Anything, userID, sessionID).Return(nil)

	require.NoError(t, env.Handler.RevokeSession(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}
