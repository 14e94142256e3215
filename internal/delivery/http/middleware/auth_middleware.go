package middleware

import (
	"strings"

	"warden/config"
	domainerrors "warden/internal/domain/errors"
	"warden/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Context keys set by Authenticate for downstream handlers.
const (
	// ContextKeyUserID holds the authenticated user's uuid.UUID.
	ContextKeyUserID = "userID"
	// ContextKeyTokenHash holds the digest of the presented session token.
	ContextKeyTokenHash = "tokenHash"
	// ContextKeySessionID holds the resolved session's uuid.UUID.
	ContextKeySessionID = "sessionID"
)

// AuthMiddleware authenticates requests by resolving the opaque session
// token, carried in the session cookie or an Authorization bearer header.
type AuthMiddleware struct {
	sessions   usecase.SessionUsecase
	cookieName string
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(sessions usecase.SessionUsecase, cfg *config.Config) *AuthMiddleware {
	return &AuthMiddleware{
		sessions:   sessions,
		cookieName: cfg.Auth.SessionCookieName,
	}
}

// TokenFromRequest extracts the raw session token from the request,
// preferring the session cookie over the Authorization header. Returns the
// empty string when neither is present.
func TokenFromRequest(c echo.Context, cookieName string) string {
	if cookie, err := c.Cookie(cookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
	if token := strings.TrimPrefix(authHeader, "Bearer "); token != authHeader {
		return token
	}

	return ""
}

// Authenticate validates the session token on every request. Validity is
// re-checked per use: revoked and expired sessions fail immediately, with
// no grace period.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := TokenFromRequest(c, m.cookieName)
		if token == "" {
			return domainerrors.ErrNotAuthenticated
		}

		resolved, err := m.sessions.Resolve(c.Request().Context(), token)
		if err != nil {
			return err
		}

		c.Set(ContextKeyUserID, resolved.User.ID)
		c.Set(ContextKeyTokenHash, resolved.Session.TokenHash)
		c.Set(ContextKeySessionID, resolved.Session.ID)

		return next(c)
	}
}

// UserID returns the authenticated user ID set by Authenticate.
func UserID(c echo.Context) (uuid.UUID, bool) {
	id, ok := c.Get(ContextKeyUserID).(uuid.UUID)

	return id, ok
}

// TokenHash returns the current session's token digest set by Authenticate.
func TokenHash(c echo.Context) (string, bool) {
	hash, ok := c.Get(ContextKeyTokenHash).(string)

	return hash, ok
}
