// Package handler contains the HTTP handlers for the application.
package handler

import (
	"log/slog"
	"net/http"
	"time"

	"warden/config"
	"warden/internal/delivery/http/middleware"
	"warden/internal/delivery/http/response"
	"warden/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// AuthHandler holds dependencies for the unauthenticated auth endpoints.
type AuthHandler struct {
	auth   usecase.AuthUsecase
	cfg    *config.Config
	logger *slog.Logger
}

// NewAuthHandler is the constructor for AuthHandler, injected by Fx.
func NewAuthHandler(auth usecase.AuthUsecase, cfg *config.Config, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:   auth,
		cfg:    cfg,
		logger: logger,
	}
}

type registerRequest struct {
	Email       string `json:"email" validate:"required,max=255"`
	Password    string `json:"password" validate:"required,max=128"`
	DisplayName string `json:"displayName" validate:"omitempty,max=100"`
}

type loginRequest struct {
	Email      string `json:"email" validate:"required,max=255"`
	Password   string `json:"password" validate:"required"`
	RememberMe bool   `json:"rememberMe"`
}

type evaluatePasswordRequest struct {
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      any       `json:"user"`
}

func requestContext(c echo.Context) usecase.RequestContext {
	return usecase.RequestContext{
		ClientIP:  c.RealIP(),
		UserAgent: c.Request().UserAgent(),
	}
}

// Register handles the account registration request.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid registration input")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	output, err := h.auth.Register(c.Request().Context(), &usecase.RegisterInput{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
		Request:     requestContext(c),
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, output.User, "User registered successfully")
}

// Login handles the login request. On success the session token is bound
// to an HTTP-only cookie whose lifetime mirrors the session TTL.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid login input")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	output, err := h.auth.Login(c.Request().Context(), &usecase.LoginInput{
		Email:      req.Email,
		Password:   req.Password,
		RememberMe: req.RememberMe,
		Request:    requestContext(c),
	})
	if err != nil {
		return errors.WithStack(err)
	}

	h.setSessionCookie(c, output.Token, output.TTL)

	return response.Success(c, http.StatusOK, loginResponse{
		Token:     output.Token,
		ExpiresAt: output.ExpiresAt,
		User:      output.User,
	}, "Login successful")
}

// Logout revokes the caller's session. It always reports success: logging
// out an absent or expired session is not an error, and the cookie is
// cleared even when revocation could not be recorded.
func (h *AuthHandler) Logout(c echo.Context) error {
	token := middleware.TokenFromRequest(c, h.cfg.Auth.SessionCookieName)

	h.auth.Logout(c.Request().Context(), token)
	h.clearSessionCookie(c)

	return response.Success(c, http.StatusOK, nil, "Logout successful")
}

// LogoutAll revokes every session of the caller. Unlike Logout, a request
// without a live session is a client error.
func (h *AuthHandler) LogoutAll(c echo.Context) error {
	token := middleware.TokenFromRequest(c, h.cfg.Auth.SessionCookieName)

	output, err := h.auth.LogoutAll(c.Request().Context(), token)
	if err != nil {
		return errors.WithStack(err)
	}

	h.clearSessionCookie(c)

	return response.Success(c, http.StatusOK, map[string]int64{"revokedCount": output.RevokedCount}, "All sessions revoked")
}

// EvaluatePassword scores a candidate password without creating anything.
// It is unauthenticated so clients can give live strength feedback.
func (h *AuthHandler) EvaluatePassword(c echo.Context) error {
	var req evaluatePasswordRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid password evaluation input")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, h.auth.EvaluatePassword(req.Password), "Password evaluated")
}

func (h *AuthHandler) setSessionCookie(c echo.Context, token string, ttl time.Duration) {
	c.SetCookie(&http.Cookie{
		Name:     h.cfg.Auth.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   h.cfg.Auth.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     h.cfg.Auth.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cfg.Auth.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}
