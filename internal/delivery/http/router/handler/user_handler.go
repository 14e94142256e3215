package handler

import (
	"log/slog"
	"net/http"

	"warden/config"
	"warden/internal/delivery/http/middleware"
	"warden/internal/delivery/http/response"
	"warden/internal/domain/entity"
	domainerrors "warden/internal/domain/errors"
	"warden/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// UserHandler holds dependencies for the authenticated user endpoints.
type UserHandler struct {
	auth     usecase.AuthUsecase
	sessions usecase.SessionUsecase
	cfg      *config.Config
	logger   *slog.Logger
}

// NewUserHandler is the constructor for UserHandler, injected by Fx.
func NewUserHandler(auth usecase.AuthUsecase, sessions usecase.SessionUsecase, cfg *config.Config, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		auth:     auth,
		sessions: sessions,
		cfg:      cfg,
		logger:   logger,
	}
}

type updateProfileRequest struct {
	DisplayName     *string `json:"displayName" validate:"omitempty,max=100"`
	Notifications   *bool   `json:"notifications"`
	Theme           *string `json:"theme" validate:"omitempty,oneof=light dark"`
	CurrentPassword *string `json:"currentPassword"`
	NewPassword     *string `json:"newPassword" validate:"omitempty,max=128"`
}

type deleteAccountRequest struct {
	Password string `json:"password" validate:"required"`
}

func identity(c echo.Context) (uuid.UUID, string, error) {
	userID, ok := middleware.UserID(c)
	if !ok {
		return uuid.Nil, "", domainerrors.ErrNotAuthenticated
	}

	tokenHash, ok := middleware.TokenHash(c)
	if !ok {
		return uuid.Nil, "", domainerrors.ErrNotAuthenticated
	}

	return userID, tokenHash, nil
}

// GetProfile returns the caller's public profile.
func (h *UserHandler) GetProfile(c echo.Context) error {
	userID, _, err := identity(c)
	if err != nil {
		return err
	}

	user, err := h.auth.GetProfile(c.Request().Context(), userID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, user, "Profile retrieved successfully")
}

// UpdateProfile applies a partial profile update. A password change
// additionally revokes every other session of the caller.
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	userID, tokenHash, err := identity(c)
	if err != nil {
		return err
	}

	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid profile update input")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	input := &usecase.UpdateProfileInput{
		DisplayName:     req.DisplayName,
		Notifications:   req.Notifications,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	}
	if req.Theme != nil {
		theme := entity.Theme(*req.Theme)
		input.Theme = &theme
	}

	user, err := h.auth.UpdateProfile(c.Request().Context(), userID, tokenHash, input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, user, "Profile updated successfully")
}

// DeleteAccount permanently removes the caller's account after password
// re-confirmation, then discards the session cookie.
func (h *UserHandler) DeleteAccount(c echo.Context) error {
	userID, tokenHash, err := identity(c)
	if err != nil {
		return err
	}

	var req deleteAccountRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid account deletion input")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.auth.DeleteAccount(c.Request().Context(), userID, tokenHash, &usecase.DeleteAccountInput{
		Password: req.Password,
	}); err != nil {
		return errors.WithStack(err)
	}

	h.clearSessionCookie(c)

	return response.Success(c, http.StatusOK, nil, "Account deleted successfully")
}

// ListSessions enumerates the caller's live sessions, flagging the one
// backing this request.
func (h *UserHandler) ListSessions(c echo.Context) error {
	userID, tokenHash, err := identity(c)
	if err != nil {
		return err
	}

	sessions, err := h.sessions.ListSessions(c.Request().Context(), userID, tokenHash)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, sessions, "Sessions retrieved successfully")
}

// RevokeSession revokes one of the caller's sessions by ID.
func (h *UserHandler) RevokeSession(c echo.Context) error {
	userID, _, err := identity(c)
	if err != nil {
		return err
	}

	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return domainerrors.ErrValidationFailed.WithDetails("invalid session ID")
	}

	if err := h.sessions.RevokeSession(c.Request().Context(), userID, sessionID); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Session revoked successfully")
}

func (h *UserHandler) clearSessionCookie(c echo.Context) {
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
