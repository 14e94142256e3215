// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"
	"time"

	"warden/internal/domain/entity"
	"warden/internal/domain/service"

	"github.com/google/uuid"
)

// RequestContext carries the per-request client identity used for rate
// limiting and for the session's audit snapshot. ClientIP may be empty
// when the transport cannot determine it; rate limiting then degrades to
// a shared bucket.
type RequestContext struct {
	ClientIP  string
	UserAgent string
}

// --- Input DTOs ---

// RegisterInput defines the data required to register a new account.
type RegisterInput struct {
	Email       string
	Password    string
	DisplayName string

	Request RequestContext
}

// LoginInput defines the data required to log in.
type LoginInput struct {
	Email      string
	Password   string
	RememberMe bool

	Request RequestContext
}

// UpdateProfileInput carries the optional profile mutations. Nil fields
// are left untouched. A non-nil NewPassword requires CurrentPassword.
type UpdateProfileInput struct {
	DisplayName   *string
	Notifications *bool
	Theme         *entity.Theme

	CurrentPassword *string
	NewPassword     *string
}

// PasswordChanged reports whether the patch carries a password rotation.
func (in UpdateProfileInput) PasswordChanged() bool {
	return in.NewPassword != nil
}

// DeleteAccountInput carries the confirmation for account deletion.
type DeleteAccountInput struct {
	Password string
}

// --- Output DTOs ---

// RegisterOutput returns the newly created account's public view.
type RegisterOutput struct {
	User *entity.PublicUser
}

// LoginOutput returns the issued session credential after a successful login.
type LoginOutput struct {
	Token     string
	ExpiresAt time.Time
	TTL       time.Duration
	User      *entity.PublicUser
}

// LogoutAllOutput reports how many sessions were revoked.
type LogoutAllOutput struct {
	RevokedCount int64
}

// AuthUsecase defines the interface for authentication business operations.
// This is the contract that the delivery layer (e.g., API handlers) will depend on.
type AuthUsecase interface {
	// Register creates a new account after rate limiting and input validation.
	Register(ctx context.Context, input *RegisterInput) (*RegisterOutput, error)

	// Login verifies credentials, drives the lockout counters and issues a
	// session on success.
	Login(ctx context.Context, input *LoginInput) (*LoginOutput, error)

	// Logout revokes the session carrying the given raw token. It is
	// idempotent and fail-soft: the caller always observes success.
	Logout(ctx context.Context, token string)

	// LogoutAll revokes every session of the token's owner. Unlike Logout,
	// an unresolvable token is a client error.
	LogoutAll(ctx context.Context, token string) (*LogoutAllOutput, error)

	// GetProfile returns the public view of the authenticated user.
	GetProfile(ctx context.Context, userID uuid.UUID) (*entity.PublicUser, error)

	// UpdateProfile applies the patch. A password rotation additionally
	// revokes every sibling session, sparing the one identified by
	// currentTokenHash.
	UpdateProfile(ctx context.Context, userID uuid.UUID, currentTokenHash string, input *UpdateProfileInput) (*entity.PublicUser, error)

	// DeleteAccount removes the account and all its sessions in one atomic
	// unit, after re-verifying the password.
	DeleteAccount(ctx context.Context, userID uuid.UUID, currentTokenHash string, input *DeleteAccountInput) error

	// EvaluatePassword scores a candidate password for client feedback.
	// It never blocks and is safe to call unauthenticated.
	EvaluatePassword(candidate string) service.PolicyEvaluation
}
