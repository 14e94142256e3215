// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
	"errors"
	"time"

	"warden/internal/domain/entity"

	"github.com/google/uuid"
)

// Domain-specific errors for user persistence.
var (
	// ErrUserNotFound is returned when a user is not found.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailTaken is returned when an insert collides with the unique
	// email index. It is distinct from generic failures so registration can
	// report the conflict even under concurrent duplicate registrations.
	ErrEmailTaken = errors.New("email already registered")
)

// LockoutState is the post-update view of an account's lockout counters,
// returned by RecordFailedAttempt so callers never read-modify-write.
type LockoutState struct {
	FailedAttempts int
	LockedUntil    *time.Time
}

// Locked reports whether the state carries an active lockout at the given instant.
func (s LockoutState) Locked(now time.Time) bool {
	return s.LockedUntil != nil && now.Before(*s.LockedUntil)
}

// ProfilePatch carries the optional profile mutations of an update. Nil
// fields leave the stored value untouched; preference fields merge
// shallowly over the existing preference bag.
type ProfilePatch struct {
	DisplayName   *string
	Notifications *bool
	Theme         *entity.Theme
	PasswordHash  *string
}

// Empty reports whether the patch carries no mutation at all.
func (p ProfilePatch) Empty() bool {
	return p.DisplayName == nil && p.Notifications == nil && p.Theme == nil && p.PasswordHash == nil
}

// UserRepository defines the standard operations for user persistence.
// The application layer depends on this interface, not the concrete implementation.
type UserRepository interface {
	// Create persists a new user. The email must already be normalized;
	// a unique-index collision surfaces as ErrEmailTaken.
	Create(ctx context.Context, user *entity.User) error

	// FindByID retrieves a single user by their unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)

	// FindByEmail retrieves a single user by their normalized email address.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// RecordFailedAttempt atomically increments the failed-attempt counter
	// and, if the new count reaches maxAttempts, sets the lockout deadline
	// in the same statement. Concurrent callers never lose increments.
	RecordFailedAttempt(ctx context.Context, id uuid.UUID, maxAttempts int, lockedUntil time.Time) (LockoutState, error)

	// RecordSuccessfulLogin atomically resets the failed-attempt counter,
	// clears any lockout and stamps the last-login time.
	RecordSuccessfulLogin(ctx context.Context, id uuid.UUID, now time.Time) error

	// UpdateProfile applies the patch to the stored record without
	// disturbing unspecified fields.
	UpdateProfile(ctx context.Context, id uuid.UUID, patch ProfilePatch) error

	// Delete removes the user record. Callers composing it with session
	// revocation must do so inside a TransactionManager.Execute scope.
	Delete(ctx context.Context, id uuid.UUID) error
}
