// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
	"errors"

	"warden/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrSessionNotFound is returned when no live session matches a lookup.
// Expired sessions are reported the same way: an expired session is inert
// even before it is physically purged.
var ErrSessionNotFound = errors.New("session not found")

// SessionRepository defines the operations for session persistence.
// Sessions are always addressed by the SHA-256 hash of the raw token; the
// raw token never reaches the store.
type SessionRepository interface {
	// Create persists a new session record.
	Create(ctx context.Context, session *entity.Session) error

	// FindByTokenHash retrieves the live session with the given token hash.
	// Absent and expired sessions both yield ErrSessionNotFound.
	FindByTokenHash(ctx context.Context, tokenHash string) (*entity.Session, error)

	// FindByID retrieves a session record by its unique ID, expired or not.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Session, error)

	// ListByUserID retrieves all live sessions owned by a user, newest first.
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.Session, error)

	// DeleteByTokenHash removes the session with the given token hash.
	// Deleting an absent session is not an error.
	DeleteByTokenHash(ctx context.Context, tokenHash string) error

	// DeleteByID removes a session record by its unique ID.
	DeleteByID(ctx context.Context, id uuid.UUID) error

	// DeleteAllByUserID removes every session owned by the user and
	// reports how many were removed.
	DeleteAllByUserID(ctx context.Context, userID uuid.UUID) (int64, error)

	// DeleteAllByUserIDExcept removes every session owned by the user
	// except the one with the spared token hash, reporting the count.
	// Password changes use this to keep the initiating session alive.
	DeleteAllByUserIDExcept(ctx context.Context, userID uuid.UUID, sparedTokenHash string) (int64, error)

	// DeleteExpired purges all expired session records and reports the count.
	DeleteExpired(ctx context.Context) (int64, error)

	// CountActiveByUserID returns the number of live sessions for a user.
	CountActiveByUserID(ctx context.Context, userID uuid.UUID) (int, error)
}
