package usecase

import (
	"context"

	"warden/internal/domain/entity"

	"github.com/google/uuid"
)

// ResolvedSession is a validated session together with its owning user.
// Resolution re-checks user existence, so a session can never resolve
// against a deleted account even before its physical purge.
type ResolvedSession struct {
	Session *entity.Session
	User    *entity.User
}

// SessionUsecase defines the interface for session lifecycle operations.
type SessionUsecase interface {
	// Resolve validates a raw token and returns the session with its owner.
	// Absent, expired and orphaned sessions all fail with NotAuthenticated.
	Resolve(ctx context.Context, token string) (*ResolvedSession, error)

	// ListSessions returns the client-safe view of a user's live sessions,
	// marking the one identified by currentTokenHash.
	ListSessions(ctx context.Context, userID uuid.UUID, currentTokenHash string) ([]*entity.SessionInfo, error)

	// RevokeSession revokes one session by ID after checking ownership.
	RevokeSession(ctx context.Context, userID, sessionID uuid.UUID) error

	// CleanupExpired purges expired session records and reports the count.
	CleanupExpired(ctx context.Context) (int64, error)
}
