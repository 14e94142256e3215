// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// Session represents one authorized login. The client holds the raw opaque
// token; the store only ever sees its SHA-256 hash. The UserID is a weak
// reference: deleting the user deletes the sessions, never the other way
// around.
type Session struct {
	ID        uuid.UUID // The unique ID for this session record.
	UserID    uuid.UUID // Links this session to the User that owns it.
	TokenHash string    // SHA-256 hash of the raw bearer token.
	ExpiresAt time.Time // Absolute expiry; the session is invalid from this instant on.
	CreatedAt time.Time

	// Context snapshot captured at issuance for audit. Never mutated.
	IPAddress string
	UserAgent string
}

// Active reports whether the session is still valid at the given instant.
// Expired sessions are inert even before they are physically purged.
func (s *Session) Active(now time.Time) bool {
	return now.Before(s.ExpiresAt)
}

// SessionInfo is the client-safe view of a session, used by the session
// listing endpoint. The token and its hash are never exposed.
type SessionInfo struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
	IPAddress string    `json:"ipAddress"`
	UserAgent string    `json:"userAgent"`
	Current   bool      `json:"current"`
}

// Info projects the session onto its client-safe view.
func (s *Session) Info(current bool) *SessionInfo {
	return &SessionInfo{
		ID:        s.ID,
		CreatedAt: s.CreatedAt,
		ExpiresAt: s.ExpiresAt,
		IPAddress: s.IPAddress,
		UserAgent: s.UserAgent,
		Current:   current,
	}
}
