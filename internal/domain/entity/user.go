// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Theme enumerates the UI themes a user may choose in their preferences.
type Theme string

const (
	// ThemeLight is the default UI theme.
	ThemeLight Theme = "light"
	// ThemeDark is the dark UI theme.
	ThemeDark Theme = "dark"
)

// Valid reports whether the theme is one of the known values.
func (t Theme) Valid() bool {
	return t == ThemeLight || t == ThemeDark
}

// Preferences is the user's preference bag. It is merged shallowly on
// profile updates: fields left unset keep their stored value.
type Preferences struct {
	Notifications bool  `json:"notifications"`
	Theme         Theme `json:"theme"`
}

// User is the core entity of the system, representing one account in the
// directory. The password never appears here in plaintext; only the bcrypt
// digest is stored.
type User struct {
	ID            uuid.UUID   // The unique identifier for the user.
	Email         string      // Case-normalized login identifier, unique across accounts.
	DisplayName   string      // Optional display name.
	PasswordHash  string      // One-way digest of the password.
	EmailVerified bool        // Whether the address has been confirmed.
	Preferences   Preferences // Notification flag and theme choice.

	// Lockout state. FailedAttempts only grows on failed verifications and
	// resets to zero (clearing LockedUntil) on a successful one.
	FailedAttempts int
	LockedUntil    *time.Time

	LastLoginAt *time.Time // Set on every successful login.
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Locked reports whether the account is under an active lockout at the
// given instant. A lockout suppresses login regardless of password
// correctness.
func (u *User) Locked(now time.Time) bool {
	return u.LockedUntil != nil && now.Before(*u.LockedUntil)
}

// LockoutRemaining returns how long the active lockout still lasts, or
// zero when the account is not locked.
func (u *User) LockoutRemaining(now time.Time) time.Duration {
	if !u.Locked(now) {
		return 0
	}

	return u.LockedUntil.Sub(now)
}

// PublicUser is the subset of a User that is safe to return to clients.
// It never carries the password digest or lockout internals.
type PublicUser struct {
	ID            uuid.UUID   `json:"id"`
	Email         string      `json:"email"`
	DisplayName   string      `json:"displayName,omitempty"`
	EmailVerified bool        `json:"emailVerified"`
	Preferences   Preferences `json:"preferences"`
	LastLoginAt   *time.Time  `json:"lastLoginAt,omitempty"`
	CreatedAt     time.Time   `json:"createdAt"`
}

// Public projects the user onto its client-safe view.
func (u *User) Public() *PublicUser {
	return &PublicUser{
		ID:            u.ID,
		Email:         u.Email,
		DisplayName:   u.DisplayName,
		EmailVerified: u.EmailVerified,
		Preferences:   u.Preferences,
		LastLoginAt:   u.LastLoginAt,
		CreatedAt:     u.CreatedAt,
	}
}

// NormalizeEmail canonicalizes an email address for storage and lookup:
// surrounding whitespace is trimmed and the address is lowercased.
// Uniqueness is enforced over the normalized form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
