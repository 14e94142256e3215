package service

import (
	"errors"
	"time"
)

// ErrRateLimited is returned by Admit when the identity has exhausted its
// window allowance. Callers translate it into the RATE_LIMIT_EXCEEDED
// application error.
var ErrRateLimited = errors.New("rate limit exceeded")

// RateLimiter is fixed-window admission control keyed by client identity
// and operation name. It is independent of the per-account lockout
// mechanism: a shared IP must not lock unrelated accounts, and a
// distributed attack on one account must still trigger the lockout.
type RateLimiter interface {
	// Admit records one request for (identity, operation) and reports the
	// remaining allowance in the current window. When the allowance is
	// exhausted it returns ErrRateLimited together with the time the
	// window resets; the rejected request still counts against the
	// window, so retry storms cannot reset it.
	Admit(identity, operation string, limit int, window time.Duration) (remaining int, resetAt time.Time, err error)
}
