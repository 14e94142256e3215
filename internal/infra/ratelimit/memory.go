// Package ratelimit provides the in-memory fixed-window rate limiter.
package ratelimit

import (
	"sync"
	"time"

	"warden/internal/domain/service"
)

// sweepEvery bounds how often the opportunistic bucket sweep runs.
// Eviction of stale buckets is hygiene, not a correctness requirement.
const sweepEvery = 5 * time.Minute

type bucket struct {
	count   int
	resetAt time.Time
}

// memoryLimiter implements service.RateLimiter with one counter per
// (identity, operation) pair, guarded by a single mutex so concurrent
// admissions for the same identity never lose increments.
type memoryLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time

	// now is the clock source; tests substitute it to step time.
	now func() time.Time
}

// NewMemoryLimiter is the constructor for memoryLimiter.
func NewMemoryLimiter() service.RateLimiter {
	return newMemoryLimiter(time.Now)
}

func newMemoryLimiter(now func() time.Time) *memoryLimiter {
	return &memoryLimiter{
		buckets:   make(map[string]*bucket),
		lastSweep: now(),
		now:       now,
	}
}

// Admit records one request against the identity's window. Rejected
// requests still count, so a retry storm keeps the window saturated
// instead of resetting it.
func (l *memoryLimiter) Admit(identity, operation string, limit int, window time.Duration) (int, time.Time, error) {
	key := identity + "|" + operation
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.maybeSweep(now)

	b, ok := l.buckets[key]
	if !ok || !now.Before(b.resetAt) {
		b = &bucket{count: 0, resetAt: now.Add(window)}
		l.buckets[key] = b
	}

	b.count++
	if b.count > limit {
		return 0, b.resetAt, service.ErrRateLimited
	}

	return limit - b.count, b.resetAt, nil
}

// maybeSweep drops buckets whose window has long elapsed. Caller holds the mutex.
func (l *memoryLimiter) maybeSweep(now time.Time) {
	if now.Sub(l.lastSweep) < sweepEvery {
		return
	}
	l.lastSweep = now

	for key, b := range l.buckets {
		if !now.Before(b.resetAt) {
			delete(l.buckets, key)
		}
	}
}
