package ratelimit

import (
	"sync"
	"testing"
	"time"

	"warden/internal/domain/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock steps time manually for deterministic window tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestMemoryLimiter_ExactlyLimitAdmissionsPerWindow(t *testing.T) {
	clock := newFakeClock()
	limiter := newMemoryLimiter(clock.Now)

	const limit = 10
	for i := 0; i < limit; i++ {
		remaining, _, err := limiter.Admit("203.0.113.7", "login", limit, 15*time.Minute)
		require.NoError(t, err, "admission %d", i+1)
		assert.Equal(t, limit-i-1, remaining)
	}

	// The (limit+1)th request in the same window is rejected.
	_, resetAt, err := limiter.Admit("203.0.113.7", "login", limit, 15*time.Minute)
	require.ErrorIs(t, err, service.ErrRateLimited)
	assert.Equal(t, clock.Now().Add(15*time.Minute), resetAt)
}

func TestMemoryLimiter_WindowElapsesAndResets(t *testing.T) {
	clock := newFakeClock()
	limiter := newMemoryLimiter(clock.Now)

	for i := 0; i < 5; i++ {
		_, _, err := limiter.Admit("203.0.113.7", "register", 5, time.Hour)
		require.NoError(t, err)
	}
	_, _, err := limiter.Admit("203.0.113.7", "register", 5, time.Hour)
	require.ErrorIs(t, err, service.ErrRateLimited)

	clock.Advance(time.Hour + time.Second)

	remaining, _, err := limiter.Admit("203.0.113.7", "register", 5, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 4, remaining)
}

func TestMemoryLimiter_RejectionsStillCount(t *testing.T) {
	clock := newFakeClock()
	limiter := newMemoryLimiter(clock.Now)

	_, _, err := limiter.Admit("198.51.100.4", "login", 1, time.Minute)
	require.NoError(t, err)

	// Hammering past the limit must not shorten the lockout: the window
	// boundary is fixed at the first request of the window.
	for i := 0; i < 20; i++ {
		clock.Advance(time.Second)
		_, _, err = limiter.Admit("198.51.100.4", "login", 1, time.Minute)
		require.ErrorIs(t, err, service.ErrRateLimited)
	}
}

func TestMemoryLimiter_IndependentIdentitiesAndOperations(t *testing.T) {
	clock := newFakeClock()
	limiter := newMemoryLimiter(clock.Now)

	_, _, err := limiter.Admit("a", "login", 1, time.Minute)
	require.NoError(t, err)
	_, _, err = limiter.Admit("a", "login", 1, time.Minute)
	require.ErrorIs(t, err, service.ErrRateLimited)

	// Different identity, same operation.
	_, _, err = limiter.Admit("b", "login", 1, time.Minute)
	assert.NoError(t, err)

	// Same identity, different operation.
	_, _, err = limiter.Admit("a", "register", 1, time.Minute)
	assert.NoError(t, err)
}

func TestMemoryLimiter_ConcurrentAdmissionsNeverExceedLimit(t *testing.T) {
	limiter := newMemoryLimiter(time.Now)

	const (
		limit   = 50
		workers = 200
	)

	var wg sync.WaitGroup
	var mu sync.Mutex
	admitted := 0

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, _, err := limiter.Admit("shared", "login", limit, time.Minute); err == nil {
				mu.Lock()
				admitted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, limit, admitted)
}

func TestMemoryLimiter_SweepEvictsElapsedBuckets(t *testing.T) {
	clock := newFakeClock()
	limiter := newMemoryLimiter(clock.Now)

	_, _, err := limiter.Admit("stale", "login", 5, time.Minute)
	require.NoError(t, err)

	clock.Advance(sweepEvery + time.Minute)

	// The next admission triggers the sweep; the stale bucket is gone and
	// only the fresh one remains.
	_, _, err = limiter.Admit("fresh", "login", 5, time.Minute)
	require.NoError(t, err)

	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	assert.Len(t, limiter.buckets, 1)
	assert.Contains(t, limiter.buckets, "fresh|login")
}
