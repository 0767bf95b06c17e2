// Package ratelimit counts requests per key over a sliding window. The Redis
// limiter shares counts across instances; the memory limiter is used when
// Redis is disabled.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

// sweepEvery is how many Allow calls pass between full sweeps of idle keys.
const sweepEvery = 1024

// MemoryLimiter keeps request timestamps per key in process memory. A
// non-positive limit denies every request.
type MemoryLimiter struct {
	hits   map[string][]time.Time
	limit  int
	window time.Duration
	now    func() time.Time
	calls  int
	mu     sync.Mutex
}

func NewMemoryLimiter(limit int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		hits:   make(map[string][]time.Time),
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

// WithClock replaces the limiter clock.
func (m *MemoryLimiter) WithClock(now func() time.Time) *MemoryLimiter {
	m.now = now
	return m
}

func (m *MemoryLimiter) Allow(_ context.Context, key string) (Decision, error) {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.calls >= sweepEvery {
		m.calls = 0
		m.sweep(now)
	}

	hits := m.prune(key, now)
	if len(hits) >= m.limit {
		retryAfter := m.window
		if len(hits) > 0 {
			retryAfter = hits[0].Add(m.window).Sub(now)
		}
		return Decision{
			Allowed:    false,
			Limit:      m.limit,
			Remaining:  0,
			RetryAfter: retryAfter,
		}, nil
	}

	m.hits[key] = append(hits, now)
	return Decision{
		Allowed:   true,
		Limit:     m.limit,
		Remaining: m.limit - len(hits) - 1,
	}, nil
}

// Keys reports how many keys currently hold hits.
func (m *MemoryLimiter) Keys() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.hits)
}

// prune drops the hits of key that left the window and returns the rest.
func (m *MemoryLimiter) prune(key string, now time.Time) []time.Time {
	hits, ok := m.hits[key]
	if !ok {
		return nil
	}

	valid := hits[:0]
	for _, t := range hits {
		if now.Sub(t) < m.window {
			valid = append(valid, t)
		}
	}
	if len(valid) == 0 {
		delete(m.hits, key)
		return nil
	}
	m.hits[key] = valid
	return valid
}

func (m *MemoryLimiter) sweep(now time.Time) {
	for key := range m.hits {
		m.prune(key, now)
	}
}
