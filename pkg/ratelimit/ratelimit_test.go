package ratelimit

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type manualClock struct {
	now time.Time
}

func (c *manualClock) Now() time.Time { return c.now }

func (c *manualClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newRedisLimiter(t *testing.T, limit int, window time.Duration, clock *manualClock) *RedisLimiter {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisLimiter(client, "test:", limit, window).WithClock(clock.Now)
}

// limiterCases runs the same sliding window expectations against both
// implementations.
func limiterCases(t *testing.T, build func(limit int, window time.Duration, clock *manualClock) Limiter) {
	ctx := context.Background()

	t.Run("allows up to limit", func(t *testing.T) {
		clock := &manualClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
		limiter := build(3, time.Minute, clock)

		for i := 0; i < 3; i++ {
			d, err := limiter.Allow(ctx, "1.2.3.4")
			if err != nil {
				t.Fatalf("Allow() error = %v", err)
			}
			if !d.Allowed {
				t.Fatalf("request %d denied, want allowed", i+1)
			}
			if want := 2 - i; d.Remaining != want {
				t.Errorf("request %d remaining = %d, want %d", i+1, d.Remaining, want)
			}
			if d.Limit != 3 {
				t.Errorf("limit = %d, want 3", d.Limit)
			}
		}

		d, err := limiter.Allow(ctx, "1.2.3.4")
		if err != nil {
			t.Fatalf("Allow() error = %v", err)
		}
		if d.Allowed {
			t.Fatal("fourth request allowed, want denied")
		}
		if d.RetryAfter != time.Minute {
			t.Errorf("RetryAfter = %v, want %v", d.RetryAfter, time.Minute)
		}
	})

	t.Run("window slides", func(t *testing.T) {
		clock := &manualClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
		limiter := build(2, time.Minute, clock)

		limiter.Allow(ctx, "k")
		clock.Advance(20 * time.Second)
		limiter.Allow(ctx, "k")

		clock.Advance(10 * time.Second)
		d, _ := limiter.Allow(ctx, "k")
		if d.Allowed {
			t.Fatal("request inside full window allowed")
		}
		if d.RetryAfter != 30*time.Second {
			t.Errorf("RetryAfter = %v, want 30s", d.RetryAfter)
		}

		// The first hit leaves the window exactly one window after it was made.
		clock.Advance(30 * time.Second)
		d, _ = limiter.Allow(ctx, "k")
		if !d.Allowed {
			t.Fatal("request after oldest hit expired was denied")
		}
	})

	t.Run("non-positive limit denies", func(t *testing.T) {
		for _, limit := range []int{0, -1} {
			clock := &manualClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
			limiter := build(limit, time.Minute, clock)

			d, err := limiter.Allow(ctx, "1.2.3.4")
			if err != nil {
				t.Fatalf("limit %d: Allow() error = %v", limit, err)
			}
			if d.Allowed {
				t.Errorf("limit %d: request allowed, want denied", limit)
			}
			if d.RetryAfter != time.Minute {
				t.Errorf("limit %d: RetryAfter = %v, want %v", limit, d.RetryAfter, time.Minute)
			}
		}
	})

	t.Run("keys are independent", func(t *testing.T) {
		clock := &manualClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
		limiter := build(1, time.Minute, clock)

		if d, _ := limiter.Allow(ctx, "a"); !d.Allowed {
			t.Fatal("first request for a denied")
		}
		if d, _ := limiter.Allow(ctx, "a"); d.Allowed {
			t.Fatal("second request for a allowed")
		}
		if d, _ := limiter.Allow(ctx, "b"); !d.Allowed {
			t.Fatal("first request for b denied")
		}
	})
}

func TestMemoryLimiter_SweepsIdleKeys(t *testing.T) {
	ctx := context.Background()
	clock := &manualClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	limiter := NewMemoryLimiter(5, time.Minute).WithClock(clock.Now)

	for i := 0; i < 10; i++ {
		limiter.Allow(ctx, fmt.Sprintf("10.0.0.%d", i))
	}
	clock.Advance(2 * time.Minute)

	// Only the requested key is pruned on the hot path.
	limiter.Allow(ctx, "busy")
	if got := limiter.Keys(); got != 11 {
		t.Fatalf("Keys() = %d before sweep, want 11", got)
	}

	for i := 11; i < sweepEvery; i++ {
		limiter.Allow(ctx, "busy")
	}
	if got := limiter.Keys(); got != 1 {
		t.Errorf("Keys() = %d after sweep, want 1", got)
	}
}

func TestMemoryLimiter(t *testing.T) {
	limiterCases(t, func(limit int, window time.Duration, clock *manualClock) Limiter {
		return NewMemoryLimiter(limit, window).WithClock(clock.Now)
	})
}

func TestRedisLimiter(t *testing.T) {
	limiterCases(t, func(limit int, window time.Duration, clock *manualClock) Limiter {
		return newRedisLimiter(t, limit, window, clock)
	})
}

func TestRedisLimiter_UsesPrefixAndExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	limiter := NewRedisLimiter(client, "", 5, time.Minute)
	if _, err := limiter.Allow(context.Background(), "9.9.9.9"); err != nil {
		t.Fatalf("Allow() error = %v", err)
	}

	if !mr.Exists("ratelimit:9.9.9.9") {
		t.Fatalf("expected key ratelimit:9.9.9.9, have %v", mr.Keys())
	}
	if ttl := mr.TTL("ratelimit:9.9.9.9"); ttl <= 0 || ttl > time.Minute {
		t.Errorf("TTL = %v, want within one window", ttl)
	}
}

func TestRedisLimiter_ServerDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()
	mr.Close()

	limiter := NewRedisLimiter(client, "", 5, time.Minute)
	if _, err := limiter.Allow(context.Background(), "k"); err == nil {
		t.Fatal("expected error when redis is unreachable")
	}
}
