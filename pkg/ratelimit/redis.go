package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// slidingWindow trims the sorted set to the window, then either records the
// request or reports how long until the oldest entry leaves the window.
// Scores are microseconds.
var slidingWindow = redis.NewScript(`
	local key = KEYS[1]
	local now = tonumber(ARGV[1])
	local window = tonumber(ARGV[2])
	local limit = tonumber(ARGV[3])
	local member = ARGV[4]

	redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)

	local count = redis.call('ZCARD', key)
	if count >= limit then
		local retry = window
		local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
		if oldest[2] then
			retry = tonumber(oldest[2]) + window - now
		end
		return {0, count, retry}
	end

	redis.call('ZADD', key, now, member)
	redis.call('PEXPIRE', key, math.ceil(window / 1000))

	return {1, count + 1, 0}
`)

// RedisLimiter is a sliding window limiter backed by a Redis sorted set.
type RedisLimiter struct {
	client    redis.Cmdable
	keyPrefix string
	limit     int
	window    time.Duration
	now       func() time.Time
}

func NewRedisLimiter(client redis.Cmdable, keyPrefix string, limit int, window time.Duration) *RedisLimiter {
	if keyPrefix == "" {
		keyPrefix = "ratelimit:"
	}
	return &RedisLimiter{
		client:    client,
		keyPrefix: keyPrefix,
		limit:     limit,
		window:    window,
		now:       time.Now,
	}
}

// WithClock replaces the limiter clock.
func (r *RedisLimiter) WithClock(now func() time.Time) *RedisLimiter {
	r.now = now
	return r
}

func (r *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	res, err := slidingWindow.Run(ctx, r.client, []string{r.keyPrefix + key},
		r.now().UnixMicro(),
		r.window.Microseconds(),
		r.limit,
		uuid.NewString(),
	).Int64Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("redis rate limit script failed: %w", err)
	}
	if len(res) != 3 {
		return Decision{}, fmt.Errorf("redis rate limit script returned %d values", len(res))
	}

	d := Decision{
		Allowed: res[0] == 1,
		Limit:   r.limit,
	}
	if d.Allowed {
		d.Remaining = r.limit - int(res[1])
	} else {
		d.RetryAfter = time.Duration(res[2]) * time.Microsecond
	}
	return d, nil
}
