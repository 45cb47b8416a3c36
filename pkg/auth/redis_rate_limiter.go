package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRateLimiter is a fixed window counter shared by every instance that
// talks to the same redis
type RedisRateLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
	prefix string
	now    func() time.Time
}

// NewRedisRateLimiter creates a limiter allowing limit requests per window
func NewRedisRateLimiter(client *redis.Client, limit int, window time.Duration) *RedisRateLimiter {
	return &RedisRateLimiter{
		client: client,
		limit:  limit,
		window: window,
		prefix: "casegraph:ratelimit",
		now:    time.Now,
	}
}

func (r *RedisRateLimiter) key(key string) string {
	windowStart := r.now().Truncate(r.window)
	return fmt.Sprintf("%s:%s:%d", r.prefix, key, windowStart.Unix())
}

// Allow increments the window counter. Redis errors fail open and are
// returned alongside true so the caller can log them.
func (r *RedisRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	k := r.key(key)

	var incr *redis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, k)
		pipe.Expire(ctx, k, r.window+time.Minute)
		return nil
	})
	if err != nil {
		return true, fmt.Errorf("rate limiter error (failing open): %w", err)
	}
	return incr.Val() <= int64(r.limit), nil
}

// Remaining returns the requests left in the current window
func (r *RedisRateLimiter) Remaining(ctx context.Context, key string) (int, error) {
	count, err := r.client.Get(ctx, r.key(key)).Int()
	if err == redis.Nil {
		return r.limit, nil
	}
	if err != nil {
		return r.limit, err
	}
	return max(r.limit-count, 0), nil
}

// Reset clears the current window for key
func (r *RedisRateLimiter) Reset(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.key(key)).Err()
}
