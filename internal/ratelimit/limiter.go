package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter admits or rejects anonymous submissions keyed by source IP.
type Limiter interface {
	Allow(ctx context.Context, ip string) (bool, error)
}

// incrScript increments the window counter and sets its expiry on first hit
// as a single atomic operation, so two concurrent requests cannot both
// observe "under quota".
var incrScript = redis.NewScript(`
local current = redis.call('INCR', KEYS[1])
if current == 1 then
  redis.call('EXPIRE', KEYS[1], ARGV[1])
end
return current
`)

// RedisLimiter is a fixed-window per-IP counter backed by Redis.
type RedisLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
}

// NewRedisLimiter builds a limiter with the given quota per window.
func NewRedisLimiter(client *redis.Client, limit int, window time.Duration) *RedisLimiter {
	if limit <= 0 {
		limit = 3
	}
	if window <= 0 {
		window = time.Hour
	}
	return &RedisLimiter{client: client, limit: limit, window: window}
}

// Allow atomically increments the counter for the IP's current window and
// reports whether the submission is within quota.
func (l *RedisLimiter) Allow(ctx context.Context, ip string) (bool, error) {
	key := fmt.Sprintf("ratelimit:contact:%s", ip)
	count, err := incrScript.Run(ctx, l.client, []string{key}, int(l.window.Seconds())).Int64()
	if err != nil {
		return false, err
	}
	return count <= int64(l.limit), nil
}
