package middleware

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// RedisLimiter is a fixed window shared by every instance that uses the same
// Redis. Redis failures let the request through.
type RedisLimiter struct {
	client *redis.Client
	prefix string
	max    int
	window time.Duration
}

func NewRedisLimiter(client *redis.Client, prefix string, max int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		prefix: prefix,
		max:    max,
		window: window,
	}
}

// Take counts the request and makes sure the key carries an expiry in one
// MULTI/EXEC, so a crash between the two can never leave a window without an
// end. EXPIRE NX leaves a running window untouched.
func (l *RedisLimiter) Take(ctx context.Context, key string) Decision {
	redisKey := l.prefix + key

	var (
		incr *redis.IntCmd
		ttl  *redis.DurationCmd
	)
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, redisKey)
		pipe.ExpireNX(ctx, redisKey, l.window)
		ttl = pipe.PTTL(ctx, redisKey)
		return nil
	})
	if err != nil {
		logrus.WithError(err).WithField("key", redisKey).Warn("redis rate limiter failed")
	}

	count, incrErr := incr.Result()
	if incrErr != nil {
		logrus.WithError(incrErr).Warn("redis rate limiter unavailable, allowing request")
		return Decision{Allowed: true, Limit: l.max, Remaining: l.max}
	}

	expiresIn, ttlErr := ttl.Result()
	if ttlErr != nil || expiresIn <= 0 {
		expiresIn = l.window
	}

	d := Decision{
		Allowed:   count <= int64(l.max),
		Limit:     l.max,
		Remaining: max(l.max-int(count), 0),
		ResetAt:   time.Now().Add(expiresIn),
	}
	if !d.Allowed {
		d.RetryAfter = expiresIn
	}
	return d
}

func (l *RedisLimiter) Close() error {
	return l.client.Close()
}
