package middleware

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisLimiter(t *testing.T) (*RedisLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	l := NewRedisLimiter(client, "ratelimit:contact:", 5, 15*time.Minute)
	t.Cleanup(func() { l.Close() })
	return l, mr
}

func TestRedisLimiter_FixedWindow(t *testing.T) {
	l, mr := newTestRedisLimiter(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		d := l.Take(ctx, "203.0.113.7")
		require.True(t, d.Allowed, "request %d", i+1)
		assert.Equal(t, 4-i, d.Remaining)
	}
	denied := l.Take(ctx, "203.0.113.7")
	assert.False(t, denied.Allowed)
	assert.True(t, denied.RetryAfter > 0 && denied.RetryAfter <= 15*time.Minute)
	assert.True(t, l.Take(ctx, "198.51.100.2").Allowed)

	ttl := mr.TTL("ratelimit:contact:203.0.113.7")
	assert.True(t, ttl > 0 && ttl <= 15*time.Minute)

	mr.FastForward(15*time.Minute + time.Second)

	d := l.Take(ctx, "203.0.113.7")
	assert.True(t, d.Allowed)
	assert.Equal(t, 4, d.Remaining)
}

func TestRedisLimiter_LaterHitsKeepWindowEnd(t *testing.T) {
	l, mr := newTestRedisLimiter(t)
	ctx := context.Background()

	l.Take(ctx, "k")
	mr.FastForward(10 * time.Minute)
	l.Take(ctx, "k")

	ttl := mr.TTL("ratelimit:contact:k")
	assert.True(t, ttl > 0 && ttl <= 5*time.Minute, "ttl %s", ttl)
}

func TestRedisLimiter_RepairsMissingExpiry(t *testing.T) {
	l, mr := newTestRedisLimiter(t)
	require.NoError(t, mr.Set("ratelimit:contact:k", "2"))

	d := l.Take(context.Background(), "k")
	assert.True(t, d.Allowed)
	assert.True(t, mr.TTL("ratelimit:contact:k") > 0)
}

func TestRedisLimiter_FailsOpen(t *testing.T) {
	l, mr := newTestRedisLimiter(t)
	mr.Close()

	d := l.Take(context.Background(), "k")
	assert.True(t, d.Allowed)
}
