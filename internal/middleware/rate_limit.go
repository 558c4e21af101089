package middleware

import (
	"context"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/MarawanEldeib/portfolio-website-sub000/internal/services"
	"github.com/MarawanEldeib/portfolio-website-sub000/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Decision is the outcome of one rate-limit check.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
	// RetryAfter is how long a denied client has to wait, measured on the
	// limiter's own clock. Zero when allowed.
	RetryAfter time.Duration
}

// Limiter counts requests per client key.
type Limiter interface {
	Take(ctx context.Context, key string) Decision
}

type window struct {
	count   int
	resetAt time.Time
}

// FixedWindowLimiter allows max requests per key in each window. State lives
// in process memory only.
type FixedWindowLimiter struct {
	max     int
	window  time.Duration
	now     func() time.Time
	mutex   sync.Mutex
	entries map[string]*window
}

type LimiterOption func(*FixedWindowLimiter)

// WithClock replaces the time source.
func WithClock(now func() time.Time) LimiterOption {
	return func(l *FixedWindowLimiter) {
		l.now = now
	}
}

func NewFixedWindowLimiter(max int, length time.Duration, opts ...LimiterOption) *FixedWindowLimiter {
	l := &FixedWindowLimiter{
		max:     max,
		window:  length,
		now:     time.Now,
		entries: make(map[string]*window),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *FixedWindowLimiter) Allow(key string) bool {
	return l.Take(context.Background(), key).Allowed
}

func (l *FixedWindowLimiter) Take(_ context.Context, key string) Decision {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	now := l.now()
	w, exists := l.entries[key]
	if !exists || now.After(w.resetAt) {
		w = &window{count: 1, resetAt: now.Add(l.window)}
		l.entries[key] = w
		return l.decision(w, now, true)
	}

	if w.count < l.max {
		w.count++
		return l.decision(w, now, true)
	}

	return l.decision(w, now, false)
}

func (l *FixedWindowLimiter) decision(w *window, now time.Time, allowed bool) Decision {
	d := Decision{
		Allowed:   allowed,
		Limit:     l.max,
		Remaining: max(l.max-w.count, 0),
		ResetAt:   w.resetAt,
	}
	if !allowed {
		d.RetryAfter = w.resetAt.Sub(now)
	}
	return d
}

// Sweep drops keys whose window has ended and returns how many were removed.
func (l *FixedWindowLimiter) Sweep() int {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	now := l.now()
	removed := 0
	for key, w := range l.entries {
		if now.After(w.resetAt) {
			delete(l.entries, key)
			removed++
		}
	}
	return removed
}

// Len is the number of tracked keys.
func (l *FixedWindowLimiter) Len() int {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	return len(l.entries)
}

// Run sweeps every interval until ctx is done.
func (l *FixedWindowLimiter) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := l.Sweep(); removed > 0 {
				logrus.WithField("removed", removed).Debug("swept expired rate limit windows")
			}
		}
	}
}

// RateLimit rejects clients that exceeded the limiter with 429.
func RateLimit(limiter Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := utils.ClientKey(c)
		d := limiter.Take(c.Request.Context(), key)

		c.Header("X-RateLimit-Limit", strconv.Itoa(d.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
		if !d.ResetAt.IsZero() {
			c.Header("X-RateLimit-Reset", strconv.FormatInt(d.ResetAt.Unix(), 10))
		}

		if !d.Allowed {
			retryAfter := max(int(math.Ceil(d.RetryAfter.Seconds())), 1)
			c.Header("Retry-After", strconv.Itoa(retryAfter))

			logrus.WithFields(logrus.Fields{
				"client": key,
				"path":   c.FullPath(),
			}).Warn("rate limit exceeded")

			c.Error(services.ErrRateLimited)
			utils.TooManyRequests(c)
			c.Abort()
			return
		}

		c.Next()
	}
}
