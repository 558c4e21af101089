package middleware

import (
	"context"
	"sync"
	"time"

	"github.com/MarawanEldeib/portfolio-website-sub000/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

type throttleEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Throttler keeps a token bucket per client.
type Throttler struct {
	limit   rate.Limit
	burst   int
	idle    time.Duration
	now     func() time.Time
	mutex   sync.Mutex
	clients map[string]*throttleEntry
}

func NewThrottler(perMinute, burst int, idle time.Duration) *Throttler {
	return &Throttler{
		limit:   rate.Limit(float64(perMinute) / 60),
		burst:   burst,
		idle:    idle,
		now:     time.Now,
		clients: make(map[string]*throttleEntry),
	}
}

func (t *Throttler) Allow(key string) bool {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	now := t.now()
	e, exists := t.clients[key]
	if !exists {
		e = &throttleEntry{limiter: rate.NewLimiter(t.limit, t.burst)}
		t.clients[key] = e
	}
	e.lastSeen = now

	return e.limiter.AllowN(now, 1)
}

// Evict forgets clients idle for longer than the idle timeout.
func (t *Throttler) Evict() int {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	now := t.now()
	removed := 0
	for key, e := range t.clients {
		if now.Sub(e.lastSeen) > t.idle {
			delete(t.clients, key)
			removed++
		}
	}
	return removed
}

func (t *Throttler) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.Evict()
		}
	}
}

func Throttle(t *Throttler) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := utils.ClientKey(c)
		if !t.Allow(key) {
			logrus.WithFields(logrus.Fields{
				"client": key,
				"path":   c.FullPath(),
			}).Debug("request throttled")
			utils.TooManyRequests(c)
			c.Abort()
			return
		}
		c.Next()
	}
}
