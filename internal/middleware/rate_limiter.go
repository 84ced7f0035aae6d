package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"barcontrol/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// windowLimiter counts requests per key inside a fixed window that restarts on expiry.
type windowLimiter struct {
	mu      sync.Mutex
	entries map[string]*windowEntry
	limit   int
	window  time.Duration
	now     func() time.Time
}

type windowEntry struct {
	count     int
	windowEnd time.Time
}

func newWindowLimiter(limit int, window time.Duration) *windowLimiter {
	return &windowLimiter{
		entries: make(map[string]*windowEntry),
		limit:   limit,
		window:  window,
		now:     time.Now,
	}
}

// hit registers one request for key. When the limit is exceeded it returns false and the
// time left until the window resets.
func (l *windowLimiter) hit(key string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	e, ok := l.entries[key]
	if !ok || now.After(e.windowEnd) {
		e = &windowEntry{windowEnd: now.Add(l.window)}
		l.entries[key] = e
	}
	e.count++
	if e.count > l.limit {
		return false, e.windowEnd.Sub(now)
	}
	return true, 0
}

func (l *windowLimiter) purge() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	n := 0
	for k, e := range l.entries {
		if now.After(e.windowEnd) {
			delete(l.entries, k)
			n++
		}
	}
	return n
}

const purgeInterval = 5 * time.Minute

var (
	limitersMu sync.Mutex
	limiters   []*windowLimiter
)

func register(l *windowLimiter) *windowLimiter {
	limitersMu.Lock()
	limiters = append(limiters, l)
	limitersMu.Unlock()
	return l
}

// StartLimiterPurge drops expired rate-limit entries until ctx is cancelled.
func StartLimiterPurge(ctx context.Context) {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			limitersMu.Lock()
			purged := 0
			for _, l := range limiters {
				purged += l.purge()
			}
			limitersMu.Unlock()
			if purged > 0 {
				log.Debug().Int("entries_purged", purged).Msg("rate limiter purged")
			}
		}
	}
}

// LoginRateLimiter limits login attempts to 20 per minute per IP.
func LoginRateLimiter() gin.HandlerFunc {
	return limitBy(register(newWindowLimiter(20, time.Minute)),
		"Muitas tentativas de login. Tente novamente em 1 minuto.")
}

// RateLimiter limits every request to limit per window per IP.
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	return limitBy(register(newWindowLimiter(limit, window)),
		"Muitas requisições. Tente novamente em instantes.")
}

func limitBy(l *windowLimiter, msg string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, wait := l.hit(c.ClientIP())
		if !ok {
			secs := int(math.Ceil(wait.Seconds()))
			if secs < 1 {
				secs = 1
			}
			c.Header("Retry-After", strconv.Itoa(secs))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New(msg))
			return
		}
		c.Next()
	}
}
