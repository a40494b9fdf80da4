package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

type clientInfo struct {
	start time.Time
	count int
}

// LocalRateLimiter is the in-process fixed-window limiter used when no redis
// is configured. State is per instance, so limits are per process.
type LocalRateLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientInfo
	max     int
	window  time.Duration
	now     func() time.Time
}

func NewLocalRateLimiter(maxRequests int, window time.Duration) *LocalRateLimiter {
	return &LocalRateLimiter{
		clients: make(map[string]*clientInfo),
		max:     maxRequests,
		window:  window,
		now:     time.Now,
	}
}

// Allow counts one hit for key and reports whether it is within the limit
func (l *LocalRateLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	ci, ok := l.clients[key]
	if !ok || now.Sub(ci.start) > l.window {
		l.clients[key] = &clientInfo{start: now, count: 1}
		l.sweepLocked(now)
		return true
	}
	ci.count++
	return ci.count <= l.max
}

// sweepLocked drops expired windows so the map does not grow without bound
func (l *LocalRateLimiter) sweepLocked(now time.Time) {
	if len(l.clients) < 1024 {
		return
	}
	for k, ci := range l.clients {
		if now.Sub(ci.start) > l.window {
			delete(l.clients, k)
		}
	}
}

// SimpleRateLimit blocks clients that send more than maxRequests per window,
// keyed by client IP
func SimpleRateLimit(maxRequests int, window time.Duration) gin.HandlerFunc {
	l := NewLocalRateLimiter(maxRequests, window)
	return func(c *gin.Context) {
		endpoint := c.FullPath()
		if !l.Allow(c.ClientIP()) {
			RLBlocked.WithLabelValues(endpoint).Inc()
			c.Header("Retry-After", strconv.Itoa(int(window.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		RLRequests.WithLabelValues(endpoint).Inc()
		c.Next()
	}
}

// LocalUserRateLimit is the in-process counterpart of UserRateLimit.
// Requires RequireAuth to run before it.
func LocalUserRateLimit(l *LocalRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := IdentityFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}
		endpoint := "user:" + c.FullPath()
		if !l.Allow(id.UserID) {
			RLBlocked.WithLabelValues(endpoint).Inc()
			c.Header("Retry-After", strconv.Itoa(int(l.window.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		RLRequests.WithLabelValues(endpoint).Inc()
		c.Next()
	}
}
