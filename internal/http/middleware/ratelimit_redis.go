package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
)

const redisOpTimeout = 200 * time.Millisecond

// RedisRateLimit implements a fixed-window limiter per client IP using Redis INCR/EXPIRE.
// key format: rl:<window_seconds>:<ip>
// A nil client or a redis error lets the request through.
func RedisRateLimit(rdb *redis.Client, maxRequests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "rl:" + strconv.FormatInt(int64(window.Seconds()), 10) + ":" + c.ClientIP()
		limitByKey(c, rdb, key, c.FullPath(), maxRequests, window, "X-RateLimit")
	}
}

// UserRateLimit limits requests per authenticated user (not per IP) using Redis.
// Requires RequireAuth to run before it.
// key format: user_rl:<user_id>:<window_seconds>
func UserRateLimit(rdb *redis.Client, maxRequests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := IdentityFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}
		key := "user_rl:" + id.UserID + ":" + strconv.FormatInt(int64(window.Seconds()), 10)
		limitByKey(c, rdb, key, "user:"+c.FullPath(), maxRequests, window, "X-UserRateLimit")
	}
}

func limitByKey(c *gin.Context, rdb *redis.Client, key, endpoint string, maxRequests int, window time.Duration, headerPrefix string) {
	if rdb == nil {
		c.Next()
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), redisOpTimeout)
	defer cancel()

	val, err := rdb.Incr(ctx, key).Result()
	if err != nil {
		c.Header(headerPrefix+"-Error", "redis-error")
		c.Next()
		return
	}
	if val == 1 {
		rdb.Expire(ctx, key, window)
	}

	c.Header(headerPrefix+"-Limit", strconv.Itoa(maxRequests))
	c.Header(headerPrefix+"-Remaining", strconv.FormatInt(max(0, int64(maxRequests)-val), 10))

	if val > int64(maxRequests) {
		RLBlocked.WithLabelValues(endpoint).Inc()
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error":       "rate limit exceeded",
			"retry_after": int(window.Seconds()),
		})
		return
	}

	RLRequests.WithLabelValues(endpoint).Inc()
	c.Next()
}
