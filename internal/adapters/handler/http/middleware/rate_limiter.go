package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/comitanigiacomo/kanso-accountability-engine/internal/platform/logger"
)

// fixedWindow increments the bucket and starts its window on the first hit,
// returning the new count and the remaining window in milliseconds.
var fixedWindow = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if n == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return {n, redis.call("PTTL", KEYS[1])}
`)

// RateLimitKey names the bucket of a request. Chat integrations are keyed by
// their token subject so one noisy bridge cannot starve another behind the
// same egress IP.
func RateLimitKey(c *gin.Context) string {
	if clientID, ok := GetClientID(c); ok {
		return "rate_limit:client:" + clientID
	}
	return "rate_limit:ip:" + c.ClientIP()
}

// RateLimiterMiddleware allows limit requests per bucket per window. When
// Redis cannot be reached the request goes through.
func RateLimiterMiddleware(rdb *redis.Client, limit int, window time.Duration, log *zap.Logger) gin.HandlerFunc {
	log = logger.OrNop(log).Named("rate_limiter")

	return func(c *gin.Context) {
		key := RateLimitKey(c)

		res, err := fixedWindow.Run(c.Request.Context(), rdb, []string{key}, window.Milliseconds()).Int64Slice()
		if err != nil || len(res) != 2 {
			log.Warn("limiter skipped", zap.String("key", key), zap.Error(err))
			c.Next()
			return
		}

		count, ttl := res[0], time.Duration(res[1])*time.Millisecond
		if ttl < 0 {
			ttl = window
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(max(0, int64(limit)-count), 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(ttl).Unix(), 10))

		if count > int64(limit) {
			c.Header("Retry-After", strconv.Itoa(int((ttl+time.Second-1)/time.Second)))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}

		c.Next()
	}
}
