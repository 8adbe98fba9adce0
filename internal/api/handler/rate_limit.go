package handler

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Token bucket kept in a Redis hash; the script makes refill and take atomic.
var rateLimitScript = redis.NewScript(`
local key = KEYS[1]
local capacity = tonumber(ARGV[1])
local rate = tonumber(ARGV[2])
local now = tonumber(ARGV[3])
local requested = tonumber(ARGV[4])

local bucket = redis.call('HMGET', key, 'tokens', 'updated_at')
local tokens = tonumber(bucket[1])
local updated_at = tonumber(bucket[2])

if tokens == nil or updated_at == nil then
    tokens = capacity
    updated_at = now
end

local elapsed = math.max(0, now - updated_at)
tokens = math.min(capacity, tokens + elapsed * rate)

local allowed = 0
local retry_after = 0

if tokens >= requested then
    tokens = tokens - requested
    allowed = 1
else
    retry_after = (requested - tokens) / rate
end

redis.call('HSET', key, 'tokens', tokens, 'updated_at', now)
redis.call('EXPIRE', key, 3600)

return {allowed, math.floor(tokens), math.ceil(retry_after)}
`)

// RateLimit limits each user (or, before authentication, each client IP) to qps
// requests per second with bursts of 2*qps. If Redis fails the request passes.
func RateLimit(rdb *redis.Client, qps int) gin.HandlerFunc {
	capacity := 2 * qps

	return func(c *gin.Context) {
		if rdb == nil || qps <= 0 {
			c.Next()
			return
		}

		subject := currentUser(c)
		if subject == "" {
			subject = "ip:" + c.ClientIP()
		}
		key := "rate_limit:send:" + subject
		now := float64(time.Now().UnixNano()) / 1e9

		result, err := rateLimitScript.Run(c.Request.Context(), rdb, []string{key}, capacity, qps, now, 1).Slice()
		if err != nil {
			log.Printf("WARNING: rate limiter unavailable, allowing request: %v", err)
			c.Next()
			return
		}

		allowed, remaining, retryAfter := int64(0), int64(capacity), int64(0)
		if len(result) >= 3 {
			allowed, _ = result[0].(int64)
			remaining, _ = result[1].(int64)
			retryAfter, _ = result[2].(int64)
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(capacity))
		if allowed == 0 {
			c.Header("Retry-After", strconv.FormatInt(retryAfter, 10))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many messages, slow down"})
			return
		}

		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
		c.Next()
	}
}
