package middleware

import (
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RateLimiter is a fixed-window counter per client address kept in Redis.
type RateLimiter struct {
	redisClient *redis.Client
	logger      *slog.Logger
}

func NewRateLimiter(client *redis.Client, logger *slog.Logger) *RateLimiter {
	return &RateLimiter{redisClient: client, logger: logger}
}

// Limit lets at most limit requests per window through for each client
// address. Redis errors let the request pass.
func (rl *RateLimiter) Limit(keySuffix string, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		key := fmt.Sprintf("rate_limit:%s:%s", keySuffix, ip)

		count, err := rl.redisClient.Incr(c, key).Result()
		if err != nil {
			rl.logger.Warn("rate limiter unavailable", "key", key, "error", err)
			c.Next()
			return
		}

		// First hit opens the window.
		if count == 1 {
			if err := rl.redisClient.Expire(c, key, window).Err(); err != nil {
				rl.logger.Warn("rate limiter expire failed", "key", key, "error", err)
			}
		}

		if count > int64(limit) {
			ttl, err := rl.redisClient.TTL(c, key).Result()
			if err != nil || ttl < 0 {
				ttl = window
			}
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(ttl.Seconds()))))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Too many requests",
			})
			return
		}
		c.Next()
	}
}
