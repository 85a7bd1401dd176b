package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/muhammadolammi/resumereview/internal/auth"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

type RateLimiterConfig struct {
	Client    redis.Cmdable
	Limit     int
	Window    time.Duration
	KeyPrefix string
	Log       *logrus.Logger
}

// NewRateLimiter is a fixed-window limiter keyed by the authenticated user.
// Redis failures let the request through.
func NewRateLimiter(cfg RateLimiterConfig) gin.HandlerFunc {
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "rl:resume:"
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		id := "anonymous"
		if ident, ok := auth.FromGin(c); ok {
			id = ident.ID.String()
		}
		key := cfg.KeyPrefix + id

		count, err := cfg.Client.Incr(ctx, key).Result()
		if err != nil {
			if cfg.Log != nil {
				cfg.Log.WithError(err).Warn("rate limiter unavailable")
			}
			c.Next()
			return
		}
		if count == 1 {
			cfg.Client.Expire(ctx, key, cfg.Window)
		}

		ttl, _ := cfg.Client.TTL(ctx, key).Result()
		reset := int(ttl.Seconds())
		if reset < 0 {
			reset = 0
		}
		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", cfg.Limit))
		c.Header("X-RateLimit-Reset", fmt.Sprintf("%d", reset))

		if count > int64(cfg.Limit) {
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("Retry-After", fmt.Sprintf("%d", reset))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":           "Too many requests. Please try again later.",
				"kind":            "rate_limited",
				"retry_after_sec": reset,
			})
			return
		}

		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", cfg.Limit-int(count)))
		c.Next()
	}
}
