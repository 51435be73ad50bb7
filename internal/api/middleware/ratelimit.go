package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/omarhammouda0/task-management-system/internal/apperrors"
)

// RateLimit is a fixed-window per-IP counter over Redis, applied to the
// login and register routes. A nil client disables limiting, so the API
// stays usable without Redis in dev.
func RateLimit(client *redis.Client, limit int, window time.Duration, logger *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if client == nil || limit <= 0 {
			c.Next()
			return
		}

		key := fmt.Sprintf("ratelimit:%s:%s", c.FullPath(), c.ClientIP())
		ctx := c.Request.Context()

		count, err := client.Incr(ctx, key).Result()
		if err != nil {
			// Redis being down must not lock users out.
			logger.Warnw("rate limiter unavailable", "error", err)
			c.Next()
			return
		}
		if count == 1 {
			client.Expire(ctx, key, window)
		}
		if count > int64(limit) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "too many requests, try again later",
				"code":  apperrors.TextCodeRateLimited,
			})
			return
		}
		c.Next()
	}
}
