package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jobboard/cms/internal/pkg/redis"
	"github.com/jobboard/cms/internal/pkg/response"
	"go.uber.org/zap"
)

const rateLimitWindow = time.Second

// RateLimit caps anonymous requests at perSecond per client IP using a
// one-second Redis counter. Authenticated requests, a nil client, and Redis
// errors all pass through.
func RateLimit(rdb *redis.Client, perSecond int, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil || perSecond <= 0 || IsAuthenticated(c) {
			c.Next()
			return
		}

		ip := c.ClientIP()
		if ip == "" {
			c.Next()
			return
		}

		key := fmt.Sprintf("rate_limit:%s:%d", ip, time.Now().Unix())
		count, err := rdb.IncrWindow(c.Request.Context(), key, rateLimitWindow+time.Second)
		if err != nil {
			log.Warn("rate limit counter failed", zap.Error(err))
			c.Next()
			return
		}

		if count > int64(perSecond) {
			c.Header("Retry-After", "1")
			response.Error(c, http.StatusTooManyRequests, "too many requests")
			return
		}

		c.Next()
	}
}
