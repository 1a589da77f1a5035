package middleware

import (
	"fmt"
	"net/http"
	"time"

	"launcher-hub/internal/repository"

	"github.com/gin-gonic/gin"
)

type RateLimitMiddleware struct {
	presenceRepo *repository.PresenceRepository
}

func NewRateLimitMiddleware(presenceRepo *repository.PresenceRepository) *RateLimitMiddleware {
	return &RateLimitMiddleware{presenceRepo: presenceRepo}
}

// WebSocketRateLimit caps upgrade attempts per client IP. Authentication
// happens after the upgrade, so the IP is the only identity available here.
func (rm *RateLimitMiddleware) WebSocketRateLimit(requests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := fmt.Sprintf("rate_limit:ws:%s", c.ClientIP())

		allowed, err := rm.presenceRepo.CheckRateLimit(c.Request.Context(), key, requests, window)
		if err != nil {
			// Rate limiting is protective, not load-bearing: let the
			// request through when the counter store is down.
			c.Next()
			return
		}

		if !allowed {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":   "Rate limit exceeded",
				"message": fmt.Sprintf("Too many connection attempts. Limit: %d per %v", requests, window),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
