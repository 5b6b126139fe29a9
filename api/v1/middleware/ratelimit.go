package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"dnspanel/internal/httpx"
	"dnspanel/internal/ratelimit"
)

// RateLimit enforces the per-caller request budget. Authenticated
// requests are keyed by user id so a user cannot dodge the limit by
// rotating source addresses; anonymous requests fall back to client IP.
func RateLimit(limiter *ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		if uid, ok := c.Get("uid"); ok {
			if id, ok := uid.(int); ok {
				key = "u:" + strconv.Itoa(id)
			}
		}

		res := limiter.Allow(c.Request.Context(), key)
		if !res.Allowed {
			httpx.FailErr(c, httpx.ErrRateLimited("too many requests", res.RetryAfter))
			c.Abort()
			return
		}

		c.Next()
	}
}
