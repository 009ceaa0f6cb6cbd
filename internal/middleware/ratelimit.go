package middleware

import (
	"net/http"

	"realestate-hub/internal/ratelimit"

	"github.com/gin-gonic/gin"
)

// RateLimit rejects requests from a client IP that exceeded its window
func RateLimit(limiter *ratelimit.RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		if !limiter.AllowRequest(key) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Demasiadas solicitudes. Por favor intenta de nuevo más tarde.",
				"stats": limiter.GetStats(key),
			})
			return
		}
		c.Next()
	}
}
