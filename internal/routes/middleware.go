package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/ssmgcode/cargo-expreso-control/internal/logger"
)

const (
	DefaultRateInterval = 100 * time.Millisecond
	DefaultRateBurst    = 30
)

// RateLimit rejects requests once the shared limiter runs dry.
func RateLimit(limiter *rate.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow() {
			logger.L.Warn("Rate limit exceeded",
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"remoteAddr", c.ClientIP())
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": http.StatusText(http.StatusTooManyRequests)})
			return
		}
		c.Next()
	}
}

// RequestLogger writes one structured line per request.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.L.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start).String())
	}
}
