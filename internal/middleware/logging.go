// Package middleware holds the gin middleware the API server mounts:
// request logging with correlation IDs, identity extraction, and
// centralized error rendering.
package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/astromatch/astromatch/internal/telemetry"
)

// CorrelationHeader carries the request correlation ID in and out.
const CorrelationHeader = "X-Correlation-ID"

var skipLogPaths = map[string]bool{
	"/health": true,
	"/ping":   true,
}

// Logging assigns each request a correlation ID, stores it on the
// request context, and logs the request and its outcome.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		correlationID := c.GetHeader(CorrelationHeader)
		if correlationID == "" {
			correlationID = telemetry.NewCorrelationID()
		}
		c.Header(CorrelationHeader, correlationID)

		ctx := telemetry.WithCorrelationID(c.Request.Context(), correlationID)
		c.Request = c.Request.WithContext(ctx)

		if skipLogPaths[c.Request.URL.Path] {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		duration := time.Since(start)

		logger := telemetry.GetContextualLogger(ctx).WithFields(logrus.Fields{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      c.Writer.Status(),
			"duration_ms": duration.Milliseconds(),
			"remote_ip":   c.ClientIP(),
		})

		switch {
		case c.Writer.Status() >= 500:
			logger.Error("Request failed")
		case c.Writer.Status() >= 400:
			logger.Warn("Request rejected")
		default:
			logger.Info("Request completed")
		}
	}
}
