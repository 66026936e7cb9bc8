package middleware

import (
	"time"

	"github.com/SAP-F-2025/lms-service/internal/utils"
	"github.com/gin-gonic/gin"
)

const slowRequestThreshold = time.Second

// RequestLogging logs every response with its latency and flags slow requests.
func RequestLogging(logger utils.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		fields := []any{
			"client_ip", c.ClientIP(),
			"request_id", c.GetHeader(RequestIDHeader),
			"duration_ms", latency.Milliseconds(),
		}
		if userID := CurrentUserID(c); userID != 0 {
			fields = append(fields, "user_id", userID)
		}
		if len(c.Errors) > 0 {
			fields = append(fields, "errors", c.Errors.String())
		}

		logger.LogRequest(c.Request.Method, path, status, latency.String(), fields...)

		if latency > slowRequestThreshold {
			logger.Warn("Slow API Request", append([]any{"method", c.Request.Method, "path", path}, fields...)...)
		}
	}
}
