package middleware

import (
	"github.com/SAP-F-2025/lms-service/internal/metrics"
	"github.com/gin-gonic/gin"
)

// Metrics feeds request timings and outcomes into the collector.
func Metrics(collector *metrics.Collector) gin.HandlerFunc {
	return func(c *gin.Context) {
		done := collector.Begin()
		defer func() { done(c.Writer.Status()) }()
		c.Next()
	}
}
