package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"inboxhub/backend/internal/monitoring"
)

// HTTPMetrics HTTP 指标中间件。
func HTTPMetrics(metrics *monitoring.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start)
		status := strconv.Itoa(c.Writer.Status())

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		metrics.RecordHTTPRequest(c.Request.Method, path, status, duration)

		if c.Writer.Status() >= 500 {
			metrics.RecordError("http_server_error")
		}
	}
}
