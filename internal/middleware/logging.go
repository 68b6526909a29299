package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/kyvra-tech/shard-node-dashboard/pkg/metrics"
)

// StructuredLogger logs every request and records the HTTP metrics
func StructuredLogger(logger *logrus.Logger) gin.HandlerFunc {
	m := metrics.NewMetrics()

	return func(c *gin.Context) {
		startTime := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(startTime)
		statusCode := c.Writer.Status()

		m.RecordHTTPRequest(c.Request.Method, c.FullPath(), statusCode, latency)

		entry := logger.WithFields(logrus.Fields{
			"request_id": GetRequestID(c),
			"method":     c.Request.Method,
			"path":       path,
			"query":      query,
			"status":     statusCode,
			"latency_ms": latency.Milliseconds(),
			"client_ip":  c.ClientIP(),
		})

		if len(c.Errors) > 0 {
			entry.WithField("errors", c.Errors.String()).Error("Request completed with errors")
		} else if statusCode >= 500 {
			entry.Error("Request failed with server error")
		} else if statusCode >= 400 {
			entry.Warn("Request failed with client error")
		} else {
			entry.Info("Request completed successfully")
		}
	}
}
