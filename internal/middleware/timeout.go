package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Timeout bounds each request with a deadline. Aggregation requests fan
// out RPC calls that inherit this context, so a hung node cannot stall
// a request forever.
func Timeout(timeout time.Duration, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)

		finished := make(chan struct{})

		go func() {
			c.Next()
			finished <- struct{}{}
		}()

		select {
		case <-finished:
			return
		case <-ctx.Done():
			logger.WithFields(logrus.Fields{
				"request_id": GetRequestID(c),
				"method":     c.Request.Method,
				"path":       c.Request.URL.Path,
				"timeout":    timeout.String(),
			}).Warn("Request timeout")

			c.AbortWithStatusJSON(http.StatusGatewayTimeout, gin.H{
				"error":      "Request timeout",
				"request_id": GetRequestID(c),
			})
		}
	}
}
