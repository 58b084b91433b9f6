package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/stockwatch/stockwatch/observability"
)

// Metrics records request counters and latency histograms. A nil
// metrics instance disables recording.
func Metrics(m *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		m.RecordRequestStart(ctx)
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.RecordRequestEnd(ctx, c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
