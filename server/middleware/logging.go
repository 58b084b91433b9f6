package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/stockwatch/stockwatch/logger"
)

// RequestLogger logs each request with method, path, status and latency.
// Health probes are skipped to keep the log readable.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	log = log.WithComponent("http")
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/health" {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		status := c.Writer.Status()
		fields := map[string]interface{}{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     status,
			"latency_ms": latency.Milliseconds(),
			"client_ip":  c.ClientIP(),
		}
		if id := GetRequestID(c); id != "" {
			fields[logger.FieldRequestID] = id
		}
		if len(c.Errors) > 0 {
			fields["errors"] = c.Errors.String()
		}

		logByStatus(log, status, fields)
	}
}

func logByStatus(log *logger.Logger, status int, fields map[string]interface{}) {
	switch {
	case status >= 500:
		log.Error("Request failed", fields)
	case status >= 400:
		log.Warn("Request rejected", fields)
	default:
		log.Info("Request handled", fields)
	}
}
