package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/stockwatch/stockwatch/errors"
	"github.com/stockwatch/stockwatch/logger"
)

// Recovery converts panics into a 500 response and logs the stack so a
// bad handler cannot take the process down.
func Recovery(log *logger.Logger) gin.HandlerFunc {
	log = log.WithComponent("recovery")
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("Panic recovered", map[string]interface{}{
					"panic":      r,
					"path":       c.Request.URL.Path,
					"method":     c.Request.Method,
					"request_id": GetRequestID(c),
					"stack":      string(debug.Stack()),
				})
				c.AbortWithStatusJSON(http.StatusInternalServerError, errors.ErrorResponse{
					Error: "Something went wrong",
				})
			}
		}()
		c.Next()
	}
}
