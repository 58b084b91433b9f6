package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/stockwatch/stockwatch/auth"
	"github.com/stockwatch/stockwatch/auth/authctx"
	"github.com/stockwatch/stockwatch/logger"
)

const bearerPrefix = "Bearer "

// Authenticate extracts and verifies the bearer token on every request
// and, when valid, attaches the resolved principal to the request
// context. Missing, malformed or expired tokens leave the request
// anonymous; the guard decides whether anonymous access is acceptable
// for the route.
func Authenticate(svc *auth.Service, log *logger.Logger) gin.HandlerFunc {
	log = log.WithComponent("auth")
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, bearerPrefix) {
			c.Next()
			return
		}
		token := strings.TrimSpace(header[len(bearerPrefix):])
		if token == "" || !svc.Tokens().Verify(token) {
			c.Next()
			return
		}
		login, ok := svc.Tokens().Subject(token)
		if !ok {
			c.Next()
			return
		}
		principal, err := svc.Resolve(c.Request.Context(), login)
		if err != nil {
			log.Debug("Token subject no longer resolvable", map[string]interface{}{
				"login": login,
			})
			c.Next()
			return
		}
		c.Request = c.Request.WithContext(authctx.Set(c.Request.Context(), principal))
		c.Next()
	}
}
