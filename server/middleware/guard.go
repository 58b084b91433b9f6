package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stockwatch/stockwatch/auth/authctx"
	"github.com/stockwatch/stockwatch/authz"
)

// Guard enforces the route access table. Requests that do not meet the
// route's access level are rejected with a bare 403. Requests for
// unregistered paths pass through so the router can answer 404.
func Guard() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			c.Next()
			return
		}

		principal, authenticated := authctx.Get(c.Request.Context())
		access := authz.RequiredAccess(c.Request.Method, route)
		if !authz.Allowed(access, principal, authenticated) {
			c.AbortWithStatus(http.StatusForbidden)
			return
		}
		c.Next()
	}
}
