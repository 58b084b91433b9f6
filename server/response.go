package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stockwatch/stockwatch/errors"
)

// RespondError writes an error to the client. Application errors map to
// their HTTP status with a flat {"error": "..."} body; errors carrying
// no message (unauthorized, forbidden) produce a bare status. Anything
// else becomes a generic 500.
func RespondError(c *gin.Context, err error) {
	if appErr, ok := errors.AsAppError(err); ok {
		if appErr.Message == "" {
			c.AbortWithStatus(appErr.HTTPStatus)
			return
		}
		c.AbortWithStatusJSON(appErr.HTTPStatus, appErr.ToResponse())
		return
	}
	c.AbortWithStatusJSON(http.StatusInternalServerError, errors.Internal(err).ToResponse())
}

// RespondOK writes a 200 with the given payload.
func RespondOK(c *gin.Context, payload interface{}) {
	c.JSON(http.StatusOK, payload)
}

// RespondCreated writes a 201 with the given payload, or a bare 201
// when payload is nil.
func RespondCreated(c *gin.Context, payload interface{}) {
	if payload == nil {
		c.Status(http.StatusCreated)
		return
	}
	c.JSON(http.StatusCreated, payload)
}

// RespondNoContent writes a bare 204.
func RespondNoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
