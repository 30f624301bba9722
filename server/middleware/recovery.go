package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	apperrors "github.com/scribely/scribely/errors"
	"github.com/scribely/scribely/logger"
)

// Recovery converts panics into a 500 response instead of tearing down the
// connection. The stack trace goes to the log, never to the client.
func Recovery(log *logger.Logger) gin.HandlerFunc {
	recoveryLog := log.WithComponent("recovery")
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				recoveryLog.Error("Panic recovered", map[string]interface{}{
					"panic":              r,
					"stack":              string(debug.Stack()),
					"path":               c.Request.URL.Path,
					"method":             c.Request.Method,
					logger.FieldRequestID: GetRequestID(c),
				})
				appErr := apperrors.Internal(nil)
				c.AbortWithStatusJSON(http.StatusInternalServerError, appErr.ToResponse())
			}
		}()
		c.Next()
	}
}
