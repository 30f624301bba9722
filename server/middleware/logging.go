package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/scribely/scribely/logger"
)

// RequestLogger logs one line per request with method, path, status, and
// latency. Server errors log at error level, client errors at warn.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	requestLog := log.WithComponent("http")
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		fields := map[string]interface{}{
			logger.FieldMethod:    c.Request.Method,
			logger.FieldPath:      path,
			logger.FieldStatus:    status,
			logger.FieldDuration:  time.Since(start).Milliseconds(),
			logger.FieldRequestID: GetRequestID(c),
		}
		if len(c.Errors) > 0 {
			fields[logger.FieldError] = c.Errors.String()
		}

		switch {
		case status >= 500:
			requestLog.Error("Request completed", fields)
		case status >= 400:
			requestLog.Warn("Request completed", fields)
		default:
			requestLog.Info("Request completed", fields)
		}
	}
}
