package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/scribely/scribely/errors"
)

// BodySizeLimit caps request body size. Size strings accept plain bytes or
// KB/MB/GB suffixes ("100MB"). Requests with a larger declared Content-Length
// are rejected up front; chunked bodies are capped by MaxBytesReader.
func BodySizeLimit(size string) gin.HandlerFunc {
	limit, err := parseSize(size)
	if err != nil {
		panic(fmt.Sprintf("middleware: invalid body size limit %q: %v", size, err))
	}
	return func(c *gin.Context) {
		if c.Request.ContentLength > limit {
			appErr := apperrors.Validation(fmt.Sprintf("Request body exceeds the %s limit.", size))
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, appErr.ToResponse())
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}

// parseSize converts a human-readable size string to bytes.
func parseSize(size string) (int64, error) {
	s := strings.TrimSpace(strings.ToUpper(size))
	if s == "" {
		return 0, fmt.Errorf("empty size")
	}

	multiplier := int64(1)
	switch {
	case strings.HasSuffix(s, "GB"):
		multiplier = 1 << 30
		s = strings.TrimSuffix(s, "GB")
	case strings.HasSuffix(s, "MB"):
		multiplier = 1 << 20
		s = strings.TrimSuffix(s, "MB")
	case strings.HasSuffix(s, "KB"):
		multiplier = 1 << 10
		s = strings.TrimSuffix(s, "KB")
	case strings.HasSuffix(s, "B"):
		s = strings.TrimSuffix(s, "B")
	}

	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse size %q: %w", size, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("size must be positive (got: %d)", n)
	}
	return n * multiplier, nil
}
