package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/scribely/scribely/auth/authctx"
	"github.com/scribely/scribely/auth/jwt"
	apperrors "github.com/scribely/scribely/errors"
	"github.com/scribely/scribely/logger"
)

// Auth is the bearer-token route guard. It extracts the Authorization header,
// verifies the token, and attaches the verified claims to the request context.
//
// Every failure — missing header, wrong scheme, malformed token, bad
// signature, expired token — produces the same 401 body. The failure kind is
// logged but never disclosed to the caller.
func Auth(tokens *jwt.Service, log *logger.Logger) gin.HandlerFunc {
	guardLog := log.WithComponent("auth_guard")
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			guardLog.Warn("Rejected request without bearer token", map[string]interface{}{
				logger.FieldPath:      c.Request.URL.Path,
				logger.FieldRequestID: GetRequestID(c),
			})
			abortUnauthorized(c)
			return
		}

		claims, err := tokens.Parse(token)
		if err != nil {
			guardLog.Warn("Rejected invalid bearer token", map[string]interface{}{
				"reason":              classifyTokenError(err),
				logger.FieldPath:      c.Request.URL.Path,
				logger.FieldRequestID: GetRequestID(c),
			})
			abortUnauthorized(c)
			return
		}

		ctx := authctx.Set(c.Request.Context(), claims)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// header value.
func bearerToken(header string) (string, bool) {
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}
	return token, true
}

// abortUnauthorized writes the uniform 401 response.
func abortUnauthorized(c *gin.Context) {
	appErr := apperrors.Unauthorized("")
	c.AbortWithStatusJSON(http.StatusUnauthorized, appErr.ToResponse())
}

// classifyTokenError maps verification failures to log labels.
func classifyTokenError(err error) string {
	switch {
	case errors.Is(err, jwt.ErrMalformedToken):
		return "malformed"
	case errors.Is(err, jwt.ErrExpiredToken):
		return "expired"
	default:
		return "invalid"
	}
}
