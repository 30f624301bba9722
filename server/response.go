package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/scribely/scribely/errors"
)

// DataResponse is the standard success envelope for resource endpoints.
type DataResponse struct {
	Data any            `json:"data"`
	Meta map[string]any `json:"meta,omitempty"`
}

// RespondOK writes a 200 with the data envelope.
func RespondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, DataResponse{Data: data})
}

// RespondOKWithMeta writes a 200 with the data envelope and metadata.
func RespondOKWithMeta(c *gin.Context, data any, meta map[string]any) {
	c.JSON(http.StatusOK, DataResponse{Data: data, Meta: meta})
}

// RespondCreated writes a 201 with the data envelope.
func RespondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, DataResponse{Data: data})
}

// RespondNoContent writes a 204.
func RespondNoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// RespondWithError writes the error envelope for any error. AppErrors keep
// their code and status; everything else becomes a generic 500.
func RespondWithError(c *gin.Context, err error) {
	_ = c.Error(err)

	if appErr, ok := apperrors.AsAppError(err); ok {
		c.JSON(appErr.HTTPStatus, appErr.ToResponse())
		return
	}

	appErr := apperrors.Internal(err)
	c.JSON(appErr.HTTPStatus, appErr.ToResponse())
}
