package api

import (
	"github.com/gin-gonic/gin"

	"github.com/scribely/scribely/auth/authctx"
	apperrors "github.com/scribely/scribely/errors"
	"github.com/scribely/scribely/media"
	"github.com/scribely/scribely/server"
)

// MediaHandler serves the media upload, listing, and transcription endpoints.
type MediaHandler struct {
	media *media.Service
}

// NewMediaHandler creates the media handler.
func NewMediaHandler(svc *media.Service) *MediaHandler {
	return &MediaHandler{media: svc}
}

// Upload handles POST /media. The file arrives as the "file" multipart field.
func (h *MediaHandler) Upload(c *gin.Context) {
	claims, err := authctx.GetOrError(c.Request.Context())
	if err != nil {
		server.RespondWithError(c, apperrors.Unauthorized(""))
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		server.RespondWithError(c, apperrors.MissingField("file").WithCause(err))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		server.RespondWithError(c, apperrors.InvalidInput("file", "could not read uploaded file").WithCause(err))
		return
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	m, err := h.media.Upload(c.Request.Context(), claims.Subject, fileHeader.Filename, contentType, fileHeader.Size, file)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}

	server.RespondCreated(c, m)
}

// List handles GET /media.
func (h *MediaHandler) List(c *gin.Context) {
	claims, err := authctx.GetOrError(c.Request.Context())
	if err != nil {
		server.RespondWithError(c, apperrors.Unauthorized(""))
		return
	}

	items, err := h.media.List(c.Request.Context(), claims.Subject)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}

	server.RespondOKWithMeta(c, items, map[string]any{"count": len(items)})
}

// Get handles GET /media/:id.
func (h *MediaHandler) Get(c *gin.Context) {
	claims, err := authctx.GetOrError(c.Request.Context())
	if err != nil {
		server.RespondWithError(c, apperrors.Unauthorized(""))
		return
	}

	m, err := h.media.Get(c.Request.Context(), c.Param("id"), claims.Subject)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}

	server.RespondOK(c, m)
}

// Transcribe handles POST /media/:id/transcribe. The run is synchronous: the
// response carries the finished transcript.
func (h *MediaHandler) Transcribe(c *gin.Context) {
	claims, err := authctx.GetOrError(c.Request.Context())
	if err != nil {
		server.RespondWithError(c, apperrors.Unauthorized(""))
		return
	}

	transcript, err := h.media.Transcribe(c.Request.Context(), c.Param("id"), claims.Subject)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}

	server.RespondCreated(c, transcript)
}

// Transcript handles GET /media/:id/transcript.
func (h *MediaHandler) Transcript(c *gin.Context) {
	claims, err := authctx.GetOrError(c.Request.Context())
	if err != nil {
		server.RespondWithError(c, apperrors.Unauthorized(""))
		return
	}

	transcript, err := h.media.Transcript(c.Request.Context(), c.Param("id"), claims.Subject)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}

	server.RespondOK(c, transcript)
}
