// Package api exposes the HTTP handlers and route registration.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/scribely/scribely/auth"
	"github.com/scribely/scribely/auth/authctx"
	apperrors "github.com/scribely/scribely/errors"
	"github.com/scribely/scribely/server"
)

// AuthHandler serves the register/login/current-user endpoints.
type AuthHandler struct {
	auth *auth.Service
}

// NewAuthHandler creates the auth handler.
func NewAuthHandler(svc *auth.Service) *AuthHandler {
	return &AuthHandler{auth: svc}
}

// credentialsRequest is the request body for register and login.
type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// registerResponse is the register success body.
type registerResponse struct {
	Message string              `json:"message"`
	User    *auth.PublicAccount `json:"user"`
}

// loginResponse is the login success body.
type loginResponse struct {
	AccessToken string    `json:"access_token"`
	User        loginUser `json:"user"`
}

type loginUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.RespondWithError(c, apperrors.InvalidInput("", "request body must be valid JSON").WithCause(err))
		return
	}

	account, err := h.auth.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, registerResponse{
		Message: "Account created successfully.",
		User:    account,
	})
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.RespondWithError(c, apperrors.InvalidInput("", "request body must be valid JSON").WithCause(err))
		return
	}

	token, account, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, loginResponse{
		AccessToken: token,
		User:        loginUser{ID: account.ID, Email: account.Email},
	})
}

// Me handles GET /auth/me. The route guard has already verified the token and
// attached the claims.
func (h *AuthHandler) Me(c *gin.Context) {
	claims, err := authctx.GetOrError(c.Request.Context())
	if err != nil {
		server.RespondWithError(c, apperrors.Unauthorized(""))
		return
	}

	account, err := h.auth.CurrentUser(c.Request.Context(), claims.Subject)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, account)
}
