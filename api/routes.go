package api

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes wires the API routes onto the engine. The guard middleware
// protects everything that requires a verified session: /auth/me and the
// whole /media group. Register and login stay public.
func RegisterRoutes(engine *gin.Engine, authHandler *AuthHandler, mediaHandler *MediaHandler, guard gin.HandlerFunc) {
	authGroup := engine.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.GET("/me", guard, authHandler.Me)
	}

	mediaGroup := engine.Group("/media", guard)
	{
		mediaGroup.POST("", mediaHandler.Upload)
		mediaGroup.GET("", mediaHandler.List)
		mediaGroup.GET("/:id", mediaHandler.Get)
		mediaGroup.POST("/:id/transcribe", mediaHandler.Transcribe)
		mediaGroup.GET("/:id/transcript", mediaHandler.Transcript)
	}
}
