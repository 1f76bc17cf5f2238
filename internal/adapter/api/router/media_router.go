package router

import (
	"github.com/labstack/echo/v4"

	"medialib/internal/adapter/api/handler"
	"medialib/internal/adapter/api/middleware"
	"medialib/internal/infrastructure/ratelimit"
)

// uploadAction is shared by every route that writes a storage object.
const uploadAction = "media_write"

func SetupMediaRouter(e *echo.Echo, mediaHandler *handler.MediaHandler, authMiddleware *middleware.AuthMiddleware, limiter *ratelimit.RateLimiter) {
	media := e.Group("/v1/media")
	media.Use(authMiddleware.Authenticate)

	writeLimit := middleware.RateLimit(limiter, uploadAction)

	media.GET("", mediaHandler.ListMedia)
	media.GET("/:id", mediaHandler.GetMedia)
	media.POST("", mediaHandler.UploadMedia, writeLimit)
	media.PATCH("/:id/name", mediaHandler.RenameMedia, writeLimit)
	media.PATCH("/:id/folder", mediaHandler.MoveMedia, writeLimit)
	media.DELETE("/:id", mediaHandler.DeleteMedia)
}
