package router

import (
	"github.com/labstack/echo/v4"

	"medialib/internal/adapter/api/handler"
	"medialib/internal/adapter/api/middleware"
	"medialib/internal/infrastructure/ratelimit"
)

func Setup(e *echo.Echo, handlers *handler.Handlers, authMiddleware *middleware.AuthMiddleware, limiter *ratelimit.RateLimiter) {
	SetupAuthRouter(e, handlers.Auth, authMiddleware)
	SetupFolderRouter(e, handlers.Folder, authMiddleware)
	SetupMediaRouter(e, handlers.Media, authMiddleware, limiter)
	SetupWebSocketRouter(e, handlers.WebSocket, authMiddleware)
	SetupHealthRouter(e, handlers.Health)
}
