package router

import (
	"github.com/labstack/echo/v4"

	"medialib/internal/adapter/api/handler"
	"medialib/internal/adapter/api/middleware"
)

// SetupWebSocketRouter sets up WebSocket routes
func SetupWebSocketRouter(e *echo.Echo, wsHandler *handler.WebSocketHandler, authMiddleware *middleware.AuthMiddleware) {
	// browsers cannot set headers on a WebSocket, so ?token= is accepted
	e.GET("/v1/ws", wsHandler.HandleWebSocket, authMiddleware.AuthenticateQuery)
}
