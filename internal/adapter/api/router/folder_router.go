package router

import (
	"github.com/labstack/echo/v4"

	"medialib/internal/adapter/api/handler"
	"medialib/internal/adapter/api/middleware"
)

func SetupFolderRouter(e *echo.Echo, folderHandler *handler.FolderHandler, authMiddleware *middleware.AuthMiddleware) {
	folders := e.Group("/v1/folders")
	folders.Use(authMiddleware.Authenticate)

	folders.GET("", folderHandler.ListFolders)
	folders.POST("", folderHandler.CreateFolder)
	folders.GET("/:id", folderHandler.GetFolder)
	folders.PATCH("/:id", folderHandler.RenameFolder)
	folders.DELETE("/:id", folderHandler.DeleteFolder)
}
