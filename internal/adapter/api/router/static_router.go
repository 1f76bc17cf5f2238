package router

import (
	"github.com/labstack/echo/v4"

	"medialib/internal/infrastructure/storage"
)

// SetupFilesRouter serves objects written by the local storage backend.
func SetupFilesRouter(e *echo.Echo, store *storage.LocalStore) {
	e.Static(storage.FilesRoute, store.BasePath())
}
