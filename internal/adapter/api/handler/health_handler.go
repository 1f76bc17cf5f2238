package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"medialib/internal/usecase"
)

type HealthHandler struct {
	authUseCase *usecase.AuthUseCase
}

func NewHealthHandler(authUseCase *usecase.AuthUseCase) *HealthHandler {
	return &HealthHandler{
		authUseCase: authUseCase,
	}
}

func (h *HealthHandler) CheckHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (h *HealthHandler) CheckFirebaseHealth(c echo.Context) error {
	if err := h.authUseCase.CheckConnection(c.Request().Context()); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "Firebase Auth connection failed",
			"error":  err.Error(),
		})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status": "Firebase Auth connected successfully",
	})
}
