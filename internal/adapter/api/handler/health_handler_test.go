package handler_test

import (
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"medialib/internal/adapter/api/handler"
	"medialib/internal/usecase"
)

func TestHealthCheck(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := handler.NewHealthHandler(usecase.NewAuthUseCase(&fakeAuthClient{}))

	if assert.NoError(t, h.CheckHealth(c)) {
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "ok")
	}
}

func TestFirebaseHealth(t *testing.T) {
	client := &fakeAuthClient{}
	h := handler.NewHealthHandler(usecase.NewAuthUseCase(client))

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/firebase-health", nil), rec)
	if assert.NoError(t, h.CheckFirebaseHealth(c)) {
		assert.Equal(t, http.StatusOK, rec.Code)
	}

	client.connErr = stderrors.New("deadline exceeded")
	rec = httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/firebase-health", nil), rec)
	if assert.NoError(t, h.CheckFirebaseHealth(c)) {
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), "deadline exceeded")
	}
}
