package handler

import (
	"github.com/labstack/echo/v4"

	"medialib/internal/adapter/api/middleware"
	"medialib/internal/usecase"
	"medialib/pkg/response"
)

type FolderHandler struct {
	folderUseCase *usecase.FolderUseCase
}

func NewFolderHandler(folderUseCase *usecase.FolderUseCase) *FolderHandler {
	return &FolderHandler{
		folderUseCase: folderUseCase,
	}
}

type folderNameRequest struct {
	Name string `json:"name" validate:"required,max=200"`
}

func (h *FolderHandler) ListFolders(c echo.Context) error {
	folders, err := h.folderUseCase.ListFolders(c.Request().Context())
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, folders)
}

func (h *FolderHandler) GetFolder(c echo.Context) error {
	folder, err := h.folderUseCase.GetFolder(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, folder)
}

func (h *FolderHandler) CreateFolder(c echo.Context) error {
	var req folderNameRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	id, err := h.folderUseCase.CreateFolder(c.Request().Context(), req.Name, optionalID(middleware.UID(c)))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, map[string]string{"id": id})
}

func (h *FolderHandler) RenameFolder(c echo.Context) error {
	var req folderNameRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	if err := h.folderUseCase.RenameFolder(c.Request().Context(), c.Param("id"), req.Name); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{
		"message": "Folder renamed",
	})
}

func (h *FolderHandler) DeleteFolder(c echo.Context) error {
	if err := h.folderUseCase.DeleteFolder(c.Request().Context(), c.Param("id")); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{
		"message": "Folder deleted",
	})
}
