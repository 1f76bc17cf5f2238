package handler

import (
	"fmt"
	"io"
	"mime/multipart"

	"github.com/gabriel-vasile/mimetype"
	"github.com/labstack/echo/v4"

	"medialib/internal/adapter/api/middleware"
	ws "medialib/internal/infrastructure/websocket"
	"medialib/internal/usecase"
	"medialib/pkg/errors"
	"medialib/pkg/logger"
	"medialib/pkg/response"
	"medialib/pkg/utils"
)

const octetStream = "application/octet-stream"

type MediaHandler struct {
	mediaUseCase  *usecase.MediaUseCase
	wsManager     *ws.Manager
	maxUploadSize int64
}

func NewMediaHandler(mediaUseCase *usecase.MediaUseCase, wsManager *ws.Manager, maxUploadSize int64) *MediaHandler {
	return &MediaHandler{
		mediaUseCase:  mediaUseCase,
		wsManager:     wsManager,
		maxUploadSize: maxUploadSize,
	}
}

type renameMediaRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

type moveMediaRequest struct {
	FolderID *string `json:"folderId"`
}

func (h *MediaHandler) ListMedia(c echo.Context) error {
	pagination := utils.GetPaginationParams(c)

	items, total, err := h.mediaUseCase.ListMedia(
		c.Request().Context(),
		optionalID(c.QueryParam("folderId")),
		pagination.PageSize,
		pagination.Offset,
	)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, items, total, pagination.Page, pagination.PageSize)
}

func (h *MediaHandler) GetMedia(c echo.Context) error {
	media, err := h.mediaUseCase.GetMedia(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, media)
}

func (h *MediaHandler) UploadMedia(c echo.Context) error {
	file, err := c.FormFile("file")
	if err != nil {
		logger.Debug("Upload without a file part: %v", err)
		return response.Error(c, errors.UploadFailed("No file provided", nil))
	}

	if h.maxUploadSize > 0 && file.Size > h.maxUploadSize {
		return response.Error(c, errors.BadRequest(
			fmt.Sprintf("File size exceeds maximum allowed (%dMB)", h.maxUploadSize/(1024*1024)), nil))
	}

	src, err := file.Open()
	if err != nil {
		return response.Error(c, errors.Internal("Unable to read file", err))
	}
	defer src.Close()

	mimeType, err := detectMIME(src, file.Header.Get(echo.HeaderContentType))
	if err != nil {
		return response.Error(c, errors.Internal("Unable to read file", err))
	}

	uid := middleware.UID(c)
	uploadID := c.FormValue("uploadId")
	logger.Debug("Upload %q from %s: %s, %d bytes, %s", uploadID, uid, file.Filename, file.Size, mimeType)

	media, err := h.mediaUseCase.UploadMedia(c.Request().Context(), usecase.UploadMediaInput{
		Body:       src,
		Size:       file.Size,
		FileName:   file.Filename,
		MIMEType:   mimeType,
		FolderID:   optionalID(c.FormValue("folderId")),
		UploadedBy: optionalID(uid),
		OnProgress: h.progressPusher(uid, uploadID),
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, media)
}

func (h *MediaHandler) RenameMedia(c echo.Context) error {
	var req renameMediaRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	if err := h.mediaUseCase.RenameMedia(c.Request().Context(), c.Param("id"), req.Name); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{
		"message": "Media renamed",
	})
}

func (h *MediaHandler) MoveMedia(c echo.Context) error {
	var req moveMediaRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	target := req.FolderID
	if target != nil {
		target = optionalID(*target)
	}

	if err := h.mediaUseCase.MoveMedia(c.Request().Context(), c.Param("id"), target); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{
		"message": "Media moved",
	})
}

func (h *MediaHandler) DeleteMedia(c echo.Context) error {
	if err := h.mediaUseCase.DeleteMedia(c.Request().Context(), c.Param("id")); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{
		"message": "Media deleted",
	})
}

// progressPusher forwards upload progress to every socket of the uploader.
// Without an upload id there is nothing for the client to correlate.
func (h *MediaHandler) progressPusher(uid, uploadID string) func(int) {
	if uploadID == "" || uid == "" || h.wsManager == nil {
		return nil
	}

	return func(percent int) {
		message, err := ws.Encode(ws.MessageTypeUploadProgress, ws.UploadProgressData{
			UploadID: uploadID,
			Percent:  percent,
		})
		if err != nil {
			logger.Error("Failed to encode upload progress: %v", err)
			return
		}
		h.wsManager.SendToUser(uid, message)
	}
}

// detectMIME sniffs the upload and rewinds it. The declared type is used
// only when sniffing finds nothing specific.
func detectMIME(src multipart.File, declared string) (string, error) {
	detected, err := mimetype.DetectReader(src)
	if err != nil {
		return "", err
	}

	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", err
	}

	if detected.Is(octetStream) && declared != "" {
		return declared, nil
	}
	return detected.String(), nil
}
