package handler

import (
	"context"
	"encoding/json"
	"net/http"

	gorillaws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"medialib/internal/adapter/api/middleware"
	"medialib/internal/domain/entity"
	ws "medialib/internal/infrastructure/websocket"
	"medialib/internal/usecase"
	"medialib/pkg/errors"
	"medialib/pkg/logger"
	"medialib/pkg/response"
)

const (
	subscriptionFolders = "folders"
	subscriptionMedia   = "media"
)

type WebSocketHandler struct {
	wsManager     *ws.Manager
	folderUseCase *usecase.FolderUseCase
	mediaUseCase  *usecase.MediaUseCase
	upgrader      gorillaws.Upgrader
}

func NewWebSocketHandler(wsManager *ws.Manager, folderUseCase *usecase.FolderUseCase, mediaUseCase *usecase.MediaUseCase) *WebSocketHandler {
	return &WebSocketHandler{
		wsManager:     wsManager,
		folderUseCase: folderUseCase,
		mediaUseCase:  mediaUseCase,
		upgrader: gorillaws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// HandleWebSocket upgrades the request and streams the folder list and the
// media list of ?folderId= (all media when absent) until the socket closes.
func (h *WebSocketHandler) HandleWebSocket(c echo.Context) error {
	userID := middleware.UID(c)
	if userID == "" {
		return response.Error(c, errors.Unauthorized("Authentication required", nil))
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		logger.Error("Failed to upgrade connection: %v", err)
		return nil
	}

	client := ws.NewClient(userID, conn)
	h.wsManager.Register(client)

	// subscriptions outlive the upgrade request, the client owns them
	ctx := context.WithoutCancel(c.Request().Context())

	h.watchFolders(ctx, client)
	h.watchMedia(ctx, client, optionalID(c.QueryParam("folderId")))

	go client.WritePump()
	go client.ReadPump(h.wsManager, func(client *ws.Client, message ws.WSMessage) {
		h.handleMessage(ctx, client, message)
	})

	return nil
}

func (h *WebSocketHandler) handleMessage(ctx context.Context, client *ws.Client, message ws.WSMessage) {
	switch message.Type {
	case ws.MessageTypePing:
		h.send(client, ws.MessageTypePong, map[string]string{})

	case ws.MessageTypeWatchFolder:
		var data ws.WatchFolderData
		if len(message.Data) > 0 {
			if err := json.Unmarshal(message.Data, &data); err != nil {
				h.send(client, ws.MessageTypeError, ws.ErrorData{Message: "invalid watch_folder payload"})
				return
			}
		}
		if data.FolderID != nil {
			data.FolderID = optionalID(*data.FolderID)
		}
		h.watchMedia(ctx, client, data.FolderID)

	default:
		h.send(client, ws.MessageTypeError, ws.ErrorData{Message: "unknown message type " + message.Type})
	}
}

func (h *WebSocketHandler) watchFolders(ctx context.Context, client *ws.Client) {
	unsubscribe, err := h.folderUseCase.SubscribeFolders(ctx, func(folders []*entity.Folder) {
		h.send(client, ws.MessageTypeFolders, folders)
	})
	if err != nil {
		logger.Error("Failed to subscribe %s to folders: %v", client.ID, err)
		h.send(client, ws.MessageTypeError, ws.ErrorData{Message: "folder subscription failed"})
		return
	}
	client.Subscribe(subscriptionFolders, unsubscribe)
}

// watchMedia replaces the client's media subscription.
func (h *WebSocketHandler) watchMedia(ctx context.Context, client *ws.Client, folderID *string) {
	unsubscribe, err := h.mediaUseCase.SubscribeMedia(ctx, folderID, func(items []*entity.Media) {
		h.send(client, ws.MessageTypeMedia, items)
	})
	if err != nil {
		logger.Error("Failed to subscribe %s to media: %v", client.ID, err)
		h.send(client, ws.MessageTypeError, ws.ErrorData{Message: "media subscription failed"})
		return
	}
	client.Subscribe(subscriptionMedia, unsubscribe)
}

func (h *WebSocketHandler) send(client *ws.Client, messageType string, data interface{}) {
	message, err := ws.Encode(messageType, data)
	if err != nil {
		logger.Error("Failed to encode %s message: %v", messageType, err)
		return
	}
	h.wsManager.SendToClient(client, message)
}
