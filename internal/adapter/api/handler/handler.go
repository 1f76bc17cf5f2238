package handler

import (
	"strings"

	ws "medialib/internal/infrastructure/websocket"
	"medialib/internal/usecase"
)

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Auth      *AuthHandler
	Folder    *FolderHandler
	Media     *MediaHandler
	WebSocket *WebSocketHandler
	Health    *HealthHandler
}

type Dependencies struct {
	AuthUseCase   *usecase.AuthUseCase
	FolderUseCase *usecase.FolderUseCase
	MediaUseCase  *usecase.MediaUseCase
	WSManager     *ws.Manager
	MaxUploadSize int64
}

func New(deps Dependencies) *Handlers {
	return &Handlers{
		Auth:      NewAuthHandler(deps.AuthUseCase),
		Folder:    NewFolderHandler(deps.FolderUseCase),
		Media:     NewMediaHandler(deps.MediaUseCase, deps.WSManager, deps.MaxUploadSize),
		WebSocket: NewWebSocketHandler(deps.WSManager, deps.FolderUseCase, deps.MediaUseCase),
		Health:    NewHealthHandler(deps.AuthUseCase),
	}
}

// optionalID maps a blank value to nil.
func optionalID(raw string) *string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	return &raw
}
