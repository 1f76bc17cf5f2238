package websocket

import (
	"encoding/json"
	"time"
)

// Server to client message types
const (
	MessageTypeFolders        = "folders"
	MessageTypeMedia          = "media"
	MessageTypeUploadProgress = "upload_progress"
	MessageTypePong           = "pong"
	MessageTypeError          = "error"
)

// Client to server message types
const (
	MessageTypePing        = "ping"
	MessageTypeWatchFolder = "watch_folder"
)

type WSMessage struct {
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp string          `json:"timestamp,omitempty"`
}

type UploadProgressData struct {
	UploadID string `json:"uploadId"`
	Percent  int    `json:"percent"`
}

type WatchFolderData struct {
	FolderID *string `json:"folderId"`
}

type ErrorData struct {
	Message string `json:"message"`
}

// Encode builds an outgoing frame stamped with the current time.
func Encode(messageType string, data interface{}) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return json.Marshal(WSMessage{
		Type:      messageType,
		Data:      raw,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
	})
}
