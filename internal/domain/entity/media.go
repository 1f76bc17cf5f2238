package entity

import (
	"strings"
	"time"
)

type MediaType string

const (
	MediaTypeImage MediaType = "image"
	MediaTypeVideo MediaType = "video"
)

// MediaTypeFromMIME classifies an upload. Anything that is not video is
// shown as an image.
func MediaTypeFromMIME(mimeType string) MediaType {
	if strings.HasPrefix(mimeType, "video") {
		return MediaTypeVideo
	}
	return MediaTypeImage
}

type Media struct {
	ID          string    `json:"id" firestore:"-"`
	Name        string    `json:"name" firestore:"name"`
	URL         string    `json:"url" firestore:"url"`
	StoragePath string    `json:"storage_path" firestore:"storagePath"`
	FolderID    *string   `json:"folder_id" firestore:"folderId"`
	Type        MediaType `json:"type" firestore:"type"`
	UploadedBy  *string   `json:"uploaded_by" firestore:"uploadedBy"`
	CreatedAt   time.Time `json:"created_at" firestore:"createdAt,serverTimestamp"`
}
