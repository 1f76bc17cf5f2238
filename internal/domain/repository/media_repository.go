package repository

import (
	"context"

	"medialib/internal/domain/entity"
)

// MediaQuery selects media ordered by creation time, newest first.
// A nil FolderID selects every media record.
type MediaQuery struct {
	FolderID *string
	Limit    int
	Offset   int
}

// MediaUpdate carries the fields rename and move rewrite. Nil fields are
// left untouched; SetFolder must be true for FolderID to be written so a
// move back to the root can store null.
type MediaUpdate struct {
	Name        *string
	URL         *string
	StoragePath *string
	SetFolder   bool
	FolderID    *string
}

type MediaRepository interface {
	// Create stores the media, assigning ID and CreatedAt.
	Create(ctx context.Context, media *entity.Media) error
	GetByID(ctx context.Context, id string) (*entity.Media, error)
	Update(ctx context.Context, id string, update MediaUpdate) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, query MediaQuery) ([]*entity.Media, error)
	Count(ctx context.Context, query MediaQuery) (int64, error)
	ExistsInFolder(ctx context.Context, folderID string) (bool, error)
	Watch(ctx context.Context, query MediaQuery, fn func([]*entity.Media)) (Unsubscribe, error)
}
