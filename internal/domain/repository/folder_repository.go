package repository

import (
	"context"

	"medialib/internal/domain/entity"
)

type FolderRepository interface {
	// Create stores the folder, assigning ID and CreatedAt.
	Create(ctx context.Context, folder *entity.Folder) error
	GetByID(ctx context.Context, id string) (*entity.Folder, error)
	Rename(ctx context.Context, id, name string) error
	Delete(ctx context.Context, id string) error
	// List returns every folder ordered by creation time ascending.
	List(ctx context.Context) ([]*entity.Folder, error)
	// Watch calls fn with the full ordered folder list on every change
	// until the returned Unsubscribe is called or ctx ends.
	Watch(ctx context.Context, fn func([]*entity.Folder)) (Unsubscribe, error)
}
