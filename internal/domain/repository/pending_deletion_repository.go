package repository

import (
	"context"

	"medialib/internal/domain/entity"
)

type PendingDeletionRepository interface {
	Create(ctx context.Context, pending *entity.PendingDeletion) error
	// ListDue returns up to limit entries, oldest first.
	ListDue(ctx context.Context, limit int) ([]*entity.PendingDeletion, error)
	Update(ctx context.Context, pending *entity.PendingDeletion) error
	Delete(ctx context.Context, id string) error
}
