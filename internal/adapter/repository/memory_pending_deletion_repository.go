package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"medialib/internal/domain/entity"
	"medialib/internal/domain/repository"
	"medialib/pkg/errors"
)

type memoryPendingDeletionRepository struct {
	mu      sync.Mutex
	records map[string]entity.PendingDeletion
}

func NewMemoryPendingDeletionRepository() repository.PendingDeletionRepository {
	return &memoryPendingDeletionRepository{
		records: make(map[string]entity.PendingDeletion),
	}
}

func (r *memoryPendingDeletionRepository) Create(ctx context.Context, pending *entity.PendingDeletion) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if pending.ID == "" {
		pending.ID = uuid.New().String()
	}
	r.records[pending.ID] = *pending
	return nil
}

func (r *memoryPendingDeletionRepository) ListDue(ctx context.Context, limit int) ([]*entity.PendingDeletion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	items := make([]*entity.PendingDeletion, 0, len(r.records))
	for _, record := range r.records {
		p := record
		items = append(items, &p)
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].UpdatedAt.Before(items[j].UpdatedAt)
	})

	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (r *memoryPendingDeletionRepository) Update(ctx context.Context, pending *entity.PendingDeletion) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[pending.ID]; !ok {
		return errors.NotFound("Pending deletion", nil)
	}
	r.records[pending.ID] = *pending
	return nil
}

func (r *memoryPendingDeletionRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.records, id)
	return nil
}
