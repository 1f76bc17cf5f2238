package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"medialib/internal/domain/entity"
	"medialib/internal/domain/repository"
	"medialib/pkg/errors"
)

type memoryFolderRecord struct {
	folder entity.Folder
	seq    int64
}

type memoryFolderRepository struct {
	mu       sync.RWMutex
	records  map[string]*memoryFolderRecord
	seq      int64
	now      func() time.Time
	watchers memoryWatchers[*entity.Folder]
}

func NewMemoryFolderRepository() repository.FolderRepository {
	return &memoryFolderRepository{
		records: make(map[string]*memoryFolderRecord),
		now:     time.Now,
	}
}

func (r *memoryFolderRepository) Create(ctx context.Context, folder *entity.Folder) error {
	r.mu.Lock()
	if folder.ID == "" {
		folder.ID = uuid.New().String()
	}
	if _, exists := r.records[folder.ID]; exists {
		r.mu.Unlock()
		return errors.Conflict("Folder already exists")
	}
	if folder.CreatedAt.IsZero() {
		folder.CreatedAt = r.now()
	}
	r.seq++
	r.records[folder.ID] = &memoryFolderRecord{folder: copyFolder(folder), seq: r.seq}
	r.mu.Unlock()

	r.watchers.broadcast()
	return nil
}

func (r *memoryFolderRepository) GetByID(ctx context.Context, id string) (*entity.Folder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.records[id]
	if !ok {
		return nil, errors.NotFound("Folder", nil)
	}
	folder := copyFolder(&record.folder)
	return &folder, nil
}

func (r *memoryFolderRepository) Rename(ctx context.Context, id, name string) error {
	r.mu.Lock()
	record, ok := r.records[id]
	if !ok {
		r.mu.Unlock()
		return errors.NotFound("Folder", nil)
	}
	record.folder.Name = name
	r.mu.Unlock()

	r.watchers.broadcast()
	return nil
}

func (r *memoryFolderRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	if _, ok := r.records[id]; !ok {
		r.mu.Unlock()
		return errors.NotFound("Folder", nil)
	}
	delete(r.records, id)
	r.mu.Unlock()

	r.watchers.broadcast()
	return nil
}

func (r *memoryFolderRepository) List(ctx context.Context) ([]*entity.Folder, error) {
	return r.snapshot(), nil
}

func (r *memoryFolderRepository) Watch(ctx context.Context, fn func([]*entity.Folder)) (repository.Unsubscribe, error) {
	return r.watchers.add(ctx, r.snapshot, fn), nil
}

// snapshot returns every folder, oldest first.
func (r *memoryFolderRepository) snapshot() []*entity.Folder {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]*memoryFolderRecord, 0, len(r.records))
	for _, record := range r.records {
		matched = append(matched, record)
	}

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.folder.CreatedAt.Equal(b.folder.CreatedAt) {
			return a.folder.CreatedAt.Before(b.folder.CreatedAt)
		}
		return a.seq < b.seq
	})

	items := make([]*entity.Folder, len(matched))
	for i, record := range matched {
		folder := copyFolder(&record.folder)
		items[i] = &folder
	}
	return items
}

func copyFolder(f *entity.Folder) entity.Folder {
	out := *f
	out.CreatedBy = copyString(f.CreatedBy)
	return out
}
