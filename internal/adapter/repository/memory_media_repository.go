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

type memoryMediaRecord struct {
	media entity.Media
	seq   int64
}

type memoryMediaRepository struct {
	mu       sync.RWMutex
	records  map[string]*memoryMediaRecord
	seq      int64
	now      func() time.Time
	watchers memoryWatchers[*entity.Media]
}

// NewMemoryMediaRepository keeps media in process memory. It backs local
// development and tests.
func NewMemoryMediaRepository() repository.MediaRepository {
	return &memoryMediaRepository{
		records: make(map[string]*memoryMediaRecord),
		now:     time.Now,
	}
}

func (r *memoryMediaRepository) Create(ctx context.Context, media *entity.Media) error {
	r.mu.Lock()
	if media.ID == "" {
		media.ID = uuid.New().String()
	}
	if _, exists := r.records[media.ID]; exists {
		r.mu.Unlock()
		return errors.Conflict("Media already exists")
	}
	if media.CreatedAt.IsZero() {
		media.CreatedAt = r.now()
	}
	r.seq++
	r.records[media.ID] = &memoryMediaRecord{media: copyMedia(media), seq: r.seq}
	r.mu.Unlock()

	r.watchers.broadcast()
	return nil
}

func (r *memoryMediaRepository) GetByID(ctx context.Context, id string) (*entity.Media, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.records[id]
	if !ok {
		return nil, errors.NotFound("Media", nil)
	}
	media := copyMedia(&record.media)
	return &media, nil
}

func (r *memoryMediaRepository) Update(ctx context.Context, id string, update repository.MediaUpdate) error {
	r.mu.Lock()
	record, ok := r.records[id]
	if !ok {
		r.mu.Unlock()
		return errors.NotFound("Media", nil)
	}

	if update.Name != nil {
		record.media.Name = *update.Name
	}
	if update.URL != nil {
		record.media.URL = *update.URL
	}
	if update.StoragePath != nil {
		record.media.StoragePath = *update.StoragePath
	}
	if update.SetFolder {
		record.media.FolderID = copyString(update.FolderID)
	}
	r.mu.Unlock()

	r.watchers.broadcast()
	return nil
}

func (r *memoryMediaRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	if _, ok := r.records[id]; !ok {
		r.mu.Unlock()
		return errors.NotFound("Media", nil)
	}
	delete(r.records, id)
	r.mu.Unlock()

	r.watchers.broadcast()
	return nil
}

func (r *memoryMediaRepository) List(ctx context.Context, query repository.MediaQuery) ([]*entity.Media, error) {
	items := r.snapshot(query)

	if query.Offset > 0 {
		if query.Offset >= len(items) {
			return []*entity.Media{}, nil
		}
		items = items[query.Offset:]
	}
	if query.Limit > 0 && len(items) > query.Limit {
		items = items[:query.Limit]
	}

	return items, nil
}

func (r *memoryMediaRepository) Count(ctx context.Context, query repository.MediaQuery) (int64, error) {
	return int64(len(r.snapshot(query))), nil
}

func (r *memoryMediaRepository) ExistsInFolder(ctx context.Context, folderID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, record := range r.records {
		if record.media.FolderID != nil && *record.media.FolderID == folderID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryMediaRepository) Watch(ctx context.Context, query repository.MediaQuery, fn func([]*entity.Media)) (repository.Unsubscribe, error) {
	query.Limit, query.Offset = 0, 0
	return r.watchers.add(ctx, func() []*entity.Media {
		return r.snapshot(query)
	}, fn), nil
}

// snapshot returns matching media, newest first. Equal timestamps fall
// back to insertion order.
func (r *memoryMediaRepository) snapshot(query repository.MediaQuery) []*entity.Media {
	r.mu.RLock()
	matched := make([]*memoryMediaRecord, 0, len(r.records))
	for _, record := range r.records {
		if query.FolderID != nil {
			if record.media.FolderID == nil || *record.media.FolderID != *query.FolderID {
				continue
			}
		}
		matched = append(matched, record)
	}

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.media.CreatedAt.Equal(b.media.CreatedAt) {
			return a.media.CreatedAt.After(b.media.CreatedAt)
		}
		return a.seq > b.seq
	})

	items := make([]*entity.Media, len(matched))
	for i, record := range matched {
		media := copyMedia(&record.media)
		items[i] = &media
	}
	r.mu.RUnlock()

	return items
}

func copyMedia(m *entity.Media) entity.Media {
	out := *m
	out.FolderID = copyString(m.FolderID)
	out.UploadedBy = copyString(m.UploadedBy)
	return out
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
