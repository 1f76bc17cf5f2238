package usecase

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"medialib/internal/adapter/repository"
	domainrepo "medialib/internal/domain/repository"
	"medialib/internal/domain/service"
	"medialib/internal/infrastructure/httpfetch"
	"medialib/internal/infrastructure/storage"
)

// faultyStore wraps a real store and fails the operations it is told to.
type faultyStore struct {
	service.ObjectStore

	mu         sync.Mutex
	putErr     error
	resolveErr error
	deleteErr  error
	puts       []string
	deletes    []string
}

func (s *faultyStore) Put(ctx context.Context, path string, r io.Reader, size int64, opts service.PutOptions) error {
	s.mu.Lock()
	s.puts = append(s.puts, path)
	err := s.putErr
	s.mu.Unlock()
	if err != nil {
		return err
	}
	return s.ObjectStore.Put(ctx, path, r, size, opts)
}

func (s *faultyStore) ResolveURL(ctx context.Context, path string) (string, error) {
	s.mu.Lock()
	err := s.resolveErr
	s.mu.Unlock()
	if err != nil {
		return "", err
	}
	return s.ObjectStore.ResolveURL(ctx, path)
}

func (s *faultyStore) Delete(ctx context.Context, path string) error {
	s.mu.Lock()
	s.deletes = append(s.deletes, path)
	err := s.deleteErr
	s.mu.Unlock()
	if err != nil {
		return err
	}
	return s.ObjectStore.Delete(ctx, path)
}

type fixture struct {
	dir        string
	store      *faultyStore
	mediaRepo  domainrepo.MediaRepository
	folderRepo domainrepo.FolderRepository
	pending    domainrepo.PendingDeletionRepository
	cleanup    *CleanupUseCase
	media      *MediaUseCase
	folders    *FolderUseCase
	clock      *fakeClock
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

// Now advances by a millisecond per call so every path is distinct.
func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Millisecond)
	return c.now
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dir := t.TempDir()
	server := httptest.NewServer(http.StripPrefix(storage.FilesRoute, http.FileServer(http.Dir(dir))))
	t.Cleanup(server.Close)

	local, err := storage.NewLocalStore(dir, server.URL)
	require.NoError(t, err)

	store := &faultyStore{ObjectStore: local}
	mediaRepo := repository.NewMemoryMediaRepository()
	folderRepo := repository.NewMemoryFolderRepository()
	pending := repository.NewMemoryPendingDeletionRepository()

	cleanup := NewCleanupUseCase(store, pending, 3)
	relocator := NewBlobRelocator(store, httpfetch.NewFetcher(5*time.Second))
	clock := &fakeClock{now: time.UnixMilli(1_700_000_000_000)}

	media := NewMediaUseCase(mediaRepo, folderRepo, store, relocator, cleanup)
	media.now = clock.Now

	return &fixture{
		dir:        dir,
		store:      store,
		mediaRepo:  mediaRepo,
		folderRepo: folderRepo,
		pending:    pending,
		cleanup:    cleanup,
		media:      media,
		folders:    NewFolderUseCase(folderRepo, mediaRepo),
		clock:      clock,
	}
}

func (f *fixture) objectExists(path string) bool {
	_, err := os.Stat(filepath.Join(f.dir, filepath.FromSlash(path)))
	return err == nil
}

func (f *fixture) objectCount(t *testing.T) int {
	t.Helper()
	count := 0
	err := filepath.Walk(f.dir, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			count++
		}
		return nil
	})
	require.NoError(t, err)
	return count
}

func (f *fixture) pendingCount(t *testing.T) int {
	t.Helper()
	items, err := f.pending.ListDue(context.Background(), 0)
	require.NoError(t, err)
	return len(items)
}

func strPtr(s string) *string {
	return &s
}
