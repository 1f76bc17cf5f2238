package usecase

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medialib/internal/domain/entity"
	domainrepo "medialib/internal/domain/repository"
	"medialib/internal/infrastructure/httpfetch"
	"medialib/pkg/errors"
)

func (f *fixture) upload(t *testing.T, name, mimeType string, folderID *string) *entity.Media {
	t.Helper()
	body := "bytes of " + name
	media, err := f.media.UploadMedia(context.Background(), UploadMediaInput{
		Body:     strings.NewReader(body),
		Size:     int64(len(body)),
		FileName: name,
		MIMEType: mimeType,
		FolderID: folderID,
	})
	require.NoError(t, err)
	return media
}

func TestUploadMediaDerivesType(t *testing.T) {
	tests := []struct {
		mimeType string
		want     entity.MediaType
	}{
		{"video/mp4", entity.MediaTypeVideo},
		{"video/webm", entity.MediaTypeVideo},
		{"image/png", entity.MediaTypeImage},
		{"application/pdf", entity.MediaTypeImage},
		{"", entity.MediaTypeImage},
	}

	f := newFixture(t)
	for _, tt := range tests {
		t.Run(tt.mimeType, func(t *testing.T) {
			media := f.upload(t, "clip file", tt.mimeType, nil)
			assert.Equal(t, tt.want, media.Type)

			stored, err := f.media.GetMedia(context.Background(), media.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, stored.Type)
		})
	}
}

func TestUploadMediaStoresObjectAndRecord(t *testing.T) {
	f := newFixture(t)
	uploader := "user-1"

	var (
		mu      sync.Mutex
		percent []int
	)
	body := strings.Repeat("x", 10_000)

	media, err := f.media.UploadMedia(context.Background(), UploadMediaInput{
		Body:       strings.NewReader(body),
		Size:       int64(len(body)),
		FileName:   "my photo.png",
		MIMEType:   "image/png",
		UploadedBy: &uploader,
		OnProgress: func(p int) {
			mu.Lock()
			percent = append(percent, p)
			mu.Unlock()
		},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, media.ID)
	assert.Equal(t, "my photo.png", media.Name)
	assert.Nil(t, media.FolderID)
	assert.Equal(t, "user-1", *media.UploadedBy)
	assert.Regexp(t, `^media/root/\d+_my_photo\.png$`, media.StoragePath)
	assert.True(t, f.objectExists(media.StoragePath))
	assert.False(t, media.CreatedAt.IsZero())

	blob, err := httpfetch.NewFetcher(time.Second).Fetch(context.Background(), media.URL)
	require.NoError(t, err)
	blob.Body.Close()
	assert.Equal(t, int64(len(body)), blob.Size)

	require.NotEmpty(t, percent)
	assert.Equal(t, 100, percent[len(percent)-1])
	assert.IsNonDecreasing(t, percent)
}

func TestUploadMediaRejectsMissingPayload(t *testing.T) {
	f := newFixture(t)

	_, err := f.media.UploadMedia(context.Background(), UploadMediaInput{FileName: "a.png"})
	assert.True(t, errors.Is(err, errors.CodeUploadFailed))

	_, err = f.media.UploadMedia(context.Background(), UploadMediaInput{Body: strings.NewReader("x"), FileName: " "})
	assert.True(t, errors.Is(err, errors.CodeUploadFailed))

	assert.Empty(t, f.store.puts)
}

func TestUploadMediaIntoMissingFolder(t *testing.T) {
	f := newFixture(t)

	_, err := f.media.UploadMedia(context.Background(), UploadMediaInput{
		Body:     strings.NewReader("x"),
		Size:     1,
		FileName: "a.png",
		FolderID: strPtr("nope"),
	})
	assert.True(t, errors.Is(err, errors.CodeNotFound))
	assert.Empty(t, f.store.puts)
}

func TestUploadMediaStoreFailureStopsProgress(t *testing.T) {
	f := newFixture(t)
	f.store.putErr = stderrors.New("quota exceeded")

	var percent []int
	_, err := f.media.UploadMedia(context.Background(), UploadMediaInput{
		Body:       strings.NewReader("x"),
		Size:       1,
		FileName:   "a.png",
		OnProgress: func(p int) { percent = append(percent, p) },
	})
	assert.True(t, errors.Is(err, errors.CodeUploadFailed))
	assert.NotContains(t, percent, 100)

	items, total, err := f.media.ListMedia(context.Background(), nil, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Zero(t, total)
}

func TestUploadMediaURLFailureDiscardsObject(t *testing.T) {
	f := newFixture(t)
	f.store.resolveErr = stderrors.New("not visible yet")

	var percent []int
	_, err := f.media.UploadMedia(context.Background(), UploadMediaInput{
		Body:       strings.NewReader("abc"),
		Size:       3,
		FileName:   "a.png",
		MIMEType:   "image/png",
		OnProgress: func(p int) { percent = append(percent, p) },
	})
	assert.True(t, errors.Is(err, errors.CodeURLResolution))
	assert.NotContains(t, percent, 100)

	require.Len(t, f.store.puts, 1)
	assert.Equal(t, f.store.puts, f.store.deletes)
	assert.Zero(t, f.objectCount(t))
	assert.Zero(t, f.pendingCount(t))
}

func TestRenameMedia(t *testing.T) {
	f := newFixture(t)
	folderID, err := f.folders.CreateFolder(context.Background(), "Trip", nil)
	require.NoError(t, err)

	original := f.upload(t, "a.png", "image/png", &folderID)

	require.NoError(t, f.media.RenameMedia(context.Background(), original.ID, "beach day.png"))

	renamed, err := f.media.GetMedia(context.Background(), original.ID)
	require.NoError(t, err)
	assert.Equal(t, "beach day.png", renamed.Name)
	assert.NotEqual(t, original.StoragePath, renamed.StoragePath)
	assert.NotEqual(t, original.URL, renamed.URL)
	assert.Regexp(t, `^media/`+folderID+`/\d+_beach_day\.png$`, renamed.StoragePath)
	assert.Equal(t, folderID, *renamed.FolderID)
	assert.Equal(t, original.CreatedAt, renamed.CreatedAt)

	assert.True(t, f.objectExists(renamed.StoragePath))
	assert.False(t, f.objectExists(original.StoragePath))

	content, err := os.ReadFile(filepath.Join(f.dir, filepath.FromSlash(renamed.StoragePath)))
	require.NoError(t, err)
	assert.Equal(t, "bytes of a.png", string(content))
}

func TestRenameMediaToSameNameGetsNewPath(t *testing.T) {
	f := newFixture(t)
	original := f.upload(t, "a.png", "image/png", nil)

	// freeze the clock so the natural path would collide
	f.media.now = func() time.Time { return time.UnixMilli(1_700_000_000_001) }
	require.Equal(t, "media/root/1700000000001_a.png", original.StoragePath)

	require.NoError(t, f.media.RenameMedia(context.Background(), original.ID, "a.png"))

	renamed, err := f.media.GetMedia(context.Background(), original.ID)
	require.NoError(t, err)
	assert.Equal(t, "media/root/1700000000002_a.png", renamed.StoragePath)
	assert.True(t, f.objectExists(renamed.StoragePath))
	assert.False(t, f.objectExists(original.StoragePath))
}

func TestRenameMissingMediaChangesNothing(t *testing.T) {
	f := newFixture(t)
	existing := f.upload(t, "a.png", "image/png", nil)
	before := f.objectCount(t)

	err := f.media.RenameMedia(context.Background(), "missing-id", "x")
	assert.True(t, errors.Is(err, errors.CodeNotFound))

	assert.Equal(t, before, f.objectCount(t))
	assert.Len(t, f.store.puts, 1)
	assert.Empty(t, f.store.deletes)

	unchanged, err := f.media.GetMedia(context.Background(), existing.ID)
	require.NoError(t, err)
	assert.Equal(t, existing, unchanged)
}

func TestRenameMediaRequiresName(t *testing.T) {
	f := newFixture(t)
	media := f.upload(t, "a.png", "image/png", nil)

	err := f.media.RenameMedia(context.Background(), media.ID, "  ")
	assert.True(t, errors.Is(err, errors.CodeBadRequest))
}

func TestRenameMediaFailuresLeaveRecordUntouched(t *testing.T) {
	tests := []struct {
		name        string
		arrange     func(f *fixture, media *entity.Media)
		code        string
		wantObjects int
	}{
		{
			name: "source unreadable",
			arrange: func(f *fixture, media *entity.Media) {
				require.NoError(t, os.Remove(filepath.Join(f.dir, filepath.FromSlash(media.StoragePath))))
			},
			code:        errors.CodeFetchFailed,
			wantObjects: 0,
		},
		{
			name: "write rejected",
			arrange: func(f *fixture, media *entity.Media) {
				f.store.putErr = stderrors.New("permission denied")
			},
			code:        errors.CodeUploadFailed,
			wantObjects: 1,
		},
		{
			name: "new url unavailable",
			arrange: func(f *fixture, media *entity.Media) {
				f.store.resolveErr = stderrors.New("not visible yet")
			},
			code:        errors.CodeURLResolution,
			wantObjects: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			media := f.upload(t, "a.png", "image/png", nil)
			tt.arrange(f, media)

			err := f.media.RenameMedia(context.Background(), media.ID, "b.png")
			assert.True(t, errors.Is(err, tt.code), "got %v", err)

			unchanged, err := f.media.GetMedia(context.Background(), media.ID)
			require.NoError(t, err)
			assert.Equal(t, media, unchanged)
			assert.Equal(t, tt.wantObjects, f.objectCount(t))
		})
	}
}

func TestMoveMedia(t *testing.T) {
	f := newFixture(t)
	folderID, err := f.folders.CreateFolder(context.Background(), "Trip", nil)
	require.NoError(t, err)

	original := f.upload(t, "sunset.jpg", "image/jpeg", nil)

	require.NoError(t, f.media.MoveMedia(context.Background(), original.ID, &folderID))

	moved, err := f.media.GetMedia(context.Background(), original.ID)
	require.NoError(t, err)
	require.NotNil(t, moved.FolderID)
	assert.Equal(t, folderID, *moved.FolderID)
	assert.Equal(t, "sunset.jpg", moved.Name)
	assert.Contains(t, moved.StoragePath, "/"+folderID+"/")
	assert.True(t, strings.HasSuffix(moved.StoragePath, "_sunset.jpg"))
	assert.True(t, f.objectExists(moved.StoragePath))
	assert.False(t, f.objectExists(original.StoragePath))

	require.NoError(t, f.media.MoveMedia(context.Background(), original.ID, nil))

	back, err := f.media.GetMedia(context.Background(), original.ID)
	require.NoError(t, err)
	assert.Nil(t, back.FolderID)
	assert.Contains(t, back.StoragePath, "/root/")
	assert.Equal(t, 1, f.objectCount(t))
}

func TestMoveMediaWithoutNameUsesStoredFileName(t *testing.T) {
	f := newFixture(t)
	folderID, err := f.folders.CreateFolder(context.Background(), "Trip", nil)
	require.NoError(t, err)

	media := f.upload(t, "a b.png", "image/png", nil)
	empty := ""
	require.NoError(t, f.mediaRepo.Update(context.Background(), media.ID, domainrepo.MediaUpdate{Name: &empty}))

	require.NoError(t, f.media.MoveMedia(context.Background(), media.ID, &folderID))

	moved, err := f.media.GetMedia(context.Background(), media.ID)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(moved.StoragePath, "_"+lastPathSegment(media.StoragePath)))
}

func TestMoveMediaToMissingFolder(t *testing.T) {
	f := newFixture(t)
	media := f.upload(t, "a.png", "image/png", nil)

	err := f.media.MoveMedia(context.Background(), media.ID, strPtr("nope"))
	assert.True(t, errors.Is(err, errors.CodeNotFound))

	unchanged, err := f.media.GetMedia(context.Background(), media.ID)
	require.NoError(t, err)
	assert.Equal(t, media, unchanged)
}

func TestMoveMediaToCurrentFolderRelocates(t *testing.T) {
	f := newFixture(t)
	media := f.upload(t, "a.png", "image/png", nil)

	require.NoError(t, f.media.MoveMedia(context.Background(), media.ID, strPtr(" ")))

	moved, err := f.media.GetMedia(context.Background(), media.ID)
	require.NoError(t, err)
	assert.Nil(t, moved.FolderID)
	assert.Equal(t, "a.png", moved.Name)
	assert.NotEqual(t, media.StoragePath, moved.StoragePath)
	assert.Regexp(t, `^media/root/\d+_a\.png$`, moved.StoragePath)
	assert.True(t, f.objectExists(moved.StoragePath))
	assert.False(t, f.objectExists(media.StoragePath))
	assert.Len(t, f.store.puts, 2)
}

func TestDeleteMedia(t *testing.T) {
	f := newFixture(t)
	media := f.upload(t, "a.png", "image/png", nil)

	require.NoError(t, f.media.DeleteMedia(context.Background(), media.ID))

	_, err := f.media.GetMedia(context.Background(), media.ID)
	assert.True(t, errors.Is(err, errors.CodeNotFound))
	assert.False(t, f.objectExists(media.StoragePath))

	err = f.media.DeleteMedia(context.Background(), media.ID)
	assert.True(t, errors.Is(err, errors.CodeNotFound))
}

func TestDeleteMediaWhenObjectAlreadyGone(t *testing.T) {
	f := newFixture(t)
	media := f.upload(t, "a.png", "image/png", nil)
	require.NoError(t, os.Remove(filepath.Join(f.dir, filepath.FromSlash(media.StoragePath))))

	require.NoError(t, f.media.DeleteMedia(context.Background(), media.ID))

	_, err := f.media.GetMedia(context.Background(), media.ID)
	assert.True(t, errors.Is(err, errors.CodeNotFound))
	assert.Zero(t, f.pendingCount(t))
}

func TestDeleteMediaQueuesObjectWhenStoreFails(t *testing.T) {
	f := newFixture(t)
	media := f.upload(t, "a.png", "image/png", nil)
	f.store.deleteErr = stderrors.New("storage unavailable")

	require.NoError(t, f.media.DeleteMedia(context.Background(), media.ID))

	_, err := f.media.GetMedia(context.Background(), media.ID)
	assert.True(t, errors.Is(err, errors.CodeNotFound))
	assert.True(t, f.objectExists(media.StoragePath))
	assert.Equal(t, 1, f.pendingCount(t))

	f.store.deleteErr = nil
	resolved, err := f.cleanup.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, resolved)
	assert.False(t, f.objectExists(media.StoragePath))
	assert.Zero(t, f.pendingCount(t))
}

func TestListMediaNewestFirst(t *testing.T) {
	f := newFixture(t)
	folderID, err := f.folders.CreateFolder(context.Background(), "Trip", nil)
	require.NoError(t, err)

	first := f.upload(t, "1.png", "image/png", &folderID)
	second := f.upload(t, "2.png", "image/png", &folderID)
	third := f.upload(t, "3.png", "image/png", &folderID)
	f.upload(t, "elsewhere.png", "image/png", nil)

	page, total, err := f.media.ListMedia(context.Background(), &folderID, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, page, 2)
	assert.Equal(t, third.ID, page[0].ID)
	assert.Equal(t, second.ID, page[1].ID)

	page, _, err = f.media.ListMedia(context.Background(), &folderID, 2, 2)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, first.ID, page[0].ID)

	all, total, err := f.media.ListMedia(context.Background(), nil, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	assert.Len(t, all, 4)
}

func TestSubscribeMedia(t *testing.T) {
	f := newFixture(t)
	folderID, err := f.folders.CreateFolder(context.Background(), "Trip", nil)
	require.NoError(t, err)

	var (
		mu        sync.Mutex
		snapshots [][]*entity.Media
	)
	unsubscribe, err := f.media.SubscribeMedia(context.Background(), &folderID, func(items []*entity.Media) {
		mu.Lock()
		snapshots = append(snapshots, items)
		mu.Unlock()
	})
	require.NoError(t, err)

	first := f.upload(t, "1.png", "image/png", &folderID)
	f.upload(t, "outside.png", "image/png", nil)
	second := f.upload(t, "2.png", "image/png", &folderID)

	mu.Lock()
	latest := snapshots[len(snapshots)-1]
	require.Len(t, latest, 2)
	assert.Equal(t, second.ID, latest[0].ID)
	assert.Equal(t, first.ID, latest[1].ID)
	assert.Empty(t, snapshots[0])
	seen := len(snapshots)
	mu.Unlock()

	unsubscribe()
	unsubscribe()
	f.upload(t, "3.png", "image/png", &folderID)

	mu.Lock()
	assert.Len(t, snapshots, seen)
	mu.Unlock()
}
