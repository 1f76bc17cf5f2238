package usecase

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medialib/internal/domain/entity"
	"medialib/pkg/errors"
)

func TestFolderLifecycleWithMedia(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	folderID, err := f.folders.CreateFolder(ctx, "Trip", strPtr("user-1"))
	require.NoError(t, err)
	require.NotEmpty(t, folderID)

	media := f.upload(t, "a.png", "image/png", &folderID)
	assert.Equal(t, entity.MediaTypeImage, media.Type)
	assert.Regexp(t, `^media/`+folderID+`/\d+_a\.png$`, media.StoragePath)

	err = f.folders.DeleteFolder(ctx, folderID)
	assert.True(t, errors.Is(err, errors.CodeFolderNotEmpty))

	_, err = f.folders.GetFolder(ctx, folderID)
	require.NoError(t, err)

	require.NoError(t, f.media.MoveMedia(ctx, media.ID, nil))
	require.NoError(t, f.folders.DeleteFolder(ctx, folderID))

	_, err = f.folders.GetFolder(ctx, folderID)
	assert.True(t, errors.Is(err, errors.CodeNotFound))

	moved, err := f.media.GetMedia(ctx, media.ID)
	require.NoError(t, err)
	assert.Nil(t, moved.FolderID)
}

func TestCreateFolderRequiresName(t *testing.T) {
	f := newFixture(t)

	_, err := f.folders.CreateFolder(context.Background(), "   ", nil)
	assert.True(t, errors.Is(err, errors.CodeBadRequest))

	folders, err := f.folders.ListFolders(context.Background())
	require.NoError(t, err)
	assert.Empty(t, folders)
}

func TestRenameFolder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	folderID, err := f.folders.CreateFolder(ctx, "Trip", nil)
	require.NoError(t, err)

	require.NoError(t, f.folders.RenameFolder(ctx, folderID, " Summer Trip "))

	folder, err := f.folders.GetFolder(ctx, folderID)
	require.NoError(t, err)
	assert.Equal(t, "Summer Trip", folder.Name)

	err = f.folders.RenameFolder(ctx, "missing", "x")
	assert.True(t, errors.Is(err, errors.CodeNotFound))

	err = f.folders.RenameFolder(ctx, folderID, "")
	assert.True(t, errors.Is(err, errors.CodeBadRequest))
}

func TestDeleteMissingFolder(t *testing.T) {
	f := newFixture(t)

	err := f.folders.DeleteFolder(context.Background(), "missing")
	assert.True(t, errors.Is(err, errors.CodeNotFound))
}

func TestSubscribeFoldersOldestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var (
		mu     sync.Mutex
		latest []*entity.Folder
		calls  int
	)
	unsubscribe, err := f.folders.SubscribeFolders(ctx, func(folders []*entity.Folder) {
		mu.Lock()
		latest = folders
		calls++
		mu.Unlock()
	})
	require.NoError(t, err)

	first, err := f.folders.CreateFolder(ctx, "First", nil)
	require.NoError(t, err)
	second, err := f.folders.CreateFolder(ctx, "Second", nil)
	require.NoError(t, err)

	mu.Lock()
	require.Len(t, latest, 2)
	assert.Equal(t, first, latest[0].ID)
	assert.Equal(t, second, latest[1].ID)
	assert.Equal(t, 3, calls)
	mu.Unlock()

	unsubscribe()
	_, err = f.folders.CreateFolder(ctx, "Third", nil)
	require.NoError(t, err)

	mu.Lock()
	assert.Equal(t, 3, calls)
	mu.Unlock()
}
