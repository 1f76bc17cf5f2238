package usecase

import (
	"context"
	"io"
	"strings"
	"time"

	"medialib/internal/domain/entity"
	"medialib/internal/domain/repository"
	"medialib/internal/domain/service"
	"medialib/pkg/errors"
	"medialib/pkg/logger"
)

type MediaUseCase struct {
	mediaRepo  repository.MediaRepository
	folderRepo repository.FolderRepository
	store      service.ObjectStore
	relocator  *BlobRelocator
	cleanup    *CleanupUseCase
	now        func() time.Time
}

func NewMediaUseCase(
	mediaRepo repository.MediaRepository,
	folderRepo repository.FolderRepository,
	store service.ObjectStore,
	relocator *BlobRelocator,
	cleanup *CleanupUseCase,
) *MediaUseCase {
	return &MediaUseCase{
		mediaRepo:  mediaRepo,
		folderRepo: folderRepo,
		store:      store,
		relocator:  relocator,
		cleanup:    cleanup,
		now:        time.Now,
	}
}

type UploadMediaInput struct {
	Body       io.Reader
	Size       int64
	FileName   string
	MIMEType   string
	FolderID   *string
	UploadedBy *string
	OnProgress func(percent int)
}

func (uc *MediaUseCase) UploadMedia(ctx context.Context, input UploadMediaInput) (*entity.Media, error) {
	if input.Body == nil {
		return nil, errors.UploadFailed("No file provided", nil)
	}
	if strings.TrimSpace(input.FileName) == "" {
		return nil, errors.UploadFailed("File name is required", nil)
	}

	folderID := normalizeID(input.FolderID)
	if err := uc.ensureFolder(ctx, folderID); err != nil {
		return nil, err
	}

	path := BuildMediaPath(FolderSegment(folderID), input.FileName, uc.now())
	progress := NewProgressReporter(input.OnProgress)

	err := uc.store.Put(ctx, path, input.Body, input.Size, service.PutOptions{
		ContentType: input.MIMEType,
		Progress:    progress.Track,
	})
	if err != nil {
		progress.Fail()
		return nil, errors.UploadFailed("Failed to upload media", err)
	}

	url, err := uc.store.ResolveURL(ctx, path)
	if err != nil {
		progress.Fail()
		uc.cleanup.Discard(ctx, path, ReasonOrphanedUpload)
		return nil, errors.URLResolutionFailed(path, err)
	}

	media := &entity.Media{
		Name:        input.FileName,
		URL:         url,
		StoragePath: path,
		FolderID:    folderID,
		Type:        entity.MediaTypeFromMIME(input.MIMEType),
		UploadedBy:  normalizeID(input.UploadedBy),
	}

	if err := uc.mediaRepo.Create(ctx, media); err != nil {
		progress.Fail()
		uc.cleanup.Discard(ctx, path, ReasonOrphanedUpload)
		return nil, err
	}

	progress.Complete()
	logger.Info("Media %s uploaded to %s", media.ID, path)

	return media, nil
}

func (uc *MediaUseCase) GetMedia(ctx context.Context, id string) (*entity.Media, error) {
	return uc.mediaRepo.GetByID(ctx, id)
}

// ListMedia returns one page of media, newest first, and the total count.
func (uc *MediaUseCase) ListMedia(ctx context.Context, folderID *string, limit, offset int) ([]*entity.Media, int64, error) {
	query := repository.MediaQuery{
		FolderID: normalizeID(folderID),
		Limit:    limit,
		Offset:   offset,
	}

	total, err := uc.mediaRepo.Count(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	items, err := uc.mediaRepo.List(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

// RenameMedia gives the media a new name and a new storage object under
// the same folder.
func (uc *MediaUseCase) RenameMedia(ctx context.Context, id, newName string) error {
	if strings.TrimSpace(newName) == "" {
		return errors.BadRequest("Name is required", nil)
	}

	media, err := uc.mediaRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	newPath := uc.freshPath(FolderSegment(media.FolderID), newName, media.StoragePath)
	newURL, err := uc.relocate(ctx, media, newPath)
	if err != nil {
		return err
	}

	err = uc.mediaRepo.Update(ctx, id, repository.MediaUpdate{
		Name:        &newName,
		URL:         &newURL,
		StoragePath: &newPath,
	})
	if err != nil {
		uc.cleanup.Discard(ctx, newPath, ReasonOrphanedRelocation)
		return err
	}

	uc.cleanup.Discard(ctx, media.StoragePath, ReasonSuperseded)
	logger.Info("Media %s renamed, now stored at %s", id, newPath)

	return nil
}

// MoveMedia places the media in targetFolderID, or the root when nil.
func (uc *MediaUseCase) MoveMedia(ctx context.Context, id string, targetFolderID *string) error {
	targetFolderID = normalizeID(targetFolderID)

	media, err := uc.mediaRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := uc.ensureFolder(ctx, targetFolderID); err != nil {
		return err
	}

	fileName := media.Name
	if fileName == "" {
		fileName = lastPathSegment(media.StoragePath)
	}

	newPath := uc.freshPath(FolderSegment(targetFolderID), fileName, media.StoragePath)
	newURL, err := uc.relocate(ctx, media, newPath)
	if err != nil {
		return err
	}

	err = uc.mediaRepo.Update(ctx, id, repository.MediaUpdate{
		URL:         &newURL,
		StoragePath: &newPath,
		SetFolder:   true,
		FolderID:    targetFolderID,
	})
	if err != nil {
		uc.cleanup.Discard(ctx, newPath, ReasonOrphanedRelocation)
		return err
	}

	uc.cleanup.Discard(ctx, media.StoragePath, ReasonSuperseded)
	logger.Info("Media %s moved to folder %s", id, FolderSegment(targetFolderID))

	return nil
}

// DeleteMedia removes the storage object best-effort, then the record.
func (uc *MediaUseCase) DeleteMedia(ctx context.Context, id string) error {
	media, err := uc.mediaRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	uc.cleanup.Discard(ctx, media.StoragePath, ReasonMediaDeleted)

	return uc.mediaRepo.Delete(ctx, id)
}

// SubscribeMedia streams the media list, newest first, optionally limited
// to one folder.
func (uc *MediaUseCase) SubscribeMedia(ctx context.Context, folderID *string, fn func([]*entity.Media)) (repository.Unsubscribe, error) {
	return uc.mediaRepo.Watch(ctx, repository.MediaQuery{FolderID: normalizeID(folderID)}, fn)
}

func (uc *MediaUseCase) relocate(ctx context.Context, media *entity.Media, newPath string) (string, error) {
	newURL, err := uc.relocator.Relocate(ctx, media.URL, newPath)
	if err != nil {
		if errors.Is(err, errors.CodeURLResolution) {
			uc.cleanup.Discard(ctx, newPath, ReasonOrphanedRelocation)
		}
		return "", err
	}
	return newURL, nil
}

// freshPath builds a storage path that never equals current, so a
// relocation cannot overwrite the object it is reading from.
func (uc *MediaUseCase) freshPath(folderSegment, fileName, current string) string {
	now := uc.now()
	path := BuildMediaPath(folderSegment, fileName, now)
	for path == current {
		now = now.Add(time.Millisecond)
		path = BuildMediaPath(folderSegment, fileName, now)
	}
	return path
}

func (uc *MediaUseCase) ensureFolder(ctx context.Context, folderID *string) error {
	if folderID == nil {
		return nil
	}
	_, err := uc.folderRepo.GetByID(ctx, *folderID)
	return err
}
