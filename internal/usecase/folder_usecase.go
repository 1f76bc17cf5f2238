package usecase

import (
	"context"
	"strings"

	"medialib/internal/domain/entity"
	"medialib/internal/domain/repository"
	"medialib/pkg/errors"
	"medialib/pkg/logger"
)

type FolderUseCase struct {
	folderRepo repository.FolderRepository
	mediaRepo  repository.MediaRepository
}

func NewFolderUseCase(folderRepo repository.FolderRepository, mediaRepo repository.MediaRepository) *FolderUseCase {
	return &FolderUseCase{
		folderRepo: folderRepo,
		mediaRepo:  mediaRepo,
	}
}

func (uc *FolderUseCase) CreateFolder(ctx context.Context, name string, createdBy *string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.BadRequest("Folder name is required", nil)
	}

	folder := &entity.Folder{
		Name:      name,
		CreatedBy: normalizeID(createdBy),
	}
	if err := uc.folderRepo.Create(ctx, folder); err != nil {
		return "", err
	}

	return folder.ID, nil
}

func (uc *FolderUseCase) GetFolder(ctx context.Context, id string) (*entity.Folder, error) {
	return uc.folderRepo.GetByID(ctx, id)
}

func (uc *FolderUseCase) ListFolders(ctx context.Context) ([]*entity.Folder, error) {
	return uc.folderRepo.List(ctx)
}

func (uc *FolderUseCase) RenameFolder(ctx context.Context, id, newName string) error {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return errors.BadRequest("Folder name is required", nil)
	}
	return uc.folderRepo.Rename(ctx, id, newName)
}

// DeleteFolder refuses to remove a folder that still holds media.
func (uc *FolderUseCase) DeleteFolder(ctx context.Context, id string) error {
	hasMedia, err := uc.mediaRepo.ExistsInFolder(ctx, id)
	if err != nil {
		return err
	}
	if hasMedia {
		return errors.FolderNotEmpty(id)
	}

	if err := uc.folderRepo.Delete(ctx, id); err != nil {
		return err
	}

	logger.Info("Folder %s deleted", id)
	return nil
}

// SubscribeFolders streams every folder, oldest first.
func (uc *FolderUseCase) SubscribeFolders(ctx context.Context, fn func([]*entity.Folder)) (repository.Unsubscribe, error) {
	return uc.folderRepo.Watch(ctx, fn)
}
