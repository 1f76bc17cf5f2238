package repository

import (
	"context"
	"sync"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"medialib/internal/domain/entity"
	"medialib/internal/domain/repository"
	"medialib/pkg/errors"
	"medialib/pkg/logger"
)

const folderCollection = "folders"

type firestoreFolderRepository struct {
	client *firestore.Client
}

func NewFirestoreFolderRepository(client *firestore.Client) repository.FolderRepository {
	return &firestoreFolderRepository{
		client: client,
	}
}

func (r *firestoreFolderRepository) Create(ctx context.Context, folder *entity.Folder) error {
	doc := r.client.Collection(folderCollection).NewDoc()

	result, err := doc.Create(ctx, folder)
	if err != nil {
		return errors.Internal("Failed to create folder", err)
	}

	folder.ID = doc.ID
	folder.CreatedAt = result.UpdateTime
	return nil
}

func (r *firestoreFolderRepository) GetByID(ctx context.Context, id string) (*entity.Folder, error) {
	doc, err := r.client.Collection(folderCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Folder", err)
		}
		return nil, errors.Internal("Failed to get folder", err)
	}

	return decodeFolder(doc)
}

func (r *firestoreFolderRepository) Rename(ctx context.Context, id, name string) error {
	_, err := r.client.Collection(folderCollection).Doc(id).Update(ctx, []firestore.Update{
		{Path: "name", Value: name},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.NotFound("Folder", err)
		}
		return errors.Internal("Failed to rename folder", err)
	}
	return nil
}

func (r *firestoreFolderRepository) Delete(ctx context.Context, id string) error {
	_, err := r.client.Collection(folderCollection).Doc(id).Delete(ctx, firestore.Exists)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.NotFound("Folder", err)
		}
		return errors.Internal("Failed to delete folder", err)
	}
	return nil
}

func (r *firestoreFolderRepository) List(ctx context.Context) ([]*entity.Folder, error) {
	iter := r.query().Documents(ctx)
	defer iter.Stop()

	folders, err := collectFolders(iter)
	if err != nil {
		return nil, errors.Internal("Failed to iterate folders", err)
	}
	return folders, nil
}

func (r *firestoreFolderRepository) Watch(ctx context.Context, fn func([]*entity.Folder)) (repository.Unsubscribe, error) {
	ctx, cancel := context.WithCancel(ctx)
	snapshots := r.query().Snapshots(ctx)

	go func() {
		defer snapshots.Stop()
		for {
			snap, err := snapshots.Next()
			if err != nil {
				if ctx.Err() == nil && err != iterator.Done && status.Code(err) != codes.Canceled {
					logger.Error("Folder subscription ended: %v", err)
				}
				return
			}

			folders, err := collectFolders(snap.Documents)
			if err != nil {
				logger.Error("Failed to read folder snapshot: %v", err)
				continue
			}
			fn(folders)
		}
	}()

	var once sync.Once
	return func() { once.Do(cancel) }, nil
}

func (r *firestoreFolderRepository) query() firestore.Query {
	return r.client.Collection(folderCollection).OrderBy("createdAt", firestore.Asc)
}

func collectFolders(iter *firestore.DocumentIterator) ([]*entity.Folder, error) {
	folders := []*entity.Folder{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}

		folder, err := decodeFolder(doc)
		if err != nil {
			logger.Error("Failed to parse folder %s: %v", doc.Ref.ID, err)
			continue
		}
		folders = append(folders, folder)
	}
	return folders, nil
}

func decodeFolder(doc *firestore.DocumentSnapshot) (*entity.Folder, error) {
	var folder entity.Folder
	if err := doc.DataTo(&folder); err != nil {
		return nil, errors.Internal("Failed to parse folder data", err)
	}
	folder.ID = doc.Ref.ID
	return &folder, nil
}
