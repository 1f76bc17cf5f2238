package repository

import (
	"context"
	"sync"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/firestore/apiv1/firestorepb"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"medialib/internal/domain/entity"
	"medialib/internal/domain/repository"
	"medialib/pkg/errors"
	"medialib/pkg/logger"
)

const mediaCollection = "media"

type firestoreMediaRepository struct {
	client *firestore.Client
}

func NewFirestoreMediaRepository(client *firestore.Client) repository.MediaRepository {
	return &firestoreMediaRepository{
		client: client,
	}
}

func (r *firestoreMediaRepository) Create(ctx context.Context, media *entity.Media) error {
	doc := r.client.Collection(mediaCollection).NewDoc()

	result, err := doc.Create(ctx, media)
	if err != nil {
		return errors.Internal("Failed to create media", err)
	}

	// createdAt is a server timestamp, which is the commit time of this write
	media.ID = doc.ID
	media.CreatedAt = result.UpdateTime
	return nil
}

func (r *firestoreMediaRepository) GetByID(ctx context.Context, id string) (*entity.Media, error) {
	doc, err := r.client.Collection(mediaCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Media", err)
		}
		return nil, errors.Internal("Failed to get media", err)
	}

	return decodeMedia(doc)
}

func (r *firestoreMediaRepository) Update(ctx context.Context, id string, update repository.MediaUpdate) error {
	var updates []firestore.Update
	if update.Name != nil {
		updates = append(updates, firestore.Update{Path: "name", Value: *update.Name})
	}
	if update.URL != nil {
		updates = append(updates, firestore.Update{Path: "url", Value: *update.URL})
	}
	if update.StoragePath != nil {
		updates = append(updates, firestore.Update{Path: "storagePath", Value: *update.StoragePath})
	}
	if update.SetFolder {
		var folderID interface{}
		if update.FolderID != nil {
			folderID = *update.FolderID
		}
		updates = append(updates, firestore.Update{Path: "folderId", Value: folderID})
	}
	if len(updates) == 0 {
		return nil
	}

	_, err := r.client.Collection(mediaCollection).Doc(id).Update(ctx, updates)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.NotFound("Media", err)
		}
		return errors.Internal("Failed to update media", err)
	}
	return nil
}

func (r *firestoreMediaRepository) Delete(ctx context.Context, id string) error {
	_, err := r.client.Collection(mediaCollection).Doc(id).Delete(ctx, firestore.Exists)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.NotFound("Media", err)
		}
		return errors.Internal("Failed to delete media", err)
	}
	return nil
}

func (r *firestoreMediaRepository) List(ctx context.Context, q repository.MediaQuery) ([]*entity.Media, error) {
	query := r.query(q)
	if q.Offset > 0 {
		query = query.Offset(q.Offset)
	}
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	items, err := collectMedia(iter)
	if err != nil {
		return nil, errors.Internal("Failed to iterate media", err)
	}
	return items, nil
}

func (r *firestoreMediaRepository) Count(ctx context.Context, q repository.MediaQuery) (int64, error) {
	query := r.query(q)
	results, err := query.NewAggregationQuery().WithCount("all").Get(ctx)
	if err != nil {
		return 0, errors.Internal("Failed to count media", err)
	}

	count, ok := results["all"].(*firestorepb.Value)
	if !ok {
		return 0, errors.Internal("Unexpected count result", nil)
	}
	return count.GetIntegerValue(), nil
}

func (r *firestoreMediaRepository) ExistsInFolder(ctx context.Context, folderID string) (bool, error) {
	iter := r.client.Collection(mediaCollection).Where("folderId", "==", folderID).Limit(1).Documents(ctx)
	defer iter.Stop()

	_, err := iter.Next()
	if err == iterator.Done {
		return false, nil
	}
	if err != nil {
		return false, errors.Internal("Failed to query media in folder", err)
	}
	return true, nil
}

func (r *firestoreMediaRepository) Watch(ctx context.Context, q repository.MediaQuery, fn func([]*entity.Media)) (repository.Unsubscribe, error) {
	ctx, cancel := context.WithCancel(ctx)
	snapshots := r.query(q).Snapshots(ctx)

	go func() {
		defer snapshots.Stop()
		for {
			snap, err := snapshots.Next()
			if err != nil {
				if ctx.Err() == nil && err != iterator.Done && status.Code(err) != codes.Canceled {
					logger.Error("Media subscription ended: %v", err)
				}
				return
			}

			items, err := collectMedia(snap.Documents)
			if err != nil {
				logger.Error("Failed to read media snapshot: %v", err)
				continue
			}
			fn(items)
		}
	}()

	var once sync.Once
	return func() { once.Do(cancel) }, nil
}

func (r *firestoreMediaRepository) query(q repository.MediaQuery) firestore.Query {
	query := r.client.Collection(mediaCollection).Query
	if q.FolderID != nil {
		query = query.Where("folderId", "==", *q.FolderID)
	}
	return query.OrderBy("createdAt", firestore.Desc)
}

func collectMedia(iter *firestore.DocumentIterator) ([]*entity.Media, error) {
	items := []*entity.Media{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}

		media, err := decodeMedia(doc)
		if err != nil {
			logger.Error("Failed to parse media %s: %v", doc.Ref.ID, err)
			continue
		}
		items = append(items, media)
	}
	return items, nil
}

func decodeMedia(doc *firestore.DocumentSnapshot) (*entity.Media, error) {
	var media entity.Media
	if err := doc.DataTo(&media); err != nil {
		return nil, errors.Internal("Failed to parse media data", err)
	}
	media.ID = doc.Ref.ID
	return &media, nil
}
