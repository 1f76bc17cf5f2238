package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"medialib/internal/domain/entity"
	"medialib/internal/domain/repository"
	"medialib/pkg/errors"
	"medialib/pkg/logger"
)

const pendingDeletionCollection = "pending_deletions"

type firestorePendingDeletionRepository struct {
	client *firestore.Client
}

func NewFirestorePendingDeletionRepository(client *firestore.Client) repository.PendingDeletionRepository {
	return &firestorePendingDeletionRepository{
		client: client,
	}
}

func (r *firestorePendingDeletionRepository) Create(ctx context.Context, pending *entity.PendingDeletion) error {
	if pending.ID == "" {
		pending.ID = r.client.Collection(pendingDeletionCollection).NewDoc().ID
	}

	_, err := r.client.Collection(pendingDeletionCollection).Doc(pending.ID).Set(ctx, pending)
	if err != nil {
		return errors.Internal("Failed to queue pending deletion", err)
	}
	return nil
}

func (r *firestorePendingDeletionRepository) ListDue(ctx context.Context, limit int) ([]*entity.PendingDeletion, error) {
	query := r.client.Collection(pendingDeletionCollection).OrderBy("updatedAt", firestore.Asc)
	if limit > 0 {
		query = query.Limit(limit)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	var items []*entity.PendingDeletion
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Internal("Failed to iterate pending deletions", err)
		}

		var pending entity.PendingDeletion
		if err := doc.DataTo(&pending); err != nil {
			logger.Error("Failed to parse pending deletion %s: %v", doc.Ref.ID, err)
			continue
		}
		pending.ID = doc.Ref.ID
		items = append(items, &pending)
	}

	return items, nil
}

func (r *firestorePendingDeletionRepository) Update(ctx context.Context, pending *entity.PendingDeletion) error {
	_, err := r.client.Collection(pendingDeletionCollection).Doc(pending.ID).Set(ctx, pending)
	if err != nil {
		return errors.Internal("Failed to update pending deletion", err)
	}
	return nil
}

func (r *firestorePendingDeletionRepository) Delete(ctx context.Context, id string) error {
	_, err := r.client.Collection(pendingDeletionCollection).Doc(id).Delete(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil
		}
		return errors.Internal("Failed to delete pending deletion", err)
	}
	return nil
}
