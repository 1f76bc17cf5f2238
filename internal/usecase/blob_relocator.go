package usecase

import (
	"context"

	"medialib/internal/domain/service"
	"medialib/pkg/errors"
)

// BlobRelocator copies an object to a new path by reading it back through
// its retrieval URL and writing it again. It never deletes the source.
type BlobRelocator struct {
	store   service.ObjectStore
	fetcher service.BlobFetcher
}

func NewBlobRelocator(store service.ObjectStore, fetcher service.BlobFetcher) *BlobRelocator {
	return &BlobRelocator{
		store:   store,
		fetcher: fetcher,
	}
}

// Relocate returns the retrieval URL of the copy at destinationPath.
// A URL_RESOLUTION_FAILED error means the copy was written but is not
// referenced by anything.
func (r *BlobRelocator) Relocate(ctx context.Context, sourceURL, destinationPath string) (string, error) {
	blob, err := r.fetcher.Fetch(ctx, sourceURL)
	if err != nil {
		return "", errors.FetchFailed("Failed to read the current media object", err)
	}
	defer blob.Body.Close()

	err = r.store.Put(ctx, destinationPath, blob.Body, blob.Size, service.PutOptions{
		ContentType: blob.ContentType,
	})
	if err != nil {
		return "", errors.UploadFailed("Failed to write the relocated media object", err)
	}

	newURL, err := r.store.ResolveURL(ctx, destinationPath)
	if err != nil {
		return "", errors.URLResolutionFailed(destinationPath, err)
	}

	return newURL, nil
}
