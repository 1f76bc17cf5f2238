package service

import (
	"context"
	"io"
)

type FetchedBlob struct {
	Body        io.ReadCloser
	ContentType string
	Size        int64
}

// BlobFetcher reads an object back through its retrieval URL.
type BlobFetcher interface {
	Fetch(ctx context.Context, url string) (*FetchedBlob, error)
}
