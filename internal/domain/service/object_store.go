package service

import (
	"context"
	"errors"
	"io"
)

// ErrObjectNotFound is returned by Delete and ResolveURL when nothing is
// stored at the path.
var ErrObjectNotFound = errors.New("object not found")

// ProgressFunc receives the bytes written so far and the expected total.
// total is -1 when the size is unknown.
type ProgressFunc func(transferred, total int64)

type PutOptions struct {
	ContentType string
	Metadata    map[string]string
	Progress    ProgressFunc
}

// ObjectStore is the binary store addressed by path.
type ObjectStore interface {
	// Put writes size bytes from r to path. size may be -1 when unknown.
	Put(ctx context.Context, path string, r io.Reader, size int64, opts PutOptions) error
	// ResolveURL returns a retrieval URL for the object at path.
	ResolveURL(ctx context.Context, path string) (string, error)
	Delete(ctx context.Context, path string) error
}
