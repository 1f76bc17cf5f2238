package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"medialib/internal/domain/service"
)

// FilesRoute is where the HTTP server exposes the local store.
const FilesRoute = "/files"

type LocalStore struct {
	basePath    string
	externalURL string
}

func NewLocalStore(basePath, externalURL string) (*LocalStore, error) {
	if basePath == "" {
		basePath = "./data"
	}

	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	return &LocalStore{
		basePath:    basePath,
		externalURL: strings.TrimRight(externalURL, "/"),
	}, nil
}

func (s *LocalStore) BasePath() string {
	return s.basePath
}

func (s *LocalStore) Put(ctx context.Context, path string, r io.Reader, size int64, opts service.PutOptions) error {
	fullPath, err := s.resolve(path)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return err
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return err
	}

	if _, err := io.Copy(file, newProgressReader(contextReader{ctx: ctx, r: r}, size, opts.Progress)); err != nil {
		file.Close()
		os.Remove(fullPath)
		return err
	}

	// A failed close can mean the data never reached disk.
	if err := file.Close(); err != nil {
		os.Remove(fullPath)
		return err
	}

	return nil
}

func (s *LocalStore) ResolveURL(ctx context.Context, path string) (string, error) {
	fullPath, err := s.resolve(path)
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(fullPath); err != nil {
		if os.IsNotExist(err) {
			return "", service.ErrObjectNotFound
		}
		return "", err
	}

	return fmt.Sprintf("%s%s/%s", s.externalURL, FilesRoute, escapePath(path)), nil
}

func (s *LocalStore) Delete(ctx context.Context, path string) error {
	fullPath, err := s.resolve(path)
	if err != nil {
		return err
	}

	if err := os.Remove(fullPath); err != nil {
		if os.IsNotExist(err) {
			return service.ErrObjectNotFound
		}
		return err
	}
	return nil
}

func (s *LocalStore) resolve(path string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(path))
	if clean == "." || filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid storage path %q", path)
	}
	return filepath.Join(s.basePath, clean), nil
}

// contextReader stops a copy once ctx is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
