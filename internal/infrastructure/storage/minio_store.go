package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"medialib/internal/domain/service"
	"medialib/pkg/logger"
)

const presignedURLExpiry = 7 * 24 * time.Hour

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
	// PublicURL serves objects directly when the bucket is public.
	// Empty means presigned URLs.
	PublicURL string
}

type MinIOStore struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

func NewMinIOStore(ctx context.Context, cfg MinIOConfig) (*MinIOStore, error) {
	logger.Info("Connecting to minio at %s", cfg.Endpoint)

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %s: %w", cfg.Bucket, err)
	}

	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %s: %w", cfg.Bucket, err)
		}
	}

	return NewMinIOStoreWithClient(client, cfg.Bucket, cfg.PublicURL), nil
}

func NewMinIOStoreWithClient(client *minio.Client, bucket, publicURL string) *MinIOStore {
	return &MinIOStore{
		client:    client,
		bucket:    bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
	}
}

func (s *MinIOStore) Put(ctx context.Context, path string, r io.Reader, size int64, opts service.PutOptions) error {
	_, err := s.client.PutObject(ctx, s.bucket, path, newProgressReader(r, size, opts.Progress), size,
		minio.PutObjectOptions{
			ContentType:  opts.ContentType,
			UserMetadata: opts.Metadata,
		})
	if err != nil {
		return fmt.Errorf("failed to put object %s: %w", path, err)
	}
	return nil
}

func (s *MinIOStore) ResolveURL(ctx context.Context, path string) (string, error) {
	if err := s.stat(ctx, path); err != nil {
		return "", err
	}

	if s.publicURL != "" {
		return fmt.Sprintf("%s/%s/%s", s.publicURL, s.bucket, escapePath(path)), nil
	}

	presigned, err := s.client.PresignedGetObject(ctx, s.bucket, path, presignedURLExpiry, nil)
	if err != nil {
		return "", fmt.Errorf("failed to presign %s: %w", path, err)
	}
	return presigned.String(), nil
}

func (s *MinIOStore) Delete(ctx context.Context, path string) error {
	// RemoveObject succeeds on missing keys, stat first so callers can tell
	if err := s.stat(ctx, path); err != nil {
		return err
	}

	if err := s.client.RemoveObject(ctx, s.bucket, path, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove object %s: %w", path, err)
	}
	return nil
}

func (s *MinIOStore) stat(ctx context.Context, path string) error {
	_, err := s.client.StatObject(ctx, s.bucket, path, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return service.ErrObjectNotFound
		}
		return fmt.Errorf("failed to stat object %s: %w", path, err)
	}
	return nil
}

func escapePath(path string) string {
	segments := strings.Split(path, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return strings.Join(segments, "/")
}
