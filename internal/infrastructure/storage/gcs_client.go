package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/option"

	"medialib/internal/domain/service"
	"medialib/pkg/logger"
)

// downloadTokenKey is the object metadata key Firebase Storage reads
// download tokens from.
const downloadTokenKey = "firebaseStorageDownloadTokens"

const firebaseDownloadHost = "https://firebasestorage.googleapis.com"

type CloudStorageClient struct {
	client     *storage.Client
	bucketName string
}

func NewCloudStorageClient(ctx context.Context, bucketName string, opts ...option.ClientOption) (*CloudStorageClient, error) {
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %v", err)
	}

	storageClient := &CloudStorageClient{
		client:     client,
		bucketName: bucketName,
	}

	if err := storageClient.setBucketCORS(ctx); err != nil {
		logger.Warn("Failed to set CORS configuration: %v", err)
	}

	return storageClient, nil
}

func (c *CloudStorageClient) setBucketCORS(ctx context.Context) error {
	bucket := c.client.Bucket(c.bucketName)

	corsConfig := storage.CORS{
		MaxAge:          3600,
		Methods:         []string{"GET", "HEAD"},
		Origins:         []string{"*"},
		ResponseHeaders: []string{"Content-Type"},
	}

	bucketAttrs, err := bucket.Attrs(ctx)
	if err != nil {
		return fmt.Errorf("failed to get bucket attributes: %v", err)
	}

	if len(bucketAttrs.CORS) == 0 {
		bucketUpdate := storage.BucketAttrsToUpdate{
			CORS: []storage.CORS{corsConfig},
		}

		if _, err := bucket.Update(ctx, bucketUpdate); err != nil {
			return fmt.Errorf("failed to update bucket CORS: %v", err)
		}
	}

	return nil
}

func (c *CloudStorageClient) Put(ctx context.Context, path string, r io.Reader, size int64, opts service.PutOptions) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	metadata := make(map[string]string, len(opts.Metadata)+1)
	for k, v := range opts.Metadata {
		metadata[k] = v
	}
	metadata[downloadTokenKey] = uuid.New().String()

	wc := c.client.Bucket(c.bucketName).Object(path).NewWriter(ctx)
	wc.ContentType = opts.ContentType
	wc.CacheControl = "public, max-age=86400"
	wc.Metadata = metadata
	if opts.Progress != nil {
		wc.ProgressFunc = func(written int64) {
			opts.Progress(written, size)
		}
	}

	if _, err := io.Copy(wc, r); err != nil {
		// cancelling before Close aborts the upload
		cancel()
		wc.Close()
		return fmt.Errorf("failed to copy file to GCS: %v", err)
	}

	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close writer: %v", err)
	}

	return nil
}

func (c *CloudStorageClient) ResolveURL(ctx context.Context, path string) (string, error) {
	obj := c.client.Bucket(c.bucketName).Object(path)

	attrs, err := obj.Attrs(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return "", service.ErrObjectNotFound
		}
		return "", fmt.Errorf("failed to read object attributes: %v", err)
	}

	token := firstToken(attrs.Metadata[downloadTokenKey])
	if token == "" {
		token = uuid.New().String()
		metadata := make(map[string]string, len(attrs.Metadata)+1)
		for k, v := range attrs.Metadata {
			metadata[k] = v
		}
		metadata[downloadTokenKey] = token

		if _, err := obj.Update(ctx, storage.ObjectAttrsToUpdate{Metadata: metadata}); err != nil {
			return "", fmt.Errorf("failed to attach download token: %v", err)
		}
	}

	return DownloadURL(c.bucketName, path, token), nil
}

func (c *CloudStorageClient) Delete(ctx context.Context, path string) error {
	if err := c.client.Bucket(c.bucketName).Object(path).Delete(ctx); err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return service.ErrObjectNotFound
		}
		return fmt.Errorf("failed to delete file: %v", err)
	}
	return nil
}

func (c *CloudStorageClient) Close() error {
	return c.client.Close()
}

// DownloadURL builds the token-authenticated Firebase Storage download URL.
func DownloadURL(bucket, path, token string) string {
	return fmt.Sprintf("%s/v0/b/%s/o/%s?alt=media&token=%s",
		firebaseDownloadHost, bucket, url.PathEscape(path), url.QueryEscape(token))
}

func firstToken(tokens string) string {
	token, _, _ := strings.Cut(tokens, ",")
	return strings.TrimSpace(token)
}
