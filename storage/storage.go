// Package storage wraps the S3-compatible object store that holds uploaded
// video files and thumbnails. The database only ever stores the public URL
// of an object; the bytes live here.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/medaruler/unlocked-library/apperror"
	"github.com/medaruler/unlocked-library/config"
)

// Client uploads and deletes media objects.
type Client struct {
	mc            *minio.Client
	bucket        string
	publicBaseURL string
}

// NewClient connects to the object store and ensures the configured bucket
// exists.
func NewClient(ctx context.Context, cfg *config.StorageConfig) (*Client, error) {
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, apperror.NewStorageError("failed to create object storage client", err)
	}

	exists, err := mc.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, apperror.NewStorageError("failed to check storage bucket", err)
	}
	if !exists {
		if err := mc.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, apperror.NewStorageError("failed to create storage bucket", err)
		}
	}

	return &Client{
		mc:            mc,
		bucket:        cfg.Bucket,
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
	}, nil
}

// Upload streams an object into the given folder and returns its public URL.
// The object name is prefixed with a timestamp, matching the naming scheme
// of previously uploaded media.
func (c *Client) Upload(ctx context.Context, folder, filename, contentType string, r io.Reader, size int64) (string, error) {
	objectName := fmt.Sprintf("%s/%d-%s", folder, time.Now().UnixMilli(), path.Base(filename))

	_, err := c.mc.PutObject(ctx, c.bucket, objectName, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", apperror.NewStorageError("failed to upload file", err)
	}

	return c.publicBaseURL + "/" + objectName, nil
}

// Delete removes the object behind a previously returned public URL. Unknown
// URLs are ignored so that a record pointing at an already-removed object can
// still be deleted.
func (c *Client) Delete(ctx context.Context, publicURL string) error {
	objectName, ok := c.objectName(publicURL)
	if !ok {
		return nil
	}
	if err := c.mc.RemoveObject(ctx, c.bucket, objectName, minio.RemoveObjectOptions{}); err != nil {
		return apperror.NewStorageError("failed to delete file", err)
	}
	return nil
}

// objectName recovers the bucket-relative object name from a public URL.
func (c *Client) objectName(publicURL string) (string, bool) {
	if c.publicBaseURL == "" || !strings.HasPrefix(publicURL, c.publicBaseURL+"/") {
		return "", false
	}
	return strings.TrimPrefix(publicURL, c.publicBaseURL+"/"), true
}
