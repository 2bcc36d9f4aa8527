// Package storage wraps MinIO object storage. The lead importer uses it
// to archive raw upload files so a bad import can be replayed.
package storage

import (
	"bytes"
	"context"
	"fmt"

	"salesorch_backend/platform/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type ImportArchive struct {
	client *minio.Client
	bucket string
}

// NewImportArchive connects to MinIO and ensures the lead-imports bucket
// exists. Returns an error when MinIO is not configured; callers treat
// the archive as optional.
func NewImportArchive(ctx context.Context, cfg config.MinIOConfig) (*ImportArchive, error) {
	if !cfg.IsMinIOEnabled() {
		return nil, fmt.Errorf("minio is not configured")
	}

	client, err := minio.New(cfg.GetMinIOEndpoint(), &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.GetMinIOAccessKey(), cfg.GetMinIOSecretKey(), ""),
		Secure: cfg.GetMinIOUseSSL(),
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	a := &ImportArchive{client: client, bucket: cfg.GetMinioBucketLeadImports()}
	if err := a.ensureBucket(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *ImportArchive) ensureBucket(ctx context.Context) error {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", a.bucket, err)
	}
	if exists {
		return nil
	}
	if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create bucket %s: %w", a.bucket, err)
	}
	return nil
}

// Archive stores one uploaded file under the given object name.
func (a *ImportArchive) Archive(ctx context.Context, objectName string, data []byte, contentType string) error {
	_, err := a.client.PutObject(ctx, a.bucket, objectName, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("put object %s: %w", objectName, err)
	}
	return nil
}
