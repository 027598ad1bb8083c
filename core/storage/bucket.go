package storage

import (
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
)

// EnsureBucket checks that the configured bucket exists.
// A missing bucket is created when cfg.CreateBucket is set, otherwise it is an error.
// Returns true when the bucket was created.
func EnsureBucket(ctx context.Context, client Client, cfg Config) (bool, error) {
	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return false, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if exists {
		return false, nil
	}
	if !cfg.CreateBucket {
		return false, fmt.Errorf("bucket %s does not exist", cfg.Bucket)
	}

	if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
		return false, fmt.Errorf("failed to create bucket %s: %w", cfg.Bucket, err)
	}
	return true, nil
}
