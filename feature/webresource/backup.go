package webresource

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"path"
	"strings"

	"webresource-sync/core/storage"

	"github.com/minio/minio-go/v7"
)

// Backup keeps the previous content of a web resource before it is overwritten.
type Backup interface {
	// Save stores the base64 encoded content last held by the named resource.
	Save(ctx context.Context, name, content string) error
}

// StorageBackup writes backups to object storage under
// {prefix}/{solution}/{run id}/{name}.
type StorageBackup struct {
	client   storage.Client
	bucket   string
	prefix   string
	solution string
	runID    string
}

// NewStorageBackup creates a backup store scoped to one run of one solution.
func NewStorageBackup(client storage.Client, cfg storage.Config, solution, runID string) *StorageBackup {
	return &StorageBackup{
		client:   client,
		bucket:   cfg.Bucket,
		prefix:   strings.Trim(cfg.Prefix, "/"),
		solution: solution,
		runID:    runID,
	}
}

// ObjectKey returns the object name used for a resource.
func (b *StorageBackup) ObjectKey(name string) string {
	return path.Join(b.prefix, b.solution, b.runID, strings.TrimPrefix(name, "/"))
}

func (b *StorageBackup) Save(ctx context.Context, name, content string) error {
	data, err := base64.StdEncoding.DecodeString(content)
	if err != nil {
		return fmt.Errorf("failed to decode remote content of %s: %w", name, err)
	}

	resourceType, _ := TypeForPath(name)
	key := b.ObjectKey(name)

	_, err = b.client.PutObject(ctx, b.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: resourceType.ContentType(),
	})
	if err != nil {
		return fmt.Errorf("failed to back up %s to %s: %w", name, key, err)
	}
	return nil
}
