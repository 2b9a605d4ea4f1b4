// Package storage is the artifact archive. Rendered documents always
// land on local disk for serving; when an archive backend is configured
// the pipeline keeps a retention copy there as well.
package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aquaman122/auto-report/config"
	"github.com/aquaman122/auto-report/pkg/logger"
	"github.com/aquaman122/auto-report/pkg/storage/local"
	"github.com/aquaman122/auto-report/pkg/storage/minio"
	"github.com/aquaman122/auto-report/pkg/storage/s3"
)

// Backend names accepted in config.
const (
	BackendLocal = "local"
	BackendMinio = "minio"
	BackendS3    = "s3"
)

// Storage interface.
type Storage interface {
	// Store writes the file under the given key and returns the key.
	Store(ctx context.Context, reader io.Reader, key string) (string, error)
	// Get opens the stored file.
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete removes the stored file.
	Delete(ctx context.Context, key string) error
	// CleanupBefore removes files last modified before the threshold.
	CleanupBefore(ctx context.Context, threshold time.Time) error
}

// New builds the configured archive backend. A nil Storage with a nil
// error means archiving is disabled.
func New(cfg *config.StorageConfig, log logger.Logger) (Storage, error) {
	switch cfg.Backend {
	case "":
		return nil, nil
	case BackendLocal:
		return local.NewLocalStorage(cfg.LocalDir, log)
	case BackendMinio:
		return minio.NewMinioStorage(cfg, log)
	case BackendS3:
		return s3.NewS3Storage(cfg, log)
	default:
		return nil, fmt.Errorf("unsupported archive backend: %s", cfg.Backend)
	}
}
