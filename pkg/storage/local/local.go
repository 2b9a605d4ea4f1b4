package local

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/aquaman122/auto-report/pkg/logger"
)

// LocalStorage archives files into a directory on disk.
type LocalStorage struct {
	dir    string
	logger logger.Logger
}

func NewLocalStorage(dir string, log logger.Logger) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}
	return &LocalStorage{dir: dir, logger: log}, nil
}

// Store implements Storage.Store
func (l *LocalStorage) Store(_ context.Context, reader io.Reader, key string) (string, error) {
	path := filepath.Join(l.dir, filepath.Base(key))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to store file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, reader); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to store file: %w", err)
	}
	return filepath.Base(key), nil
}

// Get implements Storage.Get
func (l *LocalStorage) Get(_ context.Context, key string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(l.dir, filepath.Base(key)))
	if err != nil {
		return nil, fmt.Errorf("failed to get file: %w", err)
	}
	return f, nil
}

// Delete implements Storage.Delete
func (l *LocalStorage) Delete(_ context.Context, key string) error {
	if err := os.Remove(filepath.Join(l.dir, filepath.Base(key))); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// CleanupBefore implements Storage.CleanupBefore
func (l *LocalStorage) CleanupBefore(_ context.Context, threshold time.Time) error {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return fmt.Errorf("failed to list archive: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(threshold) {
			path := filepath.Join(l.dir, entry.Name())
			if err := os.Remove(path); err != nil {
				l.logger.Error("Failed to delete expired file",
					logger.String("key", entry.Name()),
					logger.Error(err),
				)
				continue
			}
			l.logger.Info("Deleted expired file",
				logger.String("key", entry.Name()),
				logger.Time("lastModified", info.ModTime()),
			)
		}
	}
	return nil
}
