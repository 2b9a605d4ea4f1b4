package config

import (
	"sync"
	"time"
)

var (
	storageOnce   sync.Once
	storageConfig *StorageConfig
)

// StorageConfig drives the artifact archive backend. Rendered documents
// always land in SummaryDir; the archive keeps an extra copy in local
// disk, MinIO or S3 for retention.
type StorageConfig struct {
	Backend string // "" (disabled) | "local" | "minio" | "s3"

	// RetentionPeriod bounds how long archived artifacts are kept before
	// the cleanup task removes them.
	RetentionPeriod time.Duration

	LocalDir string

	MinioEndpoint   string
	MinioAccessKey  string
	MinioSecretKey  string
	MinioUseSSL     bool
	MinioRegion     string
	MinioBucketName string

	S3Region     string
	S3BucketName string
	S3AccessKey  string
	S3SecretKey  string
}

func GetStorageConfig() *StorageConfig {
	storageOnce.Do(func() {
		loadEnv()

		storageConfig = &StorageConfig{
			Backend:         getEnv("ARCHIVE_BACKEND", ""),
			RetentionPeriod: getEnvDuration("ARCHIVE_RETENTION_PERIOD", 30*24*time.Hour),
			LocalDir:        getEnv("ARCHIVE_LOCAL_DIR", "archive"),

			MinioEndpoint:   getEnv("MINIO_ENDPOINT", ""),
			MinioAccessKey:  getEnv("MINIO_ACCESS_KEY", ""),
			MinioSecretKey:  getEnv("MINIO_SECRET_KEY", ""),
			MinioUseSSL:     getEnvBool("MINIO_USE_SSL", false),
			MinioRegion:     getEnv("MINIO_REGION", ""),
			MinioBucketName: getEnv("MINIO_BUCKET_NAME", "meeting-artifacts"),

			S3Region:     getEnv("AWS_REGION", ""),
			S3BucketName: getEnv("S3_BUCKET_NAME", "meeting-artifacts"),
			S3AccessKey:  getEnv("AWS_ACCESS_KEY_ID", ""),
			S3SecretKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		}
	})
	return storageConfig
}
