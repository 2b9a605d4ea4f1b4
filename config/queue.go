package config

import (
	"sync"
	"time"
)

var (
	queueOnce   sync.Once
	queueConfig *QueueConfig
)

// QueueConfig drives the asynq publication queue. When RedisAddr is
// empty the pipeline skips enqueueing and publication is disabled.
type QueueConfig struct {
	RedisAddr      string
	RedisDB        int
	Concurrency    int
	MaxRetries     int
	RetryDelay     time.Duration
	ProcessTimeout time.Duration
}

func GetQueueConfig() *QueueConfig {
	queueOnce.Do(func() {
		loadEnv()

		queueConfig = &QueueConfig{
			RedisAddr:      getEnv("REDIS_ADDR", ""),
			RedisDB:        getEnvInt("REDIS_DB", 0),
			Concurrency:    getEnvInt("QUEUE_CONCURRENCY", 5),
			MaxRetries:     getEnvInt("QUEUE_MAX_RETRIES", 3),
			RetryDelay:     getEnvDuration("QUEUE_RETRY_DELAY", time.Minute),
			ProcessTimeout: getEnvDuration("QUEUE_PROCESS_TIMEOUT", 5*time.Minute),
		}
	})
	return queueConfig
}

// Enabled reports whether a redis backend is configured.
func (c *QueueConfig) Enabled() bool {
	return c.RedisAddr != ""
}
