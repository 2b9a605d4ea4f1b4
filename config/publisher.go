package config

import (
	"sync"
	"time"
)

var (
	publisherOnce   sync.Once
	publisherConfig *PublisherConfig
)

type PublisherConfig struct {
	WikiBaseURL  string
	WikiAPIToken string
	WikiSpaceKey string
	WikiUsername string
	WikiTimeout  time.Duration

	WebhookURL     string
	WebhookTimeout time.Duration
	RetryAttempts  int
	RetryDelay     time.Duration
}

func GetPublisherConfig() *PublisherConfig {
	publisherOnce.Do(func() {
		loadEnv()

		publisherConfig = &PublisherConfig{
			WikiBaseURL:  getEnv("WIKI_BASE_URL", ""),
			WikiAPIToken: getEnv("WIKI_API_TOKEN", ""),
			WikiSpaceKey: getEnv("WIKI_SPACE_KEY", "MEETING_MINUTES"),
			WikiUsername: getEnv("WIKI_USERNAME", "automation-bot"),
			WikiTimeout:  getEnvDuration("WIKI_TIMEOUT", 30*time.Second),

			WebhookURL:     getEnv("N8N_WEBHOOK_URL", ""),
			WebhookTimeout: getEnvDuration("WEBHOOK_TIMEOUT", 30*time.Second),
			RetryAttempts:  getEnvInt("WEBHOOK_RETRY_ATTEMPTS", 3),
			RetryDelay:     getEnvDuration("WEBHOOK_RETRY_DELAY", 2*time.Second),
		}
	})
	return publisherConfig
}
