package config

import (
	"sync"
	"time"
)

var (
	openaiOnce   sync.Once
	openaiConfig *OpenAIConfig
)

type OpenAIConfig struct {
	APIKey       string
	BaseURL      string
	WhisperModel string
	ChatModel    string
	Language     string // default transcription language hint

	TranscribeTimeout time.Duration
	ChatTimeout       time.Duration
}

func GetOpenAIConfig() *OpenAIConfig {
	openaiOnce.Do(func() {
		loadEnv()

		openaiConfig = &OpenAIConfig{
			APIKey:            getEnv("OPENAI_API_KEY", ""),
			BaseURL:           getEnv("OPENAI_BASE_URL", "https://api.openai.com"),
			WhisperModel:      getEnv("OPENAI_WHISPER_MODEL", "whisper-1"),
			ChatModel:         getEnv("OPENAI_CHAT_MODEL", "gpt-4o"),
			Language:          getEnv("OPENAI_DEFAULT_LANGUAGE", "ko"),
			TranscribeTimeout: getEnvDuration("OPENAI_TRANSCRIBE_TIMEOUT", 120*time.Second),
			ChatTimeout:       getEnvDuration("OPENAI_CHAT_TIMEOUT", 60*time.Second),
		}
	})
	return openaiConfig
}
