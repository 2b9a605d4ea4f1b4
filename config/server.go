package config

import "sync"

var (
	serverOnce   sync.Once
	serverConfig *ServerConfig
)

type ServerConfig struct {
	Port               string
	Env                string // development | production
	LogLevel           string
	UploadDir          string
	SummaryDir         string
	UploadMaxSize      int64 // bytes
	MaxFilesPerRequest int
}

func GetServerConfig() *ServerConfig {
	serverOnce.Do(func() {
		loadEnv()

		serverConfig = &ServerConfig{
			Port:               getEnv("PORT", "3000"),
			Env:                getEnv("NODE_ENV", getEnv("APP_ENV", "development")),
			LogLevel:           getEnv("LOG_LEVEL", "info"),
			UploadDir:          getEnv("UPLOAD_DIR", "uploads"),
			SummaryDir:         getEnv("SUMMARY_DIR", "summaries"),
			UploadMaxSize:      getEnvInt64("UPLOAD_MAX_SIZE", 100*1024*1024), // 100MB
			MaxFilesPerRequest: getEnvInt("MAX_FILES_PER_REQUEST", 5),
		}
	})
	return serverConfig
}

// IsProduction reports whether the server runs in production mode.
// Error responses omit stack detail when true.
func (c *ServerConfig) IsProduction() bool {
	return c.Env == "production"
}
