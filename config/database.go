package config

import "sync"

// Store driver names.
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

var (
	dbOnce   sync.Once
	dbConfig *DatabaseConfig
)

type DatabaseConfig struct {
	// Driver selects the store implementation: "postgres" (Supabase) or
	// "memory" (tests and local development without a database).
	Driver string

	// URL is the Postgres connection string. Supabase exposes a direct
	// connection string per project; SUPABASE_DB_URL takes precedence
	// over DATABASE_URL.
	URL string

	MaxConns int
}

func GetDatabaseConfig() *DatabaseConfig {
	dbOnce.Do(func() {
		loadEnv()

		url := getEnv("SUPABASE_DB_URL", getEnv("DATABASE_URL", ""))
		driver := getEnv("STORE_DRIVER", "")
		if driver == "" {
			if url == "" {
				driver = DriverMemory
			} else {
				driver = DriverPostgres
			}
		}

		dbConfig = &DatabaseConfig{
			Driver:   driver,
			URL:      url,
			MaxConns: getEnvInt("DATABASE_MAX_CONNS", 4),
		}
	})
	return dbConfig
}
