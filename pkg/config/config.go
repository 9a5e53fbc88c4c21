// Package config loads library and CLI configuration from the environment.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Storage backend selectors.
const (
	StorageFile     = "file"
	StorageSQLite   = "sqlite"
	StorageRedis    = "redis"
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Config holds application configuration.
type Config struct {
	// Application
	AppEnv    string
	LogLevel  string
	LogFormat string

	// Backend
	APIKey  string
	BaseURL string
	UserID  string

	// HTTPTimeout bounds backend requests. Zero keeps the transport
	// default; no value is invented when the environment is silent.
	HTTPTimeout time.Duration

	// BreakerEnabled guards backend calls with a circuit breaker.
	BreakerEnabled bool

	// CacheTTL is how long a cached snapshot stays valid.
	CacheTTL time.Duration

	// Storage
	StorageBackend string
	StorageDir     string
	SQLitePath     string
	RedisURL       string
	DatabaseURL    string

	// RabbitMQ; empty keeps events in-process.
	RabbitMQURL string
}

// Load loads configuration from environment variables, consulting a .env
// file when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:    getEnv("APP_ENV", "development"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		APIKey:  getEnv("ENTITLE_API_KEY", ""),
		BaseURL: getEnv("ENTITLE_BASE_URL", ""),
		UserID:  getEnv("ENTITLE_USER_ID", ""),

		HTTPTimeout:    getDurationEnv("ENTITLE_HTTP_TIMEOUT", 0),
		BreakerEnabled: getBoolEnv("ENTITLE_BREAKER_ENABLED", false),
		CacheTTL:       getDurationEnv("ENTITLE_CACHE_TTL", 5*time.Minute),

		StorageBackend: getEnv("ENTITLE_STORAGE", StorageFile),
		StorageDir:     getEnv("ENTITLE_STORAGE_DIR", defaultStorageDir()),
		SQLitePath:     getEnv("ENTITLE_SQLITE_PATH", defaultSQLitePath()),
		RedisURL:       getEnv("REDIS_URL", "redis://localhost:6379/0"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),

		RabbitMQURL: getEnv("RABBITMQ_URL", ""),
	}

	return cfg, nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func defaultStorageDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".entitle"
	}
	return home + "/.entitle"
}

func defaultSQLitePath() string {
	return defaultStorageDir() + "/entitle.db"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
