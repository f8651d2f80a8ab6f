// Package config loads application settings from the environment. A .env
// file in the working directory is honored when present. With no
// DATABASE_URL the app runs in local mode: SQLite storage, in-memory cache,
// in-process events.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	// Application
	AppEnv   string
	LogLevel string

	// HTTP server
	HTTPAddr    string
	CORSOrigins []string

	// Database
	LocalMode        bool
	DatabaseDriver   string
	DatabaseURL      string
	SQLitePath       string
	DatabaseMaxConns int

	// Redis report cache
	RedisURL       string
	ReportCacheTTL time.Duration

	// RabbitMQ
	RabbitMQURL string

	// Outbox
	OutboxPollInterval     time.Duration
	OutboxBatchSize        int
	OutboxMaxRetries       int
	OutboxStatsInterval    time.Duration
	OutboxRetentionDays    int
	OutboxCleanupInterval  time.Duration
	OutboxProcessorEnabled bool

	// Worker
	WorkerHealthAddr string

	// Auth
	JWTSecret  string
	TokenTTL   time.Duration
	BcryptCost int

	// AI study planner
	GroqAPIKey         string
	GroqModel          string
	GroqBaseURL        string
	AITimeout          time.Duration
	AIBreakerThreshold int
	AIBreakerReset     time.Duration
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env if present; absence is not an error.
	_ = godotenv.Load()

	databaseURL := getEnv("DATABASE_URL", "")
	localMode := getBoolEnv("EDUSENSE_LOCAL_MODE", databaseURL == "")

	driver := getEnv("DATABASE_DRIVER", "auto")
	if localMode {
		driver = "sqlite"
	}

	cfg := &Config{
		AppEnv:   getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		HTTPAddr:    getEnv("HTTP_ADDR", "0.0.0.0:8080"),
		CORSOrigins: getListEnv("EDUSENSE_CORS_ORIGINS", []string{"*"}),

		LocalMode:        localMode,
		DatabaseDriver:   driver,
		DatabaseURL:      databaseURL,
		SQLitePath:       getEnv("SQLITE_PATH", getDefaultSQLitePath()),
		DatabaseMaxConns: getIntEnv("DATABASE_MAX_CONNS", 10),

		RedisURL:       getEnv("REDIS_URL", ""),
		ReportCacheTTL: getDurationEnv("EDUSENSE_REPORT_CACHE_TTL", 5*time.Minute),

		RabbitMQURL: getEnv("RABBITMQ_URL", ""),

		OutboxPollInterval:     getDurationEnv("OUTBOX_POLL_INTERVAL", 100*time.Millisecond),
		OutboxBatchSize:        getIntEnv("OUTBOX_BATCH_SIZE", 100),
		OutboxMaxRetries:       getIntEnv("OUTBOX_MAX_RETRIES", 5),
		OutboxStatsInterval:    getDurationEnv("OUTBOX_STATS_INTERVAL", 30*time.Second),
		OutboxRetentionDays:    getIntEnv("OUTBOX_RETENTION_DAYS", 14),
		OutboxCleanupInterval:  getDurationEnv("OUTBOX_CLEANUP_INTERVAL", 24*time.Hour),
		OutboxProcessorEnabled: getBoolEnv("OUTBOX_PROCESSOR_ENABLED", true),

		WorkerHealthAddr: getEnv("WORKER_HEALTH_ADDR", "0.0.0.0:8081"),

		JWTSecret:  getEnv("EDUSENSE_JWT_SECRET", "edusense-dev-secret"),
		TokenTTL:   getDurationEnv("EDUSENSE_TOKEN_TTL", 24*time.Hour),
		BcryptCost: getIntEnv("EDUSENSE_BCRYPT_COST", 0),

		GroqAPIKey:         getEnv("GROQ_API_KEY", ""),
		GroqModel:          getEnv("GROQ_MODEL", "llama-3.3-70b-versatile"),
		GroqBaseURL:        getEnv("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
		AITimeout:          getDurationEnv("EDUSENSE_AI_TIMEOUT", 30*time.Second),
		AIBreakerThreshold: getIntEnv("EDUSENSE_AI_BREAKER_THRESHOLD", 3),
		AIBreakerReset:     getDurationEnv("EDUSENSE_AI_BREAKER_RESET", time.Minute),
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

// IsLocalMode returns true when running against local storage without
// external services.
func (c *Config) IsLocalMode() bool {
	return c.LocalMode
}

// IsSQLite returns true when the SQLite backend is selected.
func (c *Config) IsSQLite() bool {
	return c.DatabaseDriver == "sqlite" || (c.DatabaseDriver == "auto" && c.LocalMode)
}

// IsPostgres returns true when the PostgreSQL backend is selected.
func (c *Config) IsPostgres() bool {
	return c.DatabaseDriver == "postgres" || (c.DatabaseDriver == "auto" && !c.LocalMode)
}

// HasAI returns true when an AI planner key is configured.
func (c *Config) HasAI() bool {
	return c.GroqAPIKey != ""
}

// HasRedis returns true when a Redis cache is configured.
func (c *Config) HasRedis() bool {
	return c.RedisURL != ""
}

// HasRabbitMQ returns true when a message broker is configured.
func (c *Config) HasRabbitMQ() bool {
	return c.RabbitMQURL != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
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

func getListEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var items []string
	for _, item := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	if len(items) == 0 {
		return defaultValue
	}
	return items
}

func getDefaultSQLitePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".edusense/data.db"
	}
	return home + "/.edusense/data.db"
}
