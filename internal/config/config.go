package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// Database configuration
	Database DatabaseConfig

	// Redis configuration (cool-down store)
	Redis RedisConfig

	// Comment thread configuration
	Comments CommentConfig

	// Request rate limiting
	RateLimit RateLimitConfig

	// Logging configuration
	Log LogConfig

	// Sentry DSN, empty disables error reporting
	SentryDSN string
	Env       string
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	MigrationsPath  string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
}

// CommentConfig holds comment thread settings
type CommentConfig struct {
	PageSize        int
	ReplyPageSize   int
	EmbeddedReplies int
	Cooldown        time.Duration
	SubmitTimeout   time.Duration
	MaxWords        int
}

// RateLimitConfig holds per-client request limits for write endpoints
type RateLimitConfig struct {
	RPS   float64
	Burst int
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string
	Format string // "json" or "pretty"
}

// Load reads configuration from environment variables.
// A .env file in the working directory is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
			MigrationsPath:  getEnv("MIGRATIONS_PATH", "./migrations"),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", "postgres"),
			Name:         getEnv("DB_NAME", "sporthub"),
			SSLMode:      getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns: getIntEnv("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getIntEnv("DB_MAX_IDLE_CONNS", 5),
			MaxLifetime:  getDurationEnv("DB_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			Enabled:  getBoolEnv("REDIS_ENABLED", false),
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		Comments: CommentConfig{
			PageSize:        getIntEnv("COMMENT_PAGE_SIZE", 10),
			ReplyPageSize:   getIntEnv("REPLY_PAGE_SIZE", 10),
			EmbeddedReplies: getIntEnv("COMMENT_EMBEDDED_REPLIES", 3),
			Cooldown:        getDurationEnv("COMMENT_COOLDOWN", 10*time.Second),
			SubmitTimeout:   getDurationEnv("COMMENT_SUBMIT_TIMEOUT", 15*time.Second),
			MaxWords:        getIntEnv("COMMENT_MAX_WORDS", 500),
		},
		RateLimit: RateLimitConfig{
			RPS:   getFloatEnv("RATE_LIMIT_RPS", 5),
			Burst: getIntEnv("RATE_LIMIT_BURST", 10),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		SentryDSN: getEnv("SENTRY_DSN", ""),
		Env:       getEnv("ENV", "production"),
	}

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	if c.Comments.PageSize <= 0 || c.Comments.ReplyPageSize <= 0 {
		return fmt.Errorf("COMMENT_PAGE_SIZE and REPLY_PAGE_SIZE must be positive")
	}
	if c.Comments.EmbeddedReplies < 0 || c.Comments.EmbeddedReplies > c.Comments.ReplyPageSize {
		return fmt.Errorf("COMMENT_EMBEDDED_REPLIES must be between 0 and REPLY_PAGE_SIZE")
	}
	if c.Comments.Cooldown < 0 {
		return fmt.Errorf("COMMENT_COOLDOWN must not be negative")
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("REDIS_ADDR is required when REDIS_ENABLED is set")
	}
	return nil
}

// Defaults returns the configuration used when no environment is set.
// Tests build on it instead of calling Load.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{Port: "8080"},
		Comments: CommentConfig{
			PageSize:        10,
			ReplyPageSize:   10,
			EmbeddedReplies: 3,
			Cooldown:        10 * time.Second,
			SubmitTimeout:   15 * time.Second,
			MaxWords:        500,
		},
		RateLimit: RateLimitConfig{RPS: 5, Burst: 10},
		Log:       LogConfig{Level: "info", Format: "json"},
	}
}

// GetDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
