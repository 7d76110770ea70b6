package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Port string `toml:"port"`

	// Database configuration
	DBType            string `toml:"db_type"` // mysql, postgres, sqlite, sqlite-pure, sqlserver
	DBHost            string `toml:"db_host"`
	DBPort            string `toml:"db_port"`
	DBDatabase        string `toml:"db_database"`
	DBUser            string `toml:"db_user"`
	DBPassword        string `toml:"db_password"`
	DBConnectionLimit int    `toml:"db_connection_limit"`
	DBLogLevel        string `toml:"db_log_level"`

	// Authorizer configuration
	AuthzURL         string `toml:"authz_url"`
	AuthzClientID    string `toml:"authz_client_id"`
	AuthzAdminSecret string `toml:"authz_admin_secret"`

	// Deletion worker; an empty RedisURL selects the in-memory queue
	RedisURL               string        `toml:"redis_url"`
	DeletionWorkers        int           `toml:"deletion_workers"`
	DeletionResumeInterval time.Duration `toml:"-"`
	DeletionStaleAfter     time.Duration `toml:"-"`

	// Logging
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
}

// Default returns the configuration used when nothing is set
func Default() Config {
	return Config{
		Port:                   "3000",
		DBType:                 "postgres",
		DBHost:                 "localhost",
		DBPort:                 "5432",
		DBConnectionLimit:      10,
		DBLogLevel:             "warn",
		DeletionWorkers:        2,
		DeletionResumeInterval: time.Minute,
		DeletionStaleAfter:     2 * time.Minute,
		LogLevel:               "info",
		LogFormat:              "text",
	}
}

// Load loads configuration from an optional .env file, an optional TOML file
// named by SPLITSHEET_CONFIG and finally environment variables.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()
	if path := os.Getenv("SPLITSHEET_CONFIG"); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.DBType = getEnv("DB_TYPE", cfg.DBType)
	cfg.DBHost = getEnv("DB_HOST", cfg.DBHost)
	cfg.DBPort = getEnv("DB_PORT", cfg.DBPort)
	cfg.DBDatabase = getEnv("DB_DATABASE", cfg.DBDatabase)
	cfg.DBUser = getEnv("DB_USER", cfg.DBUser)
	cfg.DBPassword = getEnv("DB_PASSWORD", cfg.DBPassword)
	cfg.DBConnectionLimit = getEnvAsInt("DB_CONNECTION_LIMIT", cfg.DBConnectionLimit)
	cfg.DBLogLevel = getEnv("DB_LOG_LEVEL", cfg.DBLogLevel)
	cfg.AuthzURL = getEnv("AUTHZ_URL", cfg.AuthzURL)
	cfg.AuthzClientID = getEnv("AUTHZ_CLIENT_ID", cfg.AuthzClientID)
	cfg.AuthzAdminSecret = getEnv("AUTHZ_ADMIN_SECRET", cfg.AuthzAdminSecret)
	cfg.RedisURL = getEnv("REDIS_URL", cfg.RedisURL)
	cfg.DeletionWorkers = getEnvAsInt("DELETION_WORKERS", cfg.DeletionWorkers)
	cfg.DeletionResumeInterval = getEnvAsDuration("DELETION_RESUME_INTERVAL", cfg.DeletionResumeInterval)
	cfg.DeletionStaleAfter = getEnvAsDuration("DELETION_STALE_AFTER", cfg.DeletionStaleAfter)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnv("LOG_FORMAT", cfg.LogFormat)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks required fields
func (c *Config) Validate() error {
	if c.DBDatabase == "" {
		return fmt.Errorf("DB_DATABASE is required")
	}
	if c.AuthzURL == "" {
		return fmt.Errorf("AUTHZ_URL is required")
	}
	if c.AuthzClientID == "" {
		return fmt.Errorf("AUTHZ_CLIENT_ID is required")
	}
	if c.DeletionWorkers < 1 {
		return fmt.Errorf("DELETION_WORKERS must be at least 1")
	}
	return nil
}

// fileDurations carries duration settings as strings ("90s") in the TOML file
type fileDurations struct {
	DeletionResumeInterval string `toml:"deletion_resume_interval"`
	DeletionStaleAfter     string `toml:"deletion_stale_after"`
}

func loadFile(path string, cfg *Config) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}

	if err := toml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	var durations fileDurations
	if err := toml.Unmarshal(raw, &durations); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	for _, d := range []struct {
		key   string
		value string
		dst   *time.Duration
	}{
		{"deletion_resume_interval", durations.DeletionResumeInterval, &cfg.DeletionResumeInterval},
		{"deletion_stale_after", durations.DeletionStaleAfter, &cfg.DeletionStaleAfter},
	} {
		if d.value == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.value)
		if err != nil {
			return fmt.Errorf("parse config: %s: %w", d.key, err)
		}
		*d.dst = parsed
	}
	return nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration accepts Go duration strings ("90s") or plain seconds
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(valueStr); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(valueStr); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
