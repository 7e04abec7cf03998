package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	ServerPort     string
	ServerHost     string
	AllowedOrigins []string

	// Store configuration
	StoreDriver string // postgres, sqlite or memory
	SQLitePath  string

	// Database configuration
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Redis configuration
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	RedisURL      string

	// JWT configuration
	JWTSecret     string
	TokenTTL      time.Duration
	ResetTokenTTL time.Duration

	// Outgoing mail. An empty SMTPHost logs mail instead of sending it.
	SMTPHost      string
	SMTPPort      string
	SMTPUsername  string
	SMTPPassword  string
	EmailFrom     string
	EmailFromName string
	FrontendURL   string

	// Rate limiting of writes per user
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Image storage
	S3BucketName  string
	AWSRegion     string
	S3Endpoint    string
	MaxImageBytes int64

	// Catalog behaviour
	QueryTimeout   time.Duration
	SearchDebounce time.Duration
	LikeMode       string // atomic or read-modify-write

	LogLevel string
}

const (
	StoreDriverPostgres = "postgres"
	StoreDriverSQLite   = "sqlite"
	StoreDriverMemory   = "memory"
)

// LoadConfig creates a new Config instance with values from environment variables or secrets
func LoadConfig() (*Config, error) {
	env := GetEnvironment()
	if env == Development {
		LoadDotEnv()
	}

	var cfg *Config
	var err error
	switch env {
	case CI:
		cfg, err = load(os.Getenv)
	case Development, Test, Production:
		cfg, err = load(lookupWithSecrets)
	default:
		return nil, fmt.Errorf("unknown environment: %s", env)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s configuration: %w", env, err)
	}

	// Validate the configuration
	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// load reads every key through get and applies defaults.
func load(get func(string) string) (*Config, error) {
	value := func(key, def string) string {
		if v := strings.TrimSpace(get(key)); v != "" {
			return v
		}
		return def
	}

	cfg := &Config{
		ServerPort:    value("SERVER_PORT", "8080"),
		ServerHost:    value("SERVER_HOST", "0.0.0.0"),
		StoreDriver:   strings.ToLower(value("STORE_DRIVER", StoreDriverPostgres)),
		SQLitePath:    value("SQLITE_PATH", "recetario.db"),
		DBHost:        value("DB_HOST", "localhost"),
		DBPort:        value("DB_PORT", "5432"),
		DBUser:        value("DB_USER", "postgres"),
		DBPassword:    value("DB_PASSWORD", ""),
		DBName:        value("DB_NAME", "recetario"),
		DBSSLMode:     value("DB_SSL_MODE", "disable"),
		RedisHost:     value("REDIS_HOST", "localhost"),
		RedisPort:     value("REDIS_PORT", "6379"),
		RedisPassword: value("REDIS_PASSWORD", ""),
		RedisURL:      value("REDIS_URL", ""),
		JWTSecret:     value("JWT_SECRET", ""),
		SMTPHost:      value("SMTP_HOST", ""),
		SMTPPort:      value("SMTP_PORT", "587"),
		SMTPUsername:  value("SMTP_USERNAME", ""),
		SMTPPassword:  value("SMTP_PASSWORD", ""),
		EmailFrom:     value("EMAIL_FROM", "no-reply@recetario.local"),
		EmailFromName: value("EMAIL_FROM_NAME", "Recetario"),
		FrontendURL:   value("FRONTEND_URL", "http://localhost:5173"),
		S3BucketName:  value("S3_BUCKET_NAME", "recetario-images"),
		AWSRegion:     value("AWS_REGION", "us-east-1"),
		S3Endpoint:    value("S3_ENDPOINT", ""),
		LikeMode:      value("LIKE_MODE", "atomic"),
		LogLevel:      value("LOG_LEVEL", "info"),
	}

	if origins := value("ALLOWED_ORIGINS", ""); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
			}
		}
	}

	var err error
	if cfg.RedisDB, err = strconv.Atoi(value("REDIS_DB", "0")); err != nil {
		return nil, fmt.Errorf("REDIS_DB: %w", err)
	}
	if cfg.MaxImageBytes, err = strconv.ParseInt(value("MAX_IMAGE_BYTES", "5242880"), 10, 64); err != nil {
		return nil, fmt.Errorf("MAX_IMAGE_BYTES: %w", err)
	}
	if cfg.TokenTTL, err = time.ParseDuration(value("TOKEN_TTL", "24h")); err != nil {
		return nil, fmt.Errorf("TOKEN_TTL: %w", err)
	}
	if cfg.ResetTokenTTL, err = time.ParseDuration(value("RESET_TOKEN_TTL", "30m")); err != nil {
		return nil, fmt.Errorf("RESET_TOKEN_TTL: %w", err)
	}
	if cfg.RateLimitRequests, err = strconv.Atoi(value("RATE_LIMIT_REQUESTS", "30")); err != nil {
		return nil, fmt.Errorf("RATE_LIMIT_REQUESTS: %w", err)
	}
	if cfg.RateLimitWindow, err = time.ParseDuration(value("RATE_LIMIT_WINDOW", "1m")); err != nil {
		return nil, fmt.Errorf("RATE_LIMIT_WINDOW: %w", err)
	}
	if cfg.QueryTimeout, err = time.ParseDuration(value("QUERY_TIMEOUT", "10s")); err != nil {
		return nil, fmt.Errorf("QUERY_TIMEOUT: %w", err)
	}
	if cfg.SearchDebounce, err = time.ParseDuration(value("SEARCH_DEBOUNCE", "250ms")); err != nil {
		return nil, fmt.Errorf("SEARCH_DEBOUNCE: %w", err)
	}

	return cfg, nil
}

// lookupWithSecrets prefers a Docker secret over the environment variable of
// the same name.
func lookupWithSecrets(key string) string {
	if v := readSecret(strings.ToLower(key)); v != "" {
		return v
	}
	return os.Getenv(key)
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	secretPath := filepath.Join(secretsDir, name)
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return c.ServerHost + ":" + c.ServerPort
}
