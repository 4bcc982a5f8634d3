package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Environment Environment

	// Server configuration
	ServerPort string
	ServerHost string

	// Database configuration. DBDriver is "postgres" or "sqlite".
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string

	// Redis configuration. An empty RedisURL and RedisHost disables redis.
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	RedisURL      string

	// JWT configuration
	JWTSecret string

	// Meal drafts expire after DraftTTL of inactivity.
	DraftTTL time.Duration

	// Logging
	LogLevel  string
	LogFormat string

	// Measurement report export
	S3Bucket  string
	AWSRegion string

	// Write requests allowed per user per hour. Zero disables the limiter.
	RateLimitPerHour int

	// Origins allowed by CORS. Empty means the local frontend defaults.
	AllowedOrigins []string

	// SQL migrations applied on postgres after auto-migration.
	MigrationsDir string
}

// RedisEnabled reports whether a redis endpoint is configured.
func (c *Config) RedisEnabled() bool {
	return c.RedisURL != "" || c.RedisHost != ""
}

// LoadConfig creates a new Config instance with values from environment variables or secrets
func LoadConfig() (*Config, error) {
	env := GetEnvironment()
	cfg := &Config{Environment: env}

	switch env {
	case CI:
		loadCIConfig(cfg)
	case Development, Test:
		loadDevConfig(cfg)
	case Production:
		loadProdConfig(cfg)
	default:
		return nil, fmt.Errorf("unknown environment: %s", env)
	}

	if err := loadCommon(cfg); err != nil {
		return nil, err
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadCIConfig reads everything, secrets included, from environment variables
func loadCIConfig(cfg *Config) {
	loadFromEnv(cfg)
	cfg.DBPassword = os.Getenv("DB_PASSWORD")
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
}

// loadDevConfig reads the environment with local defaults. Docker secrets
// override sensitive values when present.
func loadDevConfig(cfg *Config) {
	loadDotEnv()
	loadFromEnv(cfg)
	cfg.ServerHost = withDefault(cfg.ServerHost, "localhost")
	cfg.ServerPort = withDefault(cfg.ServerPort, "8080")
	cfg.DBDriver = withDefault(cfg.DBDriver, "sqlite")
	cfg.DBHost = withDefault(cfg.DBHost, "localhost")
	cfg.DBPort = withDefault(cfg.DBPort, "5432")
	cfg.DBUser = withDefault(cfg.DBUser, "postgres")
	cfg.DBName = withDefault(cfg.DBName, "nutrack")
	cfg.DBSSLMode = withDefault(cfg.DBSSLMode, "disable")
	cfg.SQLitePath = withDefault(cfg.SQLitePath, "nutrack.db")

	cfg.DBPassword = withDefault(readSecret("db_password"), os.Getenv("DB_PASSWORD"))
	cfg.JWTSecret = withDefault(readSecret("jwt_secret"), os.Getenv("JWT_SECRET"))
	cfg.RedisPassword = withDefault(readSecret("redis_password"), os.Getenv("REDIS_PASSWORD"))
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "dev-secret"
	}
}

// loadProdConfig reads sensitive values ONLY from Docker secrets
func loadProdConfig(cfg *Config) {
	loadFromEnv(cfg)
	cfg.DBDriver = withDefault(cfg.DBDriver, "postgres")
	cfg.DBUser = withDefault(readSecret("db_user"), cfg.DBUser)
	cfg.DBPassword = readSecret("db_password")
	cfg.JWTSecret = readSecret("jwt_secret")
	cfg.RedisPassword = readSecret("redis_password")
}

func loadFromEnv(cfg *Config) {
	cfg.ServerPort = os.Getenv("SERVER_PORT")
	cfg.ServerHost = os.Getenv("SERVER_HOST")
	cfg.DBDriver = os.Getenv("DB_DRIVER")
	cfg.DBHost = os.Getenv("DB_HOST")
	cfg.DBPort = os.Getenv("DB_PORT")
	cfg.DBUser = os.Getenv("DB_USER")
	cfg.DBName = os.Getenv("DB_NAME")
	cfg.DBSSLMode = os.Getenv("DB_SSL_MODE")
	cfg.SQLitePath = os.Getenv("SQLITE_PATH")
	cfg.RedisHost = os.Getenv("REDIS_HOST")
	cfg.RedisPort = withDefault(os.Getenv("REDIS_PORT"), "6379")
	cfg.RedisURL = os.Getenv("REDIS_URL")
	cfg.LogLevel = withDefault(os.Getenv("LOG_LEVEL"), "info")
	cfg.LogFormat = withDefault(os.Getenv("LOG_FORMAT"), "json")
	cfg.S3Bucket = os.Getenv("S3_BUCKET_NAME")
	cfg.AWSRegion = os.Getenv("AWS_REGION")
	cfg.MigrationsDir = withDefault(os.Getenv("MIGRATIONS_DIR"), "migrations")
	cfg.AllowedOrigins = splitList(os.Getenv("CORS_ALLOWED_ORIGINS"))
}

// loadDotEnv reads ENV_FILE, or .env, into the environment. Variables
// already set win. A missing file is fine.
func loadDotEnv() {
	path := withDefault(os.Getenv("ENV_FILE"), ".env")
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "warning: could not load %s: %v\n", path, err)
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// loadCommon parses the numeric settings shared by every environment.
func loadCommon(cfg *Config) error {
	var err error
	if cfg.RedisDB, err = intEnv("REDIS_DB", 0); err != nil {
		return err
	}
	if cfg.RateLimitPerHour, err = intEnv("RATE_LIMIT_PER_HOUR", 300); err != nil {
		return err
	}

	cfg.DraftTTL = 24 * time.Hour
	if v := os.Getenv("DRAFT_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid DRAFT_TTL %q: %w", v, err)
		}
		cfg.DraftTTL = ttl
	}
	return nil
}

func intEnv(name string, def int) (int, error) {
	v := os.Getenv(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, v, err)
	}
	return n, nil
}

func withDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// DSN returns the postgres connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	if data, err := os.ReadFile(filepath.Join(secretsDir, name)); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}
