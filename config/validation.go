package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every problem found in one pass.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	lines := make([]string, len(e))
	for i, v := range e {
		lines[i] = v.Error()
	}
	return strings.Join(lines, "\n")
}

// ValidateConfig checks if the configuration meets the requirements for its environment
func ValidateConfig(cfg *Config) error {
	var errs ValidationErrors
	require := func(field, value, msg string) {
		if value == "" {
			errs = append(errs, ValidationError{Field: field, Message: msg})
		}
	}

	require("SERVER_PORT", cfg.ServerPort, "is required")

	switch cfg.DBDriver {
	case "postgres":
		require("DB_HOST", cfg.DBHost, "is required for postgres")
		require("DB_PORT", cfg.DBPort, "is required for postgres")
		require("DB_NAME", cfg.DBName, "is required for postgres")
		require("DB_USER", cfg.DBUser, "is required for postgres")
	case "sqlite":
		require("SQLITE_PATH", cfg.SQLitePath, "is required for sqlite")
		if cfg.Environment == Production {
			errs = append(errs, ValidationError{Field: "DB_DRIVER", Message: "sqlite is not allowed in production"})
		}
	default:
		errs = append(errs, ValidationError{Field: "DB_DRIVER", Message: fmt.Sprintf("unsupported driver %q", cfg.DBDriver)})
	}

	switch cfg.Environment {
	case CI:
		require("JWT_SECRET", cfg.JWTSecret, "environment variable is required in CI environment")
		if cfg.DBDriver == "postgres" {
			require("DB_PASSWORD", cfg.DBPassword, "environment variable is required in CI environment")
		}
	case Production:
		require("jwt_secret", cfg.JWTSecret, "secret is required")
		require("db_password", cfg.DBPassword, "secret is required")
		if cfg.RedisEnabled() {
			require("redis_password", cfg.RedisPassword, "secret is required")
		}
	default:
		require("JWT_SECRET", cfg.JWTSecret, "is required")
	}

	if cfg.DraftTTL <= 0 {
		errs = append(errs, ValidationError{Field: "DRAFT_TTL", Message: "must be positive"})
	}
	if cfg.RateLimitPerHour < 0 {
		errs = append(errs, ValidationError{Field: "RATE_LIMIT_PER_HOUR", Message: "must not be negative"})
	}
	if cfg.S3Bucket != "" && cfg.AWSRegion == "" {
		errs = append(errs, ValidationError{Field: "AWS_REGION", Message: "is required when S3_BUCKET_NAME is set"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
