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
	msgs := make([]string, len(e))
	for i, v := range e {
		msgs[i] = v.Error()
	}
	return strings.Join(msgs, "\n")
}

// ValidateConfig checks if the configuration meets the requirements for the current environment
func ValidateConfig(cfg *Config) error {
	env := GetEnvironment()
	var errs ValidationErrors

	if cfg.JWTSecret == "" {
		errs = append(errs, ValidationError{"JWT_SECRET", "is required"})
	} else if env == Production && len(cfg.JWTSecret) < 32 {
		errs = append(errs, ValidationError{"JWT_SECRET", "must be at least 32 characters in production"})
	}

	switch cfg.StoreDriver {
	case StoreDriverPostgres:
		if cfg.DBHost == "" || cfg.DBName == "" || cfg.DBUser == "" {
			errs = append(errs, ValidationError{"DB_HOST/DB_NAME/DB_USER", "are required for the postgres store"})
		}
		if cfg.DBPassword == "" && env != Development {
			errs = append(errs, ValidationError{"DB_PASSWORD", "is required outside development"})
		}
	case StoreDriverSQLite:
		if cfg.SQLitePath == "" {
			errs = append(errs, ValidationError{"SQLITE_PATH", "is required for the sqlite store"})
		}
	case StoreDriverMemory:
		if env == Production {
			errs = append(errs, ValidationError{"STORE_DRIVER", "memory store is not allowed in production"})
		}
	default:
		errs = append(errs, ValidationError{"STORE_DRIVER", fmt.Sprintf("unknown driver %q", cfg.StoreDriver)})
	}

	switch cfg.LikeMode {
	case "atomic", "read-modify-write":
	default:
		errs = append(errs, ValidationError{"LIKE_MODE", fmt.Sprintf("unknown mode %q", cfg.LikeMode)})
	}

	if cfg.QueryTimeout <= 0 {
		errs = append(errs, ValidationError{"QUERY_TIMEOUT", "must be positive"})
	}
	if cfg.SearchDebounce < 0 {
		errs = append(errs, ValidationError{"SEARCH_DEBOUNCE", "must not be negative"})
	}
	if cfg.TokenTTL <= 0 {
		errs = append(errs, ValidationError{"TOKEN_TTL", "must be positive"})
	}
	if cfg.ResetTokenTTL <= 0 {
		errs = append(errs, ValidationError{"RESET_TOKEN_TTL", "must be positive"})
	}
	if cfg.RateLimitRequests <= 0 || cfg.RateLimitWindow <= 0 {
		errs = append(errs, ValidationError{"RATE_LIMIT_REQUESTS/RATE_LIMIT_WINDOW", "must be positive"})
	}
	if cfg.MaxImageBytes <= 0 {
		errs = append(errs, ValidationError{"MAX_IMAGE_BYTES", "must be positive"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
