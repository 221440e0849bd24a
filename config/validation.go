package config

import (
	"fmt"
	"strconv"
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

// ValidateConfig checks that the loaded configuration is usable in the
// current environment.
func ValidateConfig(cfg *Config) error {
	var errs []string

	if _, err := strconv.Atoi(cfg.ServerPort); err != nil {
		errs = append(errs, ValidationError{"SERVER_PORT", "must be numeric"}.Error())
	}

	switch cfg.DBDriver {
	case "sqlite":
		if cfg.DBPath == "" {
			errs = append(errs, ValidationError{"DB_PATH", "required for sqlite"}.Error())
		}
	case "postgres":
		if cfg.DBUser == "" {
			errs = append(errs, ValidationError{"DB_USER", "required for postgres"}.Error())
		}
		if cfg.DBName == "" {
			errs = append(errs, ValidationError{"DB_NAME", "required for postgres"}.Error())
		}
	default:
		errs = append(errs, ValidationError{"DB_DRIVER", "must be sqlite or postgres"}.Error())
	}

	if cfg.CatalogBaseURL == "" {
		errs = append(errs, ValidationError{"CATALOG_BASE_URL", "required"}.Error())
	}
	if cfg.RandomFeedSize <= 0 {
		errs = append(errs, ValidationError{"RANDOM_FEED_SIZE", "must be positive"}.Error())
	}

	if IsProduction() && cfg.JWTSecret == "dev-secret" {
		errs = append(errs, ValidationError{"JWT_SECRET", "must be set in production"}.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func splitAndTrim(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
