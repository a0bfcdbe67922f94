package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	Port string

	// Upstream finance API
	BackendAPIURL  string
	BackendTimeout time.Duration

	// Checkpoint persistence
	SQLiteDBPath string

	// Static tables (empty = built-in defaults)
	HoldingsFile        string
	SavingsAccountsFile string

	// Schedules
	PricePollInterval        time.Duration
	SavingsRecomputeInterval time.Duration
	RefetchDelay             time.Duration

	// Logging
	LogLevel string
}

func Load() *Config {
	cfg := &Config{
		Port: getEnv("PORT", "8082"),

		BackendAPIURL:  getEnv("BACKEND_API_URL", "http://localhost:8000"),
		BackendTimeout: getEnvDuration("BACKEND_TIMEOUT", 10*time.Second),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/finanzas.db"),

		HoldingsFile:        getEnv("HOLDINGS_FILE", ""),
		SavingsAccountsFile: getEnv("SAVINGS_ACCOUNTS_FILE", ""),

		PricePollInterval:        getEnvDuration("PRICE_POLL_INTERVAL", time.Minute),
		SavingsRecomputeInterval: getEnvDuration("SAVINGS_RECOMPUTE_INTERVAL", 12*time.Hour),
		RefetchDelay:             getEnvDuration("REFETCH_DELAY", 500*time.Millisecond),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate port
	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	// Validate upstream URL
	if c.BackendAPIURL == "" {
		errors = append(errors, "backend API URL cannot be empty")
	} else if parsedURL, err := url.Parse(c.BackendAPIURL); err != nil {
		errors = append(errors, fmt.Sprintf("invalid backend API URL '%s': %v", c.BackendAPIURL, err))
	} else if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		errors = append(errors, fmt.Sprintf("invalid backend API URL scheme '%s': must be 'http' or 'https'", parsedURL.Scheme))
	}

	// Validate SQLite path: the directory must exist or be creatable
	if c.SQLiteDBPath == "" {
		errors = append(errors, "SQLite database path cannot be empty")
	} else {
		dir := filepath.Dir(c.SQLiteDBPath)
		if dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	}

	// Validate static table files when configured
	for name, path := range map[string]string{
		"holdings file":         c.HoldingsFile,
		"savings accounts file": c.SavingsAccountsFile,
	} {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("%s does not exist: %s", name, path))
		}
	}

	// Validate schedules
	if c.PricePollInterval < time.Second {
		errors = append(errors, fmt.Sprintf("invalid price poll interval %v: must be at least 1 second", c.PricePollInterval))
	} else if c.PricePollInterval > time.Hour {
		errors = append(errors, fmt.Sprintf("invalid price poll interval %v: must be at most 1 hour", c.PricePollInterval))
	}

	if c.SavingsRecomputeInterval < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid savings recompute interval %v: must be at least 1 minute", c.SavingsRecomputeInterval))
	} else if c.SavingsRecomputeInterval > 7*24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid savings recompute interval %v: must be at most 7 days", c.SavingsRecomputeInterval))
	}

	if c.RefetchDelay < 0 || c.RefetchDelay > 30*time.Second {
		errors = append(errors, fmt.Sprintf("invalid refetch delay %v: must be between 0 and 30 seconds", c.RefetchDelay))
	}

	if c.BackendTimeout < time.Second || c.BackendTimeout > time.Minute {
		errors = append(errors, fmt.Sprintf("invalid backend timeout %v: must be between 1 second and 1 minute", c.BackendTimeout))
	}

	// Validate log level
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of debug, info, warn, error", c.LogLevel))
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
