package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/Estelle64/pluie-app/internal/store"
)

type Config struct {
	// HTTP Server
	Port string

	// Persistence
	DataBackend  store.BackendType
	DataDir      string
	SQLiteDBPath string

	// Backup reminder
	ReminderInterval time.Duration
}

// LoadEnvFile loads the optional .env file for local development.
func LoadEnvFile() {
	_ = godotenv.Load()
}

func Load() *Config {
	return &Config{
		Port:             getEnv("PORT", "8084"),
		DataBackend:      store.BackendType(getEnv("DATA_BACKEND", "file")),
		DataDir:          getEnv("DATA_DIR", "./data"),
		SQLiteDBPath:     getEnv("SQLITE_DB_PATH", "./data/journal.db"),
		ReminderInterval: getEnvDuration("BACKUP_REMINDER_INTERVAL", 24*time.Hour),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if !c.DataBackend.IsValid() {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of [file sqlite]", c.DataBackend))
	}

	switch c.DataBackend {
	case store.FileBackendType:
		if c.DataDir == "" {
			errors = append(errors, "data directory cannot be empty when using file backend")
		}
	case store.SQLiteBackendType:
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else if dir := filepath.Dir(c.SQLiteDBPath); dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	}

	if c.ReminderInterval < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid backup reminder interval %v: must be at least 1 minute", c.ReminderInterval))
	} else if c.ReminderInterval > 7*24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid backup reminder interval %v: must be at most 7 days", c.ReminderInterval))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

// BackendConfig translates the app config for the store factory.
func (c *Config) BackendConfig() store.BackendConfig {
	return store.BackendConfig{
		Type:         c.DataBackend,
		DataDir:      c.DataDir,
		SQLiteDBPath: c.SQLiteDBPath,
	}
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
