package config

import (
	"strings"
	"testing"
	"time"

	"github.com/Estelle64/pluie-app/internal/store"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.Port != "8084" {
		t.Fatalf("default port: got %s", cfg.Port)
	}
	if cfg.DataBackend != store.FileBackendType {
		t.Fatalf("default backend: got %s", cfg.DataBackend)
	}
	if cfg.ReminderInterval != 24*time.Hour {
		t.Fatalf("default reminder interval: got %v", cfg.ReminderInterval)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("DATA_BACKEND", "sqlite")
	t.Setenv("SQLITE_DB_PATH", t.TempDir()+"/journal.db")
	t.Setenv("BACKUP_REMINDER_INTERVAL", "6h")

	cfg := Load()
	if cfg.Port != "9000" {
		t.Fatalf("port: got %s", cfg.Port)
	}
	if cfg.DataBackend != store.SQLiteBackendType {
		t.Fatalf("backend: got %s", cfg.DataBackend)
	}
	if cfg.ReminderInterval != 6*time.Hour {
		t.Fatalf("reminder interval: got %v", cfg.ReminderInterval)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestValidateCollectsErrors(t *testing.T) {
	cfg := &Config{
		Port:             "notaport",
		DataBackend:      "cloud",
		ReminderInterval: time.Second,
	}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	msg := err.Error()
	for _, want := range []string{"invalid port", "invalid data backend", "reminder interval"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("error should mention %q, got: %s", want, msg)
		}
	}
}
