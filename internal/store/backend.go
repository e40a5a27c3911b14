package store

import (
	"fmt"

	applog "github.com/Estelle64/pluie-app/internal/log"
)

// BackendType selects the persistence backend.
type BackendType string

const (
	FileBackendType   BackendType = "file"
	SQLiteBackendType BackendType = "sqlite"
)

// IsValid returns true if the backend type is known.
func (bt BackendType) IsValid() bool {
	switch bt {
	case FileBackendType, SQLiteBackendType:
		return true
	}
	return false
}

func (bt BackendType) String() string { return string(bt) }

// BackendConfig holds what each backend needs to open.
type BackendConfig struct {
	Type         BackendType
	DataDir      string
	SQLiteDBPath string
}

// NewBackend creates the configured backend.
func NewBackend(cfg BackendConfig, logger *applog.Logger) (Backend, error) {
	switch cfg.Type {
	case FileBackendType:
		b, err := NewFileBackend(cfg.DataDir)
		if err != nil {
			return nil, fmt.Errorf("initialize file backend: %w", err)
		}
		logger.Info("Initialized file backend", applog.FieldBackend, cfg.Type, "data_dir", cfg.DataDir)
		return b, nil
	case SQLiteBackendType:
		b, err := NewSQLiteBackend(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("initialize sqlite backend: %w", err)
		}
		logger.Info("Initialized sqlite backend", applog.FieldBackend, cfg.Type, "db_path", cfg.SQLiteDBPath)
		return b, nil
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", cfg.Type)
	}
}
