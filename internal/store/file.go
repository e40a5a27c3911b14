package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Estelle64/pluie-app/internal/core"
)

const (
	snapshotFile = "journal.json"
	markersFile  = "markers.json"
)

// FileBackend persists the snapshot as one JSON document under a data
// directory, plus a small sibling file for the backup markers.
type FileBackend struct {
	dir string
}

// NewFileBackend creates the data directory if needed.
func NewFileBackend(dir string) (*FileBackend, error) {
	if dir == "" {
		return nil, fmt.Errorf("empty data directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &FileBackend{dir: dir}, nil
}

func (b *FileBackend) Load() (*core.WeatherLog, error) {
	raw, err := os.ReadFile(filepath.Join(b.dir, snapshotFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoSnapshot
		}
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	l := core.NewWeatherLog()
	if err := json.Unmarshal(raw, l); err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}
	l.Normalize()
	return l, nil
}

func (b *FileBackend) Save(l *core.WeatherLog) error {
	raw, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return b.writeAtomic(snapshotFile, raw)
}

func (b *FileBackend) LoadMarkers() (Markers, error) {
	var m Markers
	raw, err := os.ReadFile(filepath.Join(b.dir, markersFile))
	if err != nil {
		if os.IsNotExist(err) {
			return m, ErrNoSnapshot
		}
		return m, fmt.Errorf("read markers: %w", err)
	}
	if err := json.Unmarshal(raw, &m); err != nil {
		return Markers{}, fmt.Errorf("parse markers: %w", err)
	}
	return m, nil
}

func (b *FileBackend) SaveMarkers(m Markers) error {
	raw, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode markers: %w", err)
	}
	return b.writeAtomic(markersFile, raw)
}

func (b *FileBackend) Close() error { return nil }

// writeAtomic writes through a temp file and renames it into place, so a
// reader never observes a half-written snapshot.
func (b *FileBackend) writeAtomic(name string, data []byte) error {
	tmp, err := os.CreateTemp(b.dir, name+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, filepath.Join(b.dir, name)); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace %s: %w", name, err)
	}
	return nil
}

var _ Backend = (*FileBackend)(nil)
