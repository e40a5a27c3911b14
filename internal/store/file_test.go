package store

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Estelle64/pluie-app/internal/core"
)

func TestFileBackendMissingSnapshot(t *testing.T) {
	b, err := NewFileBackend(t.TempDir())
	if err != nil {
		t.Fatalf("backend: %v", err)
	}
	if _, err := b.Load(); !errors.Is(err, ErrNoSnapshot) {
		t.Fatalf("expected ErrNoSnapshot, got %v", err)
	}
	if _, err := b.LoadMarkers(); !errors.Is(err, ErrNoSnapshot) {
		t.Fatalf("expected ErrNoSnapshot for markers, got %v", err)
	}
}

func TestFileBackendSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	b, err := NewFileBackend(dir)
	if err != nil {
		t.Fatalf("backend: %v", err)
	}

	l := core.NewWeatherLog()
	l.SetRainfallForDate(day(t, "2024-03-01"), 1.5)
	if err := b.Save(l); err != nil {
		t.Fatalf("save: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Fatalf("temp file left behind: %s", e.Name())
		}
	}
	if _, err := os.Stat(filepath.Join(dir, snapshotFile)); err != nil {
		t.Fatalf("snapshot missing: %v", err)
	}
}

func TestFileBackendMissingKindKeysDefaultEmpty(t *testing.T) {
	dir := t.TempDir()
	payload := `{"rainfall": {"2024-03-01": 4}}`
	if err := os.WriteFile(filepath.Join(dir, snapshotFile), []byte(payload), 0o644); err != nil {
		t.Fatalf("write snapshot: %v", err)
	}

	b, err := NewFileBackend(dir)
	if err != nil {
		t.Fatalf("backend: %v", err)
	}
	l, err := b.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := l.RainfallForDate(day(t, "2024-03-01")); got != 4 {
		t.Fatalf("rainfall: got %v", got)
	}
	// Missing kind keys must come back as usable empty collections.
	if l.Temperature == nil || l.Watts == nil || l.Comments == nil {
		t.Fatal("missing kinds should be normalized to empty maps")
	}
}
