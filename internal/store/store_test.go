package store

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/Estelle64/pluie-app/internal/core"
	applog "github.com/Estelle64/pluie-app/internal/log"
)

func testLogger() *applog.Logger {
	return applog.New(applog.Config{Handler: slog.NewTextHandler(io.Discard, nil)})
}

func day(t *testing.T, s string) core.Day {
	t.Helper()
	d, err := core.ParseDay(s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return d
}

func ptr(v float64) *float64 { return &v }

func openFileStore(t *testing.T, dir string) *Store {
	t.Helper()
	backend, err := NewFileBackend(dir)
	if err != nil {
		t.Fatalf("file backend: %v", err)
	}
	return Open(backend, testLogger())
}

func TestRoundTrip(t *testing.T) {
	dir := t.TempDir()

	s := openFileStore(t, dir)
	if err := s.SetRainfallForDate(day(t, "2024-03-01"), 5.5); err != nil {
		t.Fatalf("set rainfall: %v", err)
	}
	if err := s.SetTemperatureForDate(day(t, "2024-03-01"), core.Temperature{Morning: ptr(3.2), Afternoon: nil}); err != nil {
		t.Fatalf("set temperature: %v", err)
	}
	if err := s.SetWattForDate(day(t, "2024-03-02"), 14.8); err != nil {
		t.Fatalf("set watt: %v", err)
	}
	if err := s.SetCommentForDate(day(t, "2024-03-02"), "grand soleil"); err != nil {
		t.Fatalf("set comment: %v", err)
	}

	// A fresh store over the same directory must observe the same snapshot.
	s2 := openFileStore(t, dir)
	if !reflect.DeepEqual(s.Snapshot(), s2.Snapshot()) {
		t.Fatalf("snapshots differ after reload:\n%+v\n%+v", s.Snapshot(), s2.Snapshot())
	}
	if got := s2.RainfallForDate(day(t, "2024-03-01")); got != 5.5 {
		t.Fatalf("rainfall after reload: got %v", got)
	}
	temp := s2.TemperatureForDate(day(t, "2024-03-01"))
	if temp.Morning == nil || *temp.Morning != 3.2 || temp.Afternoon != nil {
		t.Fatalf("temperature after reload: got %+v", temp)
	}
	if got := s2.CommentForDate(day(t, "2024-03-02")); got != "grand soleil" {
		t.Fatalf("comment after reload: got %q", got)
	}
}

func TestMalformedSnapshotStartsEmpty(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, snapshotFile), []byte(`{"rainfall": [1,2,3`), 0o644); err != nil {
		t.Fatalf("write corrupt snapshot: %v", err)
	}

	s := openFileStore(t, dir)
	if s.HasAnyRecord() {
		t.Fatal("store should start empty on malformed snapshot")
	}
	for _, k := range []core.Kind{core.KindRainfall, core.KindTemperature, core.KindWatt, core.KindComment} {
		if dates := s.AllDates(k, true); len(dates) != 0 {
			t.Fatalf("%s dates after corrupt load: %v", k, dates)
		}
	}
}

// failingBackend rejects every snapshot save; marker writes pass through.
type failingBackend struct {
	FileBackend
	fail bool
}

func (b *failingBackend) Save(*core.WeatherLog) error {
	if b.fail {
		return errors.New("quota exceeded")
	}
	return nil
}

func TestPersistFailureKeepsMutation(t *testing.T) {
	backend, err := NewFileBackend(t.TempDir())
	if err != nil {
		t.Fatalf("file backend: %v", err)
	}
	fb := &failingBackend{FileBackend: *backend, fail: true}
	s := Open(fb, testLogger())

	d := day(t, "2024-03-01")
	if err := s.SetRainfallForDate(d, 7); err == nil {
		t.Fatal("expected persist error")
	}
	// In-memory state stays authoritative for the session.
	if got := s.RainfallForDate(d); got != 7 {
		t.Fatalf("in-memory value lost: got %v", got)
	}
}

func TestImportMergePersistsOnce(t *testing.T) {
	dir := t.TempDir()
	s := openFileStore(t, dir)
	if err := s.SetRainfallForDate(day(t, "2024-01-01"), 2); err != nil {
		t.Fatalf("seed: %v", err)
	}

	in := core.NewWeatherLog()
	in.SetRainfallForDate(day(t, "2024-01-01"), 9)
	in.SetRainfallForDate(day(t, "2024-01-02"), 1)
	if err := s.Import(in); err != nil {
		t.Fatalf("import: %v", err)
	}

	s2 := openFileStore(t, dir)
	if got := s2.RainfallForDate(day(t, "2024-01-01")); got != 9 {
		t.Fatalf("collision: got %v want 9", got)
	}
	if got := s2.RainfallForDate(day(t, "2024-01-02")); got != 1 {
		t.Fatalf("new record: got %v want 1", got)
	}
}

func TestMarkers(t *testing.T) {
	dir := t.TempDir()
	s := openFileStore(t, dir)

	before := time.Now()
	if err := s.SetWattForDate(day(t, "2024-03-01"), 10); err != nil {
		t.Fatalf("set watt: %v", err)
	}
	m := s.Markers()
	if m.LastBackupAttempt.Before(before) {
		t.Fatalf("backup attempt marker not stamped: %v", m.LastBackupAttempt)
	}
	if !m.LastExport.IsZero() {
		t.Fatalf("export marker should be untouched by persists: %v", m.LastExport)
	}

	exportedAt := time.Date(2024, 3, 1, 18, 0, 0, 0, time.UTC)
	if err := s.MarkExported(exportedAt); err != nil {
		t.Fatalf("mark exported: %v", err)
	}

	s2 := openFileStore(t, dir)
	if !s2.Markers().LastExport.Equal(exportedAt) {
		t.Fatalf("export marker lost on reload: %v", s2.Markers().LastExport)
	}
}
