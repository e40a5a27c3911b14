package store

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/Estelle64/pluie-app/internal/core"
)

func openSQLite(t *testing.T) *SQLiteBackend {
	t.Helper()
	b, err := NewSQLiteBackend(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("sqlite backend: %v", err)
	}
	t.Cleanup(func() { b.Close() })
	return b
}

func TestSQLiteRoundTrip(t *testing.T) {
	b := openSQLite(t)

	if _, err := b.Load(); !errors.Is(err, ErrNoSnapshot) {
		t.Fatalf("expected ErrNoSnapshot on fresh db, got %v", err)
	}

	l := core.NewWeatherLog()
	l.SetRainfallForDate(day(t, "2024-03-01"), 5.5)
	l.SetTemperatureForDate(day(t, "2024-03-01"), core.Temperature{Morning: ptr(-1.5)})
	l.SetWattForDate(day(t, "2024-03-02"), 14.8)
	l.SetCommentForDate(day(t, "2024-03-02"), "gel au matin")
	if err := b.Save(l); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := b.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if v := got.RainfallForDate(day(t, "2024-03-01")); v != 5.5 {
		t.Fatalf("rainfall: got %v", v)
	}
	temp := got.TemperatureForDate(day(t, "2024-03-01"))
	if temp.Morning == nil || *temp.Morning != -1.5 || temp.Afternoon != nil {
		t.Fatalf("temperature: got %+v", temp)
	}
	if v := got.WattForDate(day(t, "2024-03-02")); v != 14.8 {
		t.Fatalf("watts: got %v", v)
	}
	if v := got.CommentForDate(day(t, "2024-03-02")); v != "gel au matin" {
		t.Fatalf("comment: got %q", v)
	}
}

func TestSQLiteSaveReplacesSnapshot(t *testing.T) {
	b := openSQLite(t)

	l := core.NewWeatherLog()
	l.SetRainfallForDate(day(t, "2024-03-01"), 5)
	l.SetRainfallForDate(day(t, "2024-03-02"), 6)
	if err := b.Save(l); err != nil {
		t.Fatalf("first save: %v", err)
	}

	// Full-snapshot semantics: the second save owns the whole table.
	l2 := core.NewWeatherLog()
	l2.SetRainfallForDate(day(t, "2024-03-02"), 9)
	if err := b.Save(l2); err != nil {
		t.Fatalf("second save: %v", err)
	}

	got, err := b.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, ok := got.Rainfall["2024-03-01"]; ok {
		t.Fatal("stale record survived full-snapshot save")
	}
	if v := got.RainfallForDate(day(t, "2024-03-02")); v != 9 {
		t.Fatalf("rainfall: got %v want 9", v)
	}
}

func TestSQLiteMarkersRoundTrip(t *testing.T) {
	b := openSQLite(t)

	m, err := b.LoadMarkers()
	if err != nil {
		t.Fatalf("load markers: %v", err)
	}
	if !m.LastExport.IsZero() || !m.LastBackupAttempt.IsZero() {
		t.Fatalf("fresh markers should be zero: %+v", m)
	}

	want := Markers{
		LastExport:        day(t, "2024-03-01").Time,
		LastBackupAttempt: day(t, "2024-03-05").Time,
	}
	if err := b.SaveMarkers(want); err != nil {
		t.Fatalf("save markers: %v", err)
	}
	got, err := b.LoadMarkers()
	if err != nil {
		t.Fatalf("reload markers: %v", err)
	}
	if !got.LastExport.Equal(want.LastExport) || !got.LastBackupAttempt.Equal(want.LastBackupAttempt) {
		t.Fatalf("markers mismatch: got %+v want %+v", got, want)
	}
}
