package store

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Estelle64/pluie-app/internal/core"
	applog "github.com/Estelle64/pluie-app/internal/log"
)

// ErrNoSnapshot is returned by backends when no snapshot has been
// persisted yet.
var ErrNoSnapshot = errors.New("no snapshot")

type (
	// Markers are the two timestamps tracked independently of the log:
	// the last successful export and the last persist attempt.
	Markers struct {
		LastExport        time.Time `json:"last_export"`
		LastBackupAttempt time.Time `json:"last_backup_attempt"`
	}

	// Backend persists the full snapshot and the markers. Every Save call
	// writes the complete state; there is no incremental persistence.
	Backend interface {
		Load() (*core.WeatherLog, error)
		Save(*core.WeatherLog) error
		LoadMarkers() (Markers, error)
		SaveMarkers(Markers) error
		Close() error
	}

	// Store owns the in-memory WeatherLog and mediates every read and
	// write. Each mutation persists the full snapshot immediately; a
	// failed persist is returned to the caller for a user-facing warning
	// but the in-memory mutation stands for the rest of the session.
	Store struct {
		mu      sync.RWMutex
		log     *core.WeatherLog
		markers Markers
		backend Backend
		logger  *applog.Logger
		now     func() time.Time
	}
)

// Open loads the persisted snapshot into a new Store. A missing snapshot
// starts empty; a malformed one is logged and discarded, never partially
// adopted.
func Open(backend Backend, logger *applog.Logger) *Store {
	s := &Store{
		log:     core.NewWeatherLog(),
		backend: backend,
		logger:  logger.WithComponent(applog.ComponentStore),
		now:     time.Now,
	}

	loaded, err := backend.Load()
	switch {
	case err == nil:
		loaded.Normalize()
		s.log = loaded
	case errors.Is(err, ErrNoSnapshot):
		s.logger.Info("No snapshot found, starting empty")
	default:
		s.logger.Error("Snapshot unreadable, starting empty", "error", err)
	}

	if m, err := backend.LoadMarkers(); err == nil {
		s.markers = m
	} else if !errors.Is(err, ErrNoSnapshot) {
		s.logger.Warn("Markers unreadable, resetting", "error", err)
	}
	return s
}

// Close releases the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

// persist writes the full snapshot and stamps the backup-attempt marker.
// Caller must hold the write lock.
func (s *Store) persist() error {
	if err := s.backend.Save(s.log); err != nil {
		s.logger.Error("Snapshot persist failed", "error", err)
		return fmt.Errorf("persist snapshot: %w", err)
	}
	s.markers.LastBackupAttempt = s.now()
	if err := s.backend.SaveMarkers(s.markers); err != nil {
		s.logger.Warn("Markers persist failed", "error", err)
	}
	return nil
}

// RainfallForDate returns the rainfall in mm for a date, 0 if absent.
func (s *Store) RainfallForDate(d core.Day) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.log.RainfallForDate(d)
}

// SetRainfallForDate stores the value and persists the snapshot. A non-nil
// error means the persist failed while the in-memory write succeeded.
func (s *Store) SetRainfallForDate(d core.Day, mm float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log.SetRainfallForDate(d, mm)
	return s.persist()
}

// TemperatureForDate returns the pair for a date, both slots nil if absent.
func (s *Store) TemperatureForDate(d core.Day) core.Temperature {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.log.TemperatureForDate(d)
}

// SetTemperatureForDate stores the whole pair and persists the snapshot.
func (s *Store) SetTemperatureForDate(d core.Day, t core.Temperature) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log.SetTemperatureForDate(d, t)
	return s.persist()
}

// WattForDate returns the production in kWh for a date, 0 if absent.
func (s *Store) WattForDate(d core.Day) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.log.WattForDate(d)
}

// SetWattForDate stores the value and persists the snapshot.
func (s *Store) SetWattForDate(d core.Day, kwh float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log.SetWattForDate(d, kwh)
	return s.persist()
}

// CommentForDate returns the comment for a date, "" if absent.
func (s *Store) CommentForDate(d core.Day) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.log.CommentForDate(d)
}

// SetCommentForDate stores the trimmed comment (blank deletes) and
// persists the snapshot.
func (s *Store) SetCommentForDate(d core.Day, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log.SetCommentForDate(d, text)
	return s.persist()
}

// AllDates lists the recorded dates for a kind, sorted chronologically.
func (s *Store) AllDates(k core.Kind, ascending bool) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.log.AllDates(k, ascending)
}

// Snapshot returns a deep copy of the current log, suitable for export or
// aggregation without holding the store lock.
func (s *Store) Snapshot() *core.WeatherLog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.log.Clone()
}

// Import merges an already-validated snapshot into the store, imported
// records winning on collision, then persists once.
func (s *Store) Import(in *core.WeatherLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log.Merge(in)
	return s.persist()
}

// MarkExported stamps the last-export marker after a successful export.
func (s *Store) MarkExported(at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markers.LastExport = at
	if err := s.backend.SaveMarkers(s.markers); err != nil {
		return fmt.Errorf("persist markers: %w", err)
	}
	return nil
}

// Markers returns the current backup markers.
func (s *Store) Markers() Markers {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.markers
}

// HasAnyRecord reports whether any kind has at least one record.
func (s *Store) HasAnyRecord() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.log.HasAnyRecord()
}

// HasRecordOn reports whether any kind has a record for the date.
func (s *Store) HasRecordOn(d core.Day) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.log.HasRecordOn(d)
}
