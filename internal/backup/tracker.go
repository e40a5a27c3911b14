package backup

import (
	"time"

	"github.com/Estelle64/pluie-app/internal/core"
	"github.com/Estelle64/pluie-app/internal/store"
)

// StaleAfter is the export age past which a backup counts as stale,
// measured in fixed 24-hour days.
const StaleAfter = 30 * 24 * time.Hour

type (
	// Reminder is the outcome of a staleness check.
	Reminder int

	// Journal is the slice of the record store the tracker reads.
	Journal interface {
		Markers() store.Markers
		HasAnyRecord() bool
		HasRecordOn(core.Day) bool
	}

	// Tracker decides whether the user should be warned about missing or
	// stale exports. State is re-derived from the markers on every check.
	Tracker struct {
		journal Journal
		now     func() time.Time
	}
)

const (
	ReminderNone Reminder = iota
	// ReminderNeverExported: records exist but no export was ever made.
	ReminderNeverExported
	// ReminderStale: the last export is older than StaleAfter.
	ReminderStale
)

// Message returns the user-facing notification text for the reminder.
func (r Reminder) Message() string {
	switch r {
	case ReminderNeverExported:
		return "N'oubliez pas de sauvegarder vos données !"
	case ReminderStale:
		return "Dernière sauvegarde il y a plus d'un mois !"
	}
	return ""
}

// NewTracker creates a tracker over the journal with the real clock.
func NewTracker(journal Journal) *Tracker {
	return &Tracker{journal: journal, now: time.Now}
}

// WithClock replaces the clock, for tests.
func (t *Tracker) WithClock(now func() time.Time) *Tracker {
	t.now = now
	return t
}

// Check evaluates the three-state staleness machine.
func (t *Tracker) Check() Reminder {
	lastExport := t.journal.Markers().LastExport
	if lastExport.IsZero() {
		if t.journal.HasAnyRecord() {
			return ReminderNeverExported
		}
		return ReminderNone
	}
	if t.now().Sub(lastExport) > StaleAfter {
		return ReminderStale
	}
	return ReminderNone
}

// ConfirmClose reports whether leaving the app should ask for
// confirmation: today has at least one record and no export was ever made.
func (t *Tracker) ConfirmClose() bool {
	if !t.journal.Markers().LastExport.IsZero() {
		return false
	}
	y, m, d := t.now().Date()
	return t.journal.HasRecordOn(core.NewDay(y, m, d))
}
