package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Estelle64/pluie-app/internal/backup"
	"github.com/Estelle64/pluie-app/internal/core"
)

// handleSeries returns chart data for one kind over a month, a year or a
// custom date range.
func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	kind := core.Kind(q.Get("kind"))
	if !kind.Valid() || kind == core.KindComment {
		writeJSONError(w, http.StatusBadRequest, "unknown kind")
		return
	}
	snapshot := s.store.Snapshot()

	now := time.Now()
	switch q.Get("period") {
	case "month", "":
		year, month, ok := yearMonthParams(q.Get("year"), q.Get("month"), now)
		if !ok {
			writeJSONError(w, http.StatusBadRequest, "invalid year or month")
			return
		}
		if kind == core.KindTemperature {
			writeJSON(w, snapshot.TemperatureSeriesForMonth(year, month))
			return
		}
		writeJSON(w, snapshot.SeriesForMonth(kind, year, month))
	case "year":
		if kind == core.KindTemperature {
			writeJSONError(w, http.StatusBadRequest, "temperature has no yearly totals")
			return
		}
		year := now.Year()
		if v := strings.TrimSpace(q.Get("year")); v != "" {
			y, err := strconv.Atoi(v)
			if err != nil {
				writeJSONError(w, http.StatusBadRequest, "invalid year")
				return
			}
			year = y
		}
		writeJSON(w, snapshot.SeriesForYear(kind, year))
	case "range":
		if kind == core.KindTemperature {
			writeJSONError(w, http.StatusBadRequest, "temperature has no range series")
			return
		}
		start, err := core.ParseDay(q.Get("start"))
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid start date")
			return
		}
		end, err := core.ParseDay(q.Get("end"))
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid end date")
			return
		}
		writeJSON(w, snapshot.SeriesForRange(kind, start, end))
	default:
		writeJSONError(w, http.StatusBadRequest, "unknown period")
	}
}

type backupStatus struct {
	Reminder     string `json:"reminder"`
	Message      string `json:"message,omitempty"`
	ConfirmClose bool   `json:"confirm_close"`
	LastExport   string `json:"last_export,omitempty"`
}

// handleBackupStatus feeds the front-end reminder toast and the
// beforeunload confirmation.
func (s *Server) handleBackupStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	reminder := s.tracker.Check()
	status := backupStatus{
		Reminder:     reminderName(reminder),
		Message:      reminder.Message(),
		ConfirmClose: s.tracker.ConfirmClose(),
	}
	if lastExport := s.store.Markers().LastExport; !lastExport.IsZero() {
		status.LastExport = lastExport.Format(time.RFC3339)
	}
	writeJSON(w, status)
}

func reminderName(r backup.Reminder) string {
	switch r {
	case backup.ReminderNeverExported:
		return "never_exported"
	case backup.ReminderStale:
		return "stale"
	}
	return "none"
}

func yearMonthParams(yearParam, monthParam string, now time.Time) (int, time.Month, bool) {
	year := now.Year()
	month := now.Month()
	if v := strings.TrimSpace(yearParam); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			return 0, 0, false
		}
		year = y
	}
	if v := strings.TrimSpace(monthParam); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil || m < 1 || m > 12 {
			return 0, 0, false
		}
		month = time.Month(m)
	}
	return year, month, true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
