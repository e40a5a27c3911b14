package http

import (
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Estelle64/pluie-app/internal/core"
	applog "github.com/Estelle64/pluie-app/internal/log"
)

const historyLimit = 50

type (
	historyEntry struct {
		Date  string
		Value string
	}

	kindStats struct {
		Today      string
		MonthTotal string
		YearTotal  string
	}

	indexData struct {
		Today          string
		Rain           kindStats
		Watt           kindStats
		RainHistory    []historyEntry
		WattHistory    []historyEntry
		CommentHistory []historyEntry
		LastExport     string
	}
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if s.templates == nil {
		s.logger.Error("Templates not loaded", applog.FieldPath, r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	today := core.Today()
	snapshot := s.store.Snapshot()

	data := indexData{
		Today: today.ISO(),
		Rain:  s.statsFor(core.KindRainfall, today),
		Watt:  s.statsFor(core.KindWatt, today),
	}
	for _, date := range s.store.AllDates(core.KindRainfall, false) {
		if len(data.RainHistory) == historyLimit {
			break
		}
		data.RainHistory = append(data.RainHistory, historyEntry{
			Date:  date,
			Value: formatMeasure(snapshot.Rainfall[date]),
		})
	}
	for _, date := range s.store.AllDates(core.KindWatt, false) {
		if len(data.WattHistory) == historyLimit {
			break
		}
		data.WattHistory = append(data.WattHistory, historyEntry{
			Date:  date,
			Value: formatMeasure(snapshot.Watts[date]),
		})
	}
	for _, date := range s.store.AllDates(core.KindComment, false) {
		if len(data.CommentHistory) == historyLimit {
			break
		}
		data.CommentHistory = append(data.CommentHistory, historyEntry{
			Date:  date,
			Value: snapshot.Comments[date],
		})
	}
	if lastExport := s.store.Markers().LastExport; !lastExport.IsZero() {
		data.LastExport = lastExport.Format("2006-01-02 15:04")
	}

	if err := s.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		s.logger.Error("Index template execution failed", applog.FieldError, err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// statsFor computes the today / current-month / current-year figures shown
// above each numeric tab.
func (s *Server) statsFor(k core.Kind, today core.Day) kindStats {
	snapshot := s.store.Snapshot()
	monthStart := core.NewDay(today.Year(), today.Month(), 1)
	yearStart := core.NewDay(today.Year(), time.January, 1)

	var todayValue float64
	if k == core.KindRainfall {
		todayValue = snapshot.RainfallForDate(today)
	} else {
		todayValue = snapshot.WattForDate(today)
	}
	return kindStats{
		Today:      formatMeasure(todayValue),
		MonthTotal: formatMeasure(snapshot.TotalForPeriod(k, monthStart, today)),
		YearTotal:  formatMeasure(snapshot.TotalForPeriod(k, yearStart, today)),
	}
}

func (s *Server) handleSaveRainfall(w http.ResponseWriter, r *http.Request) {
	s.saveMeasure(w, r, "Pluie enregistrée", s.store.SetRainfallForDate)
}

func (s *Server) handleSaveWatt(w http.ResponseWriter, r *http.Request) {
	s.saveMeasure(w, r, "Watts enregistrés", s.store.SetWattForDate)
}

// saveMeasure handles the shared form shape of the two numeric kinds:
// a required date and a required non-negative value.
func (s *Server) saveMeasure(w http.ResponseWriter, r *http.Request, okMsg string, set func(core.Day, float64) error) {
	if !requirePost(w, r) {
		return
	}
	if err := r.ParseForm(); err != nil {
		writeToast(w, http.StatusBadRequest, toastWarning, "Formulaire invalide")
		return
	}

	date, err := core.ParseDay(strings.TrimSpace(r.Form.Get("date")))
	if err != nil {
		writeToast(w, http.StatusUnprocessableEntity, toastWarning, "Veuillez sélectionner une date")
		return
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(r.Form.Get("value")), 64)
	if err != nil || value < 0 {
		writeToast(w, http.StatusUnprocessableEntity, toastWarning, "Veuillez entrer une valeur valide")
		return
	}

	if err := set(date, value); err != nil {
		// The in-memory record stands; only the disk write failed.
		s.logger.Error("Persist failed after save", applog.FieldError, err, applog.FieldDate, date.ISO())
		writeToast(w, http.StatusOK, toastWarning, "Erreur lors de la sauvegarde")
		return
	}
	writeToast(w, http.StatusOK, toastSuccess, okMsg+" ("+date.ISO()+")")
}

func (s *Server) handleSaveTemperature(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	if err := r.ParseForm(); err != nil {
		writeToast(w, http.StatusBadRequest, toastWarning, "Formulaire invalide")
		return
	}

	date, err := core.ParseDay(strings.TrimSpace(r.Form.Get("date")))
	if err != nil {
		writeToast(w, http.StatusUnprocessableEntity, toastWarning, "Veuillez sélectionner une date")
		return
	}

	// Both slots are read every time; the stored pair is always replaced
	// as a whole.
	var pair core.Temperature
	if v := strings.TrimSpace(r.Form.Get("morning")); v != "" {
		m, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeToast(w, http.StatusUnprocessableEntity, toastWarning, "Température du matin invalide")
			return
		}
		pair.Morning = &m
	}
	if v := strings.TrimSpace(r.Form.Get("afternoon")); v != "" {
		a, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeToast(w, http.StatusUnprocessableEntity, toastWarning, "Température de l'après-midi invalide")
			return
		}
		pair.Afternoon = &a
	}

	if err := s.store.SetTemperatureForDate(date, pair); err != nil {
		s.logger.Error("Persist failed after save", applog.FieldError, err, applog.FieldDate, date.ISO())
		writeToast(w, http.StatusOK, toastWarning, "Erreur lors de la sauvegarde")
		return
	}
	writeToast(w, http.StatusOK, toastSuccess, "Températures ("+date.ISO()+") enregistrées")
}

func (s *Server) handleSaveComment(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	if err := r.ParseForm(); err != nil {
		writeToast(w, http.StatusBadRequest, toastWarning, "Formulaire invalide")
		return
	}

	date, err := core.ParseDay(strings.TrimSpace(r.Form.Get("date")))
	if err != nil {
		writeToast(w, http.StatusUnprocessableEntity, toastWarning, "Veuillez sélectionner une date")
		return
	}

	if err := s.store.SetCommentForDate(date, r.Form.Get("text")); err != nil {
		s.logger.Error("Persist failed after save", applog.FieldError, err, applog.FieldDate, date.ISO())
		writeToast(w, http.StatusOK, toastWarning, "Erreur lors de la sauvegarde")
		return
	}
	writeToast(w, http.StatusOK, toastSuccess, "Commentaire ("+date.ISO()+") enregistré")
}

const (
	toastSuccess = "success"
	toastWarning = "warning"
)

func requirePost(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return false
	}
	return true
}

func writeToast(w http.ResponseWriter, status int, kind, message string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`<div class="notification ` + kind + `">` + template.HTMLEscapeString(message) + `</div>`))
}

func formatMeasure(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}
