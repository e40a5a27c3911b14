package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/Estelle64/pluie-app/internal/core"
	applog "github.com/Estelle64/pluie-app/internal/log"
)

const maxImportSize = 10 << 20 // 10MB

var validate = validator.New()

// snapshotPayload is the import-side view of the snapshot envelope.
// Unknown top-level keys are ignored; missing kinds default to empty.
type snapshotPayload struct {
	Rainfall    map[string]float64          `json:"rainfall" validate:"omitempty,dive,keys,datetime=2006-01-02,endkeys,gte=0"`
	Temperature map[string]core.Temperature `json:"temperature" validate:"omitempty,dive,keys,datetime=2006-01-02,endkeys,omitempty"`
	Watts       map[string]float64          `json:"watts" validate:"omitempty,dive,keys,datetime=2006-01-02,endkeys,gte=0"`
	Comments    map[string]string           `json:"comments" validate:"omitempty,dive,keys,datetime=2006-01-02,endkeys,omitempty"`
}

// handleExport streams the full snapshot as a downloadable JSON file and
// stamps the last-export marker.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	raw, err := json.MarshalIndent(s.store.Snapshot(), "", "  ")
	if err != nil {
		s.logger.Error("Export encode failed", applog.FieldError, err)
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("pluie-donnees-%s.json", core.Today().ISO())
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	if _, err := w.Write(raw); err != nil {
		s.logger.Warn("Export write interrupted", applog.FieldError, err)
		return
	}

	if err := s.store.MarkExported(time.Now()); err != nil {
		s.logger.Warn("Export marker persist failed", applog.FieldError, err)
	}
	s.logger.Info("Snapshot exported", "filename", filename)
}

// handleImport merges an uploaded snapshot into the store. A file that
// fails to parse or validate is rejected whole, leaving state untouched.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxImportSize)
	file, _, err := r.FormFile("file")
	if err != nil {
		writeToast(w, http.StatusBadRequest, toastWarning, "Impossible de lire le fichier")
		return
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		writeToast(w, http.StatusBadRequest, toastWarning, "Impossible de lire le fichier")
		return
	}

	incoming, err := parseSnapshot(raw)
	if err != nil {
		s.logger.Warn("Import rejected", applog.FieldError, err)
		writeToast(w, http.StatusUnprocessableEntity, toastWarning, "Erreur lors de l'importation. Vérifiez le fichier.")
		return
	}

	if err := s.store.Import(incoming); err != nil {
		s.logger.Error("Persist failed after import", applog.FieldError, err)
		writeToast(w, http.StatusOK, toastWarning, "Données importées, mais erreur lors de la sauvegarde")
		return
	}
	s.logger.Info("Snapshot imported",
		"rainfall", len(incoming.Rainfall),
		"temperature", len(incoming.Temperature),
		"watts", len(incoming.Watts),
		"comments", len(incoming.Comments))
	writeToast(w, http.StatusOK, toastSuccess, "Données importées avec succès !")
}

// parseSnapshot decodes and validates an uploaded snapshot. Nothing is
// adopted from a payload that fails any structural check.
func parseSnapshot(raw []byte) (*core.WeatherLog, error) {
	var payload snapshotPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("parse import payload: %w", err)
	}
	if err := validate.Struct(payload); err != nil {
		return nil, fmt.Errorf("validate import payload: %w", err)
	}

	l := core.NewWeatherLog()
	for key, mm := range payload.Rainfall {
		d, err := core.ParseDay(key)
		if err != nil {
			return nil, fmt.Errorf("rainfall date %q: %w", key, err)
		}
		l.SetRainfallForDate(d, mm)
	}
	for key, t := range payload.Temperature {
		d, err := core.ParseDay(key)
		if err != nil {
			return nil, fmt.Errorf("temperature date %q: %w", key, err)
		}
		l.SetTemperatureForDate(d, t)
	}
	for key, kwh := range payload.Watts {
		d, err := core.ParseDay(key)
		if err != nil {
			return nil, fmt.Errorf("watts date %q: %w", key, err)
		}
		l.SetWattForDate(d, kwh)
	}
	for key, text := range payload.Comments {
		d, err := core.ParseDay(key)
		if err != nil {
			return nil, fmt.Errorf("comment date %q: %w", key, err)
		}
		l.SetCommentForDate(d, text)
	}
	return l, nil
}
