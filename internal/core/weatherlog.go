package core

import (
	"sort"
	"strings"
)

const (
	KindRainfall    Kind = "rainfall"
	KindTemperature Kind = "temperature"
	KindWatt        Kind = "watts"
	KindComment     Kind = "comments"
)

type (
	// Kind identifies one of the four measurement collections.
	Kind string

	// Temperature is one day's pair of readings in °C. A nil slot means
	// the reading was never taken.
	Temperature struct {
		Morning   *float64 `json:"morning"`
		Afternoon *float64 `json:"afternoon"`
	}

	// WeatherLog is the root aggregate: four independent collections keyed
	// by ISO date. The struct doubles as the snapshot envelope written to
	// disk and exchanged on export/import.
	WeatherLog struct {
		Rainfall    map[string]float64     `json:"rainfall"`
		Temperature map[string]Temperature `json:"temperature"`
		Watts       map[string]float64     `json:"watts"`
		Comments    map[string]string      `json:"comments"`
	}
)

func (k Kind) Valid() bool {
	switch k {
	case KindRainfall, KindTemperature, KindWatt, KindComment:
		return true
	}
	return false
}

// NewWeatherLog returns a log with all four collections empty.
func NewWeatherLog() *WeatherLog {
	l := &WeatherLog{}
	l.Reset()
	return l
}

// Reset empties all four collections.
func (l *WeatherLog) Reset() {
	l.Rainfall = make(map[string]float64)
	l.Temperature = make(map[string]Temperature)
	l.Watts = make(map[string]float64)
	l.Comments = make(map[string]string)
}

// Normalize replaces nil collections with empty ones, typically after
// unmarshalling a snapshot with missing kind keys.
func (l *WeatherLog) Normalize() {
	if l.Rainfall == nil {
		l.Rainfall = make(map[string]float64)
	}
	if l.Temperature == nil {
		l.Temperature = make(map[string]Temperature)
	}
	if l.Watts == nil {
		l.Watts = make(map[string]float64)
	}
	if l.Comments == nil {
		l.Comments = make(map[string]string)
	}
}

// RainfallForDate returns the rainfall in mm for a date, 0 if absent.
func (l *WeatherLog) RainfallForDate(d Day) float64 {
	return l.Rainfall[d.ISO()]
}

// SetRainfallForDate stores the rainfall for a date, replacing any prior value.
func (l *WeatherLog) SetRainfallForDate(d Day, mm float64) {
	l.Rainfall[d.ISO()] = mm
}

// TemperatureForDate returns the temperature pair for a date. Both slots
// are nil if no record exists.
func (l *WeatherLog) TemperatureForDate(d Day) Temperature {
	return l.Temperature[d.ISO()]
}

// SetTemperatureForDate stores the whole pair for a date. Last write wins
// for both slots together; callers always supply the complete pair.
func (l *WeatherLog) SetTemperatureForDate(d Day, t Temperature) {
	l.Temperature[d.ISO()] = t
}

// WattForDate returns the solar production in kWh for a date, 0 if absent.
func (l *WeatherLog) WattForDate(d Day) float64 {
	return l.Watts[d.ISO()]
}

// SetWattForDate stores the solar production for a date.
func (l *WeatherLog) SetWattForDate(d Day, kwh float64) {
	l.Watts[d.ISO()] = kwh
}

// CommentForDate returns the comment for a date, "" if absent.
func (l *WeatherLog) CommentForDate(d Day) string {
	return l.Comments[d.ISO()]
}

// SetCommentForDate stores the trimmed comment for a date. A blank comment
// deletes the record: "no comment" and "empty comment" are the same state.
func (l *WeatherLog) SetCommentForDate(d Day, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		delete(l.Comments, d.ISO())
		return
	}
	l.Comments[d.ISO()] = text
}

// AllDates returns every recorded date for a kind, chronologically sorted.
// ISO dates sort lexicographically, so a plain string sort is enough.
func (l *WeatherLog) AllDates(k Kind, ascending bool) []string {
	var dates []string
	switch k {
	case KindRainfall:
		for d := range l.Rainfall {
			dates = append(dates, d)
		}
	case KindTemperature:
		for d := range l.Temperature {
			dates = append(dates, d)
		}
	case KindWatt:
		for d := range l.Watts {
			dates = append(dates, d)
		}
	case KindComment:
		for d := range l.Comments {
			dates = append(dates, d)
		}
	}
	sort.Strings(dates)
	if !ascending {
		for i, j := 0, len(dates)-1; i < j; i, j = i+1, j-1 {
			dates[i], dates[j] = dates[j], dates[i]
		}
	}
	return dates
}

// HasRecordOn reports whether any of the four kinds has a record for the date.
func (l *WeatherLog) HasRecordOn(d Day) bool {
	key := d.ISO()
	if _, ok := l.Rainfall[key]; ok {
		return true
	}
	if _, ok := l.Temperature[key]; ok {
		return true
	}
	if _, ok := l.Watts[key]; ok {
		return true
	}
	_, ok := l.Comments[key]
	return ok
}

// HasAnyRecord reports whether at least one record exists across all kinds.
func (l *WeatherLog) HasAnyRecord() bool {
	return len(l.Rainfall)+len(l.Temperature)+len(l.Watts)+len(l.Comments) > 0
}

// Merge copies every record of other into l. On key collision the incoming
// record wins, which gives import-overwrites-existing semantics.
func (l *WeatherLog) Merge(other *WeatherLog) {
	for d, v := range other.Rainfall {
		l.Rainfall[d] = v
	}
	for d, v := range other.Temperature {
		l.Temperature[d] = v
	}
	for d, v := range other.Watts {
		l.Watts[d] = v
	}
	for d, v := range other.Comments {
		l.Comments[d] = v
	}
}

// Clone returns a deep copy of the log.
func (l *WeatherLog) Clone() *WeatherLog {
	c := NewWeatherLog()
	c.Merge(l)
	return c
}
