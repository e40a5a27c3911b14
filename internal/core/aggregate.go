package core

import "time"

type (
	// MonthPoint is one day of a monthly series.
	MonthPoint struct {
		Day   int     `json:"day"`
		Value float64 `json:"value"`
	}

	// YearPoint is one month of a yearly series.
	YearPoint struct {
		Month time.Month `json:"month"`
		Total float64    `json:"total"`
	}

	// RangePoint is one day of a custom-range series.
	RangePoint struct {
		Date  string  `json:"date"`
		Value float64 `json:"value"`
	}

	// TemperaturePoint is one day of a monthly temperature series. Missing
	// readings stay nil so charts can show gaps instead of zeros.
	TemperaturePoint struct {
		Day         int `json:"day"`
		Temperature `json:"readings"`
	}
)

// numericValue reads the stored value for a numeric kind. Temperature and
// comment kinds contribute nothing to sums.
func (l *WeatherLog) numericValue(k Kind, d Day) float64 {
	switch k {
	case KindRainfall:
		return l.RainfallForDate(d)
	case KindWatt:
		return l.WattForDate(d)
	}
	return 0
}

// TotalForPeriod sums every record of a numeric kind whose date falls in
// [start, end] inclusive. Comparison is calendar-date based, never string
// based. An inverted range yields 0.
func (l *WeatherLog) TotalForPeriod(k Kind, start, end Day) float64 {
	if start.After(end.Time) {
		return 0
	}
	var keys map[string]float64
	switch k {
	case KindRainfall:
		keys = l.Rainfall
	case KindWatt:
		keys = l.Watts
	default:
		return 0
	}
	var total float64
	for key, v := range keys {
		d, err := ParseDay(key)
		if err != nil {
			continue
		}
		if !d.Before(start.Time) && !d.After(end.Time) {
			total += v
		}
	}
	return total
}

// SeriesForMonth returns one point per calendar day of the month, missing
// days resolving to 0.
func (l *WeatherLog) SeriesForMonth(k Kind, year int, month time.Month) []MonthPoint {
	days := DaysInMonth(year, month)
	points := make([]MonthPoint, 0, days)
	for i := 1; i <= days; i++ {
		points = append(points, MonthPoint{
			Day:   i,
			Value: l.numericValue(k, NewDay(year, month, i)),
		})
	}
	return points
}

// SeriesForYear returns twelve monthly totals for a numeric kind.
func (l *WeatherLog) SeriesForYear(k Kind, year int) []YearPoint {
	points := make([]YearPoint, 0, 12)
	for m := time.January; m <= time.December; m++ {
		start := NewDay(year, m, 1)
		end := NewDay(year, m, DaysInMonth(year, m))
		points = append(points, YearPoint{Month: m, Total: l.TotalForPeriod(k, start, end)})
	}
	return points
}

// SeriesForRange returns one point per calendar day in [start, end]
// inclusive, in chronological order. An inverted range yields no points.
func (l *WeatherLog) SeriesForRange(k Kind, start, end Day) []RangePoint {
	var points []RangePoint
	for d := start; !d.After(end.Time); d = d.Next() {
		points = append(points, RangePoint{Date: d.ISO(), Value: l.numericValue(k, d)})
	}
	return points
}

// TemperatureSeriesForMonth returns the morning/afternoon pairs for each
// calendar day of the month.
func (l *WeatherLog) TemperatureSeriesForMonth(year int, month time.Month) []TemperaturePoint {
	days := DaysInMonth(year, month)
	points := make([]TemperaturePoint, 0, days)
	for i := 1; i <= days; i++ {
		points = append(points, TemperaturePoint{
			Day:         i,
			Temperature: l.TemperatureForDate(NewDay(year, month, i)),
		})
	}
	return points
}
