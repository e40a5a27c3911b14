package core

import (
	"errors"
	"time"
)

// ISODate is the storage and wire format for calendar dates.
const ISODate = "2006-01-02"

var ErrInvalidDate = errors.New("invalid date")

type (
	// Day is a timezone-naive calendar date. The embedded time is always
	// midnight UTC so that comparisons and arithmetic never shift across
	// day boundaries.
	Day struct {
		time.Time
	}
)

// NewDay creates a Day from year, month, day.
func NewDay(year int, month time.Month, day int) Day {
	return Day{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDay parses an ISO YYYY-MM-DD string into a Day.
func ParseDay(s string) (Day, error) {
	t, err := time.ParseInLocation(ISODate, s, time.UTC)
	if err != nil {
		return Day{}, ErrInvalidDate
	}
	return Day{Time: t}, nil
}

// Today returns the current calendar date.
func Today() Day {
	y, m, d := time.Now().Date()
	return NewDay(y, m, d)
}

// ISO returns the canonical YYYY-MM-DD representation.
func (d Day) ISO() string {
	return d.Format(ISODate)
}

// Next returns the following calendar day.
func (d Day) Next() Day {
	return Day{Time: d.AddDate(0, 0, 1)}
}

// DaysInMonth returns the number of calendar days in the given month.
func DaysInMonth(year int, month time.Month) int {
	// Day zero of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func (d Day) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}
