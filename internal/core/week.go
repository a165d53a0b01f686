package core

import (
	"fmt"
	"time"
)

// ISODate is the calendar date layout used everywhere in the ledger.
// ISO 8601 dates compare correctly as plain strings, which is what the
// ledger's range queries rely on.
const ISODate = "2006-01-02"

// Today returns the current date in ISO form.
func Today() string {
	return time.Now().Format(ISODate)
}

// ParseISODate parses a YYYY-MM-DD string.
func ParseISODate(s string) (time.Time, error) {
	t, err := time.Parse(ISODate, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, ErrInvalidDate)
	}
	return t, nil
}

// CalendarDate builds an ISO date from day/month/year components, rejecting
// impossible dates such as 31/04 or 30/02.
func CalendarDate(day, month, year int) (string, error) {
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes overflow (Apr 31 -> May 1), so a round-trip
	// mismatch means the components were not a real date.
	if t.Day() != day || int(t.Month()) != month || t.Year() != year {
		return "", fmt.Errorf("%02d/%02d/%04d: %w", day, month, year, ErrInvalidDate)
	}
	return t.Format(ISODate), nil
}

// WeekBounds returns the Monday and Sunday (inclusive) of the week holding
// the reference date.
func WeekBounds(ref time.Time) (monday, sunday string) {
	offset := (int(ref.Weekday()) + 6) % 7 // Monday-indexed weekday
	start := ref.AddDate(0, 0, -offset)
	end := start.AddDate(0, 0, 6)
	return start.Format(ISODate), end.Format(ISODate)
}
