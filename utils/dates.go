package utils

import (
	"time"
)

const DateLayout = "2006-01-02"

// ParseDate parses a calendar date as UTC midnight. Full RFC 3339 timestamps,
// as sent by browser date pickers, are accepted and reduced to their date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err == nil {
		return t, nil
	}
	if ts, tsErr := time.Parse(time.RFC3339, s); tsErr == nil {
		return Midnight(ts), nil
	}
	return time.Time{}, err
}

// Midnight truncates t to its calendar date at UTC midnight.
func Midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
