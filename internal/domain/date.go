package domain

import (
	"strings"
	"time"
)

const (
	// DayLayout is the format of date inputs and filters
	DayLayout = "2006-01-02"
	// ISOLayout matches the timestamps the backend stores (millisecond UTC)
	ISOLayout = "2006-01-02T15:04:05.000Z07:00"
	// DisplayLayout is the day/month/year form shown to users
	DisplayLayout = "2/1/2006"
)

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	DayLayout,
}

// ParseDay parses a YYYY-MM-DD input into midday UTC of that day, so that
// rendering in any timezone keeps the same calendar day.
func ParseDay(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrEmptyDate
	}
	d, err := time.Parse(DayLayout, s)
	if err != nil {
		return time.Time{}, &ValidationError{Field: "fecha", Message: "La fecha no es válida (use AAAA-MM-DD)"}
	}
	return MiddayUTC(d), nil
}

// MiddayUTC returns 12:00 UTC on the calendar day of t
func MiddayUTC(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 12, 0, 0, 0, time.UTC)
}

// ParseTimestamp accepts the timestamp shapes seen from the backend.
// Empty or unparseable input yields the zero time.
func ParseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// FormatISO renders t the way the backend expects dates to be sent
func FormatISO(t time.Time) string {
	return t.UTC().Format(ISOLayout)
}

// DayString returns the UTC calendar day of t as YYYY-MM-DD, or "" for zero
func DayString(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(DayLayout)
}

// FormatDisplay renders a day for humans, "N/A" when missing
func FormatDisplay(t time.Time) string {
	if t.IsZero() {
		return "N/A"
	}
	return t.UTC().Format(DisplayLayout)
}
