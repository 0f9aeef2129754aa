package planner

import (
	"strings"
	"time"
)

// DayLayout is the calendar-day format used for Task.Date and day queries.
// Days compare correctly as plain strings in this layout.
const DayLayout = "2006-01-02"

const clockLayout = "15:04"

// layouts without a zone are read as local wall-clock time
var localLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.999999999",
	DayLayout,
}

// ParseInstant parses a dueDate/endDateTime value. ok is false for empty or
// malformed input, which callers treat as the field being absent.
func ParseInstant(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.In(time.Local), true
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// DayOf truncates a date-time string to its local calendar day.
func DayOf(s string) (string, bool) {
	t, ok := ParseInstant(s)
	if !ok {
		return "", false
	}
	return t.Format(DayLayout), true
}

// ValidDay reports whether s is a YYYY-MM-DD calendar day.
func ValidDay(s string) bool {
	_, err := time.Parse(DayLayout, s)
	return err == nil
}

// FormatDay renders t as a calendar day in its own location.
func FormatDay(t time.Time) string {
	return t.Format(DayLayout)
}

// AnchorDay picks the anchor day for a task being saved: the local day of
// dueDate when it parses, fallback otherwise.
func AnchorDay(fallback, dueDate string) string {
	if day, ok := DayOf(dueDate); ok {
		return day
	}
	return fallback
}

// startOfWeek returns local midnight of the Monday on or before t.
func startOfWeek(t time.Time) time.Time {
	y, m, d := t.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	offset := (int(midnight.Weekday()) + 6) % 7 // Monday=0
	return midnight.AddDate(0, 0, -offset)
}

// endOfWeek returns local midnight of the Sunday on or after t.
func endOfWeek(t time.Time) time.Time {
	return startOfWeek(t).AddDate(0, 0, 6)
}
