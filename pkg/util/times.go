package util

import (
	"fmt"
	"time"
)

// TimeLayout is the canonical timestamp format used across API payloads
// and the database.
const TimeLayout = "2006-01-02 15:04:05"

var parseLayouts = []string{
	time.RFC3339,
	TimeLayout,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseTime parses a timestamp in any of the accepted layouts.
func ParseTime(value string) (time.Time, error) {
	for _, layout := range parseLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", value)
}

// ParseTimeDefault parses value, returning fallback when value is empty
// or unparseable.
func ParseTimeDefault(value string, fallback time.Time) time.Time {
	if value == "" {
		return fallback
	}
	t, err := ParseTime(value)
	if err != nil {
		return fallback
	}
	return t
}

// FormatTime renders t in the canonical layout.
func FormatTime(t time.Time) string {
	return t.Format(TimeLayout)
}
