// Package utils provides utility functions for the AEMET client.
package utils //nolint:revive // utils is a common and acceptable package name

import (
	"fmt"
	"strings"
	"time"
)

// TimestampLayout is the layout AEMET uses for "elaborado" and "fecha"
const TimestampLayout = "2006-01-02T15:04:05"

// ParseLocalTimestamp parses an AEMET timestamp, which carries no offset,
// in loc. A nil loc means UTC.
func ParseLocalTimestamp(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(TimestampLayout, strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid AEMET timestamp %q: %w", s, err)
	}
	return t, nil
}

// SameDay reports whether a and b fall on the same calendar day in a's location
func SameDay(a, b time.Time) bool {
	b = b.In(a.Location())
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}
