package utils

import (
	"strings"
	"time"
)

// timestampLayouts are tried in order when a timestamp arrives as text
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp converts a stored timestamp into a time.Time. It accepts
// time.Time, ISO-8601 strings, and store-native temporal values that expose a
// Time() method. Zone-less values are read as UTC.
func ParseTimestamp(v any) (time.Time, bool) {
	switch t := v.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		return t, !t.IsZero()
	case *time.Time:
		if t == nil {
			return time.Time{}, false
		}
		return *t, !t.IsZero()
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range timestampLayouts {
			if parsed, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
				return parsed, true
			}
		}
		return time.Time{}, false
	case interface{ Time() time.Time }:
		converted := t.Time()
		return converted, !converted.IsZero()
	default:
		return time.Time{}, false
	}
}
