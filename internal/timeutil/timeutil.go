package timeutil

import (
	"fmt"
	"strings"
	"time"
)

// Source feeds hand back dates in anything from ISO-8601 with a trailing Z to
// bare RFC-822; the ladder mirrors what the providers actually emit.
var layouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
}

// EnsureTime parses v into a timezone-aware UTC timestamp. Naive values are
// interpreted as UTC. An empty or unparsable value is an error; callers treat
// that as a per-item data failure.
func EnsureTime(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparsable timestamp %q", v)
}

// IsRecent reports whether t is within maxAgeDays of now. A zero t is never
// recent.
func IsRecent(t time.Time, maxAgeDays int) bool {
	return IsRecentAt(t, maxAgeDays, time.Now().UTC())
}

// IsRecentAt is IsRecent against an explicit reference time, for testing and
// for batch runs that pin one "now" per invocation.
func IsRecentAt(t time.Time, maxAgeDays int, now time.Time) bool {
	if t.IsZero() {
		return false
	}
	cutoff := now.UTC().AddDate(0, 0, -maxAgeDays)
	return !t.UTC().Before(cutoff)
}
