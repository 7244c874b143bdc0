// Package timestamp provides Unix-millisecond timestamp helpers.
//
// Wire payloads and health snapshots carry timestamps as int64 milliseconds
// since the Unix epoch (UTC). A value of 0 means "not set". These helpers keep
// the conversions in one place so the rest of the codebase never hand-rolls
// UnixMilli arithmetic.
package timestamp

import "time"

// Now returns the current time as Unix milliseconds.
func Now() int64 {
	return time.Now().UnixMilli()
}

// ToUnixMs converts a time.Time to Unix milliseconds.
func ToUnixMs(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

// FromUnixMs converts Unix milliseconds to time.Time.
// Returns the zero time if ms is 0.
func FromUnixMs(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}

// Format renders Unix milliseconds as an RFC3339 string for display.
// Returns the empty string if ms is 0.
func Format(ms int64) string {
	if ms == 0 {
		return ""
	}
	return time.UnixMilli(ms).UTC().Format(time.RFC3339)
}
