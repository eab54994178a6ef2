// Package utils provides utility functions for the application.
package utils

import (
	"time"
)

// UTCNow returns the current time in UTC
func UTCNow() time.Time {
	return time.Now().UTC()
}

// UTCNowPtr returns a pointer to the current time in UTC
func UTCNowPtr() *time.Time {
	now := UTCNow()
	return &now
}

// UTCNowAdd returns the current UTC time plus the given duration
func UTCNowAdd(d time.Duration) time.Time {
	return UTCNow().Add(d)
}

// IsExpired checks if the given time is in the past (expired)
func IsExpired(t time.Time) bool {
	return UTCNow().After(t)
}

// Today returns midnight UTC of the current day. Daily analytics buckets are
// keyed off this value so series labels line up with DateKey.
func Today() time.Time {
	return UTCNow().Truncate(24 * time.Hour)
}

// DateKey formats a timestamp as the calendar-day bucket key (YYYY-MM-DD, UTC).
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
