package model

import (
	"time"

	"github.com/charmbracelet/log"
)

// ParseTimeSafe parses an RFC 3339 timestamp, falling back to a plain
// date (YYYY-MM-DD) and finally to the current time. Stored payloads
// must never fail to load over a bad date.
func ParseTimeSafe(value string) time.Time {
	if value == "" {
		return time.Now()
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t
	}
	if t, err := time.ParseInLocation("2006-01-02", value, time.Local); err == nil {
		return t
	}
	log.Warn("invalid date in storage, using current time", "value", value)
	return time.Now()
}
