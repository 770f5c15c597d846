package schedule

import (
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// NormalizeTime extends "HH:MM" to "HH:MM:00". Any other length is returned unchanged.
func NormalizeTime(value string) string {
	if len(value) == 5 {
		return value + ":00"
	}
	return value
}

// ValidClockTime reports whether value is a zero-padded 24-hour HH:MM or HH:MM:SS.
func ValidClockTime(value string) bool {
	switch len(value) {
	case 5:
		_, err := time.Parse("15:04", value)
		return err == nil
	case 8:
		_, err := time.Parse("15:04:05", value)
		return err == nil
	default:
		return false
	}
}

func FormatDate(value time.Time, location *time.Location) string {
	if location == nil {
		location = time.UTC
	}
	return value.In(location).Format(DateLayout)
}

func ValidDate(value string) bool {
	_, err := time.Parse(DateLayout, strings.TrimSpace(value))
	return err == nil
}
