package services

import (
	"time"

	"github.com/terraincognita07/miffy/internal/schedule"
)

func DateAtLocation(value time.Time, location *time.Location) time.Time {
	if location == nil {
		location = time.UTC
	}
	localized := value.In(location)
	year, month, day := localized.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, location)
}

func DayRange(value time.Time, location *time.Location) (time.Time, time.Time) {
	start := DateAtLocation(value, location)
	return start, start.AddDate(0, 0, 1)
}

// MonthRange returns [first day of month, first day of next month) in location.
func MonthRange(year int, month time.Month, location *time.Location) (time.Time, time.Time) {
	if location == nil {
		location = time.UTC
	}
	start := time.Date(year, month, 1, 0, 0, 0, 0, location)
	return start, start.AddDate(0, 1, 0)
}

func TodayString(now time.Time, location *time.Location) string {
	return schedule.FormatDate(now, location)
}

func copyStringPointer(value *string) *string {
	if value == nil {
		return nil
	}
	copied := *value
	return &copied
}
