package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FormatDayKey formats a time as a day key
func FormatDayKey(t time.Time) string {
	return fmt.Sprintf("%04d-%02d-%02d", t.Year(), t.Month(), t.Day())
}

// FormatMonthKey formats a time as a month key
func FormatMonthKey(t time.Time) string {
	return fmt.Sprintf("%04d-%02d", t.Year(), t.Month())
}

// ParseDayKey parses a day key back to a UTC midnight time
func ParseDayKey(dayKey string) (time.Time, error) {
	parts := strings.Split(dayKey, "-")
	if len(parts) != 3 {
		return time.Time{}, fmt.Errorf("invalid day key format: %s", dayKey)
	}

	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid year in day key: %s", dayKey)
	}

	month, err := strconv.Atoi(parts[1])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month in day key: %s", dayKey)
	}

	day, err := strconv.Atoi(parts[2])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid day in day key: %s", dayKey)
	}

	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), nil
}

// MonthKeyOfDayKey truncates a day key to its month key.
func MonthKeyOfDayKey(dayKey string) string {
	if len(dayKey) < 7 {
		return dayKey
	}
	return dayKey[:7]
}
