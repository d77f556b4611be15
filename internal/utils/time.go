package utils

import (
	"fmt"
	"time"

	"github.com/julianstephens/habitual/internal/constants"
)

// LoadLocation loads a timezone location from an IANA timezone name.
// If the timezone is "Local" or empty, it returns the system's local timezone.
func LoadLocation(timezone string) (*time.Location, error) {
	if timezone == "" || timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(timezone)
}

// FormatDate formats t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(constants.DateFormat)
}

// ParseDate parses a YYYY-MM-DD string as a UTC calendar day.
func ParseDate(dateStr string) (time.Time, error) {
	return time.Parse(constants.DateFormat, dateStr)
}

// NormalizeDate accepts either a calendar day or an RFC3339 timestamp and
// returns the calendar day part. Timestamps keep the day they were written
// in, they are not converted to another zone.
func NormalizeDate(s string) (string, error) {
	if len(s) >= len(constants.DateFormat) {
		day := s[:len(constants.DateFormat)]
		if _, err := ParseDate(day); err == nil {
			return day, nil
		}
	}
	return "", fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", s)
}

// AddDays shifts a YYYY-MM-DD string by n calendar days.
func AddDays(dateStr string, n int) (string, error) {
	d, err := ParseDate(dateStr)
	if err != nil {
		return "", err
	}
	return FormatDate(d.AddDate(0, 0, n)), nil
}

// DaysBetween returns the number of calendar days from a to b (b - a).
func DaysBetween(a, b string) (int, error) {
	da, err := ParseDate(a)
	if err != nil {
		return 0, err
	}
	db, err := ParseDate(b)
	if err != nil {
		return 0, err
	}
	// Both are UTC midnights, so the difference is an exact multiple of 24h
	return int(db.Sub(da).Hours() / 24), nil
}

// ValidateTimezone checks if the timezone name is valid.
func ValidateTimezone(timezone string) bool {
	if timezone == "" || timezone == "Local" {
		return true
	}
	_, err := time.LoadLocation(timezone)
	return err == nil
}
