package timeutil

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	// HoursPerDay is the nominal length of one working day.
	HoursPerDay = 8

	ISODayLayout     = "2006-01-02"
	CompactDayLayout = "20060102"
)

var durationPattern = regexp.MustCompile(`^(?:([0-9]+)d)?(?:([0-9]+)h)?$`)

func StartOfDay(value time.Time) time.Time {
	return time.Date(value.Year(), value.Month(), value.Day(), 0, 0, 0, 0, value.Location())
}

func SameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// Today returns the local start of the current day.
func Today() time.Time {
	return StartOfDay(time.Now())
}

// IsWorkingDay reports whether day is a weekday. Declared time off does not
// change the answer; it only reduces the day's quota.
func IsWorkingDay(day time.Time) bool {
	weekday := day.Weekday()
	return weekday != time.Saturday && weekday != time.Sunday
}

func NextDay(day time.Time) time.Time {
	return StartOfDay(day).AddDate(0, 0, 1)
}

// NextWorkingDay advances to the calendar successor and then past any weekend.
func NextWorkingDay(day time.Time) time.Time {
	next := NextDay(day)
	for !IsWorkingDay(next) {
		next = NextDay(next)
	}
	return next
}

func FormatISODay(day time.Time) string {
	return day.Format(ISODayLayout)
}

func FormatCompactDay(day time.Time) string {
	return day.Format(CompactDayLayout)
}

func ParseISODay(value string) (time.Time, error) {
	parsed, err := time.ParseInLocation(ISODayLayout, strings.TrimSpace(value), time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("could not parse %q using format YYYY-MM-DD", value)
	}
	return parsed, nil
}

// ParseDuration parses the compact "<N>d<N>h" grammar into hours. Days count
// as HoursPerDay hours. At least one component is required.
func ParseDuration(value string) (int, error) {
	trimmed := strings.TrimSpace(value)
	match := durationPattern.FindStringSubmatch(trimmed)
	if match == nil || (match[1] == "" && match[2] == "") {
		return 0, fmt.Errorf("could not parse %q: expected format xxdyyh, for example 8d4h for 8 days and 4 hours", value)
	}

	days, err := atoiOrZero(match[1])
	if err != nil {
		return 0, fmt.Errorf("parse days of %q: %w", value, err)
	}
	hours, err := atoiOrZero(match[2])
	if err != nil {
		return 0, fmt.Errorf("parse hours of %q: %w", value, err)
	}
	return days*HoursPerDay + hours, nil
}

// SplitHours converts an hour total into whole working days and leftover hours.
func SplitHours(total int) (days, hours int) {
	return total / HoursPerDay, total % HoursPerDay
}

func atoiOrZero(value string) (int, error) {
	if value == "" {
		return 0, nil
	}
	return strconv.Atoi(value)
}
