package timeutils

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"

	// MinimumLead is how far in the future a schedule must land. A target
	// exactly MinimumLead away is accepted.
	MinimumLead = 30 * time.Minute

	// ScheduleWindowDays bounds how far ahead the composer may book.
	ScheduleWindowDays = 7
)

// ParseDateTime combines a stored date ("2006-01-02") and time ("HH:MM")
// into a UTC instant. The backend stores and compares everything in UTC.
func ParseDateTime(date, clock string) (time.Time, error) {
	if date == "" || clock == "" {
		return time.Time{}, fmt.Errorf("date and time are required")
	}

	d, err := time.ParseInLocation(DateLayout, date, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", date, err)
	}

	parts := strings.Split(clock, ":")
	if len(parts) != 2 {
		return time.Time{}, fmt.Errorf("invalid time format %q, expected HH:MM", clock)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return time.Time{}, fmt.Errorf("invalid hour in %q", clock)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return time.Time{}, fmt.Errorf("invalid minute in %q", clock)
	}

	return time.Date(d.Year(), d.Month(), d.Day(), hour, minute, 0, 0, time.UTC), nil
}

// MeetsMinimumLead reports whether the target moment is at least MinimumLead
// after now. Exactly MinimumLead away counts as valid.
func MeetsMinimumLead(date, clock string, now time.Time) bool {
	target, err := ParseDateTime(date, clock)
	if err != nil {
		return false
	}
	return !target.Before(now.Add(MinimumLead))
}

// IsPast reports whether the stored (date,time) is at or before now. Parse
// failures count as past so broken rows never pass future-only gates.
func IsPast(date, clock string, now time.Time) bool {
	target, err := ParseDateTime(date, clock)
	if err != nil {
		return true
	}
	return !target.After(now)
}

// WithinWindow reports whether date falls inside [today, today+ScheduleWindowDays).
func WithinWindow(date string, now time.Time) bool {
	d, err := time.ParseInLocation(DateLayout, date, time.UTC)
	if err != nil {
		return false
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if d.Before(today) {
		return false
	}
	return d.Before(today.AddDate(0, 0, ScheduleWindowDays))
}
