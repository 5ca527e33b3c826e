package timeutils

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire format for trip dates.
const DateLayout = "2006-01-02"

// ParseDate parses a trip date in YYYY-MM-DD form, normalized to UTC midnight.
// The backend stores UTC everywhere; conversion to the traveler's local time
// happens in the frontend.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return t.UTC(), nil
}

// TripDurationDays returns the inclusive number of calendar days between
// start and end (same day = 1).
func TripDurationDays(start, end time.Time) (int, error) {
	s := midnight(start)
	e := midnight(end)
	if e.Before(s) {
		return 0, fmt.Errorf("end date %s precedes start date %s", e.Format(DateLayout), s.Format(DateLayout))
	}
	return int(e.Sub(s).Hours()/24) + 1, nil
}

// TripDayDate returns the calendar date of the 1-based day n of a trip
// starting at start.
func TripDayDate(start time.Time, n int) (time.Time, error) {
	if n < 1 {
		return time.Time{}, fmt.Errorf("day number must be >= 1, got %d", n)
	}
	return midnight(start).AddDate(0, 0, n-1), nil
}

func midnight(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
