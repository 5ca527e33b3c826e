package timeutils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2026-03-14")
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), got)

	got, err = ParseDate("  2026-03-14  ")
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), got)

	_, err = ParseDate("14/03/2026")
	assert.Error(t, err)

	_, err = ParseDate("")
	assert.Error(t, err)
}

func TestTripDurationDays(t *testing.T) {
	start := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

	days, err := TripDurationDays(start, start)
	assert.NoError(t, err)
	assert.Equal(t, 1, days)

	days, err = TripDurationDays(start, start.AddDate(0, 0, 4))
	assert.NoError(t, err)
	assert.Equal(t, 5, days)

	// Times within the day do not change the count.
	days, err = TripDurationDays(start.Add(23*time.Hour), start.AddDate(0, 0, 2).Add(1*time.Minute))
	assert.NoError(t, err)
	assert.Equal(t, 3, days)

	_, err = TripDurationDays(start, start.AddDate(0, 0, -1))
	assert.Error(t, err)
}

func TestTripDayDate(t *testing.T) {
	start := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

	first, err := TripDayDate(start, 1)
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), first)

	third, err := TripDayDate(start, 3)
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC), third)

	// Month rollover.
	rolled, err := TripDayDate(time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC), 2)
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), rolled)

	_, err = TripDayDate(start, 0)
	assert.Error(t, err)
}
