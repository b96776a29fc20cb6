package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func at(h, m int) time.Time {
	return time.Date(2026, time.March, 14, h, m, 0, 0, time.UTC)
}

func TestSnapToGrid(t *testing.T) {
	cases := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{"already on grid", at(19, 0), at(19, 0)},
		{"half hour on grid", at(19, 30), at(19, 30)},
		{"quarter past rounds up", at(19, 15), at(19, 30)},
		{"just before tie rounds down", at(19, 14), at(19, 0)},
		{"just past half rounds down", at(19, 44), at(19, 30)},
		{"three quarters rounds up", at(19, 45), at(20, 0)},
		{"crosses the hour", at(19, 50), at(20, 0)},
		{"crosses midnight", time.Date(2026, time.March, 14, 23, 45, 0, 0, time.UTC), time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, SnapToGrid(tc.in))
		})
	}
}

func TestSnapToGridIgnoresSeconds(t *testing.T) {
	// 19:14:59 is still closer to 19:00; seconds must not tip the tie.
	in := time.Date(2026, time.March, 14, 19, 14, 59, 0, time.UTC)
	assert.Equal(t, at(19, 0), SnapToGrid(in))
}

func TestMinutesIntoDay(t *testing.T) {
	assert.Equal(t, 0, MinutesIntoDay(at(0, 0)))
	assert.Equal(t, 19*60+30, MinutesIntoDay(at(19, 30)))
	assert.Equal(t, 23*60+59, MinutesIntoDay(at(23, 59)))

	// Evaluated in the time's own location, not UTC.
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata unavailable")
	}
	local := time.Date(2026, time.March, 14, 18, 0, 0, 0, ny)
	assert.Equal(t, 18*60, MinutesIntoDay(local))
}
