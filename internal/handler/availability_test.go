package handler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/voicetable/reservation-engine/internal/model"
)

func fridayDinner() *model.OpeningHours {
	// Fri 17:00 - 23:00
	return &model.OpeningHours{
		Weekday:     5,
		OpensAtMin:  17 * 60,
		ClosesAtMin: 23 * 60,
	}
}

func localTime(h, m int) time.Time {
	return time.Date(2026, time.September, 4, h, m, 0, 0, time.UTC)
}

func TestHoursCause(t *testing.T) {
	hours := fridayDinner()

	assert.Equal(t, "", hoursCause(localTime(19, 0), hours, 60))
	assert.Equal(t, "", hoursCause(localTime(17, 0), hours, 60), "opening time itself is bookable")
	assert.Equal(t, "", hoursCause(localTime(22, 0), hours, 60), "last seating boundary is bookable")

	assert.Equal(t, codeOutsideHours, hoursCause(localTime(16, 30), hours, 60))
	assert.Equal(t, codeOutsideHours, hoursCause(localTime(22, 45), hours, 60), "inside the last-seating cutoff")
	assert.Equal(t, codeOutsideHours, hoursCause(localTime(23, 30), hours, 60))

	closed := &model.OpeningHours{Weekday: 1, IsClosed: true}
	assert.Equal(t, codeRestaurantClosed, hoursCause(localTime(19, 0), closed, 60))
}

func TestHoursCauseNoOffset(t *testing.T) {
	hours := fridayDinner()
	assert.Equal(t, "", hoursCause(localTime(23, 0), hours, 0), "with no cutoff, close itself is the last seat")
	assert.Equal(t, codeOutsideHours, hoursCause(localTime(23, 1), hours, 0))
}

func TestSearchWindow(t *testing.T) {
	hours := fridayDinner()

	// Mid-service: full ±2h window.
	from, to := searchWindow(localTime(19, 30), hours, 60)
	assert.Equal(t, localTime(17, 30), from)
	assert.Equal(t, localTime(21, 30), to)

	// Near open: window clipped to opening time.
	from, to = searchWindow(localTime(18, 0), hours, 60)
	assert.Equal(t, localTime(17, 0), from)
	assert.Equal(t, localTime(20, 0), to)

	// Near close: window clipped to last seating.
	from, to = searchWindow(localTime(21, 30), hours, 60)
	assert.Equal(t, localTime(19, 30), from)
	assert.Equal(t, localTime(22, 0), to)
}

func TestNormalizePref(t *testing.T) {
	assert.Equal(t, model.SeatingIndoor, normalizePref(model.SeatingIndoor))
	assert.Equal(t, model.SeatingOutdoor, normalizePref(model.SeatingOutdoor))
	assert.Equal(t, "", normalizePref("any"))
	assert.Equal(t, "", normalizePref(""))
	assert.Equal(t, "", normalizePref("rooftop"))
}

func TestSpokenTime(t *testing.T) {
	// Friday, September 4 2026, 7:30 PM.
	got := spokenTime(localTime(19, 30))
	assert.Equal(t, "7:30 PM on Friday, September 4", got)
}

func TestNeedsLargePartyHandoff(t *testing.T) {
	rest := &model.Restaurant{MaxPartySize: 12, LargePartyThreshold: 8}

	assert.False(t, needsLargePartyHandoff(rest, 7))
	assert.True(t, needsLargePartyHandoff(rest, 8), "threshold itself hands off")
	assert.True(t, needsLargePartyHandoff(rest, 12))

	disabled := &model.Restaurant{MaxPartySize: 12}
	assert.False(t, needsLargePartyHandoff(disabled, 20), "zero threshold disables the handoff")
}
