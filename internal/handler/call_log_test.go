package handler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voicetable/reservation-engine/internal/model"
	"github.com/voicetable/reservation-engine/internal/repository"
)

func TestParseOptionalTime(t *testing.T) {
	assert.Nil(t, parseOptionalTime(""))
	assert.Nil(t, parseOptionalTime("   "))
	assert.Nil(t, parseOptionalTime("not a time"))
	assert.Nil(t, parseOptionalTime("2026-09-04"), "date without time is rejected")

	got := parseOptionalTime("2026-09-04T19:30:00-04:00")
	require.NotNil(t, got)
	assert.Equal(t, time.UTC, got.Location())
	assert.Equal(t, 23, got.Hour(), "converted to UTC")
}

func TestStatsDelta(t *testing.T) {
	up := &repository.CallUpsert{Status: model.CallCompleted, Outcome: model.OutcomeBooked}
	d := statsDelta(up, 19)
	assert.Equal(t, repository.StatsDelta{Completed: 1, BookingMade: 1, HourOfDay: 19}, d)

	up = &repository.CallUpsert{Status: model.CallFailed, Outcome: model.OutcomeCallback}
	d = statsDelta(up, 12)
	assert.Equal(t, repository.StatsDelta{Failed: 1, CallbackCreated: 1, HourOfDay: 12}, d)

	up = &repository.CallUpsert{Status: model.CallAbandoned}
	d = statsDelta(up, 8)
	assert.Equal(t, repository.StatsDelta{Failed: 1, HourOfDay: 8}, d)

	// Safety counts whether flagged explicitly or implied by the outcome.
	up = &repository.CallUpsert{Status: model.CallCompleted, SafetyFlag: true}
	assert.Equal(t, 1, statsDelta(up, 0).SafetyTriggered)
	up = &repository.CallUpsert{Status: model.CallCompleted, Outcome: model.OutcomeSafetyHanded}
	assert.Equal(t, 1, statsDelta(up, 0).SafetyTriggered)
}

func TestCallLocalDateHour(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata unavailable")
	}

	// 23:30 UTC on the 4th is 19:30 on the 4th in New York.
	started := time.Date(2026, time.September, 4, 23, 30, 0, 0, time.UTC)
	up := &repository.CallUpsert{StartedAt: &started}
	date, hour := callLocalDateHour(up, ny)
	assert.Equal(t, "2026-09-04", date)
	assert.Equal(t, 19, hour)

	// 02:00 UTC on the 5th is still the evening of the 4th locally; the
	// stat bucket follows the restaurant's calendar.
	late := time.Date(2026, time.September, 5, 2, 0, 0, 0, time.UTC)
	up = &repository.CallUpsert{StartedAt: &late}
	date, hour = callLocalDateHour(up, ny)
	assert.Equal(t, "2026-09-04", date)
	assert.Equal(t, 22, hour)

	// End time is the fallback when start was never reported.
	up = &repository.CallUpsert{EndedAt: &started}
	date, _ = callLocalDateHour(up, ny)
	assert.Equal(t, "2026-09-04", date)
}
