package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to string }{
		{ReservationConfirmed, ReservationSeated},
		{ReservationConfirmed, ReservationCancelled},
		{ReservationConfirmed, ReservationNoShow},
		{ReservationSeated, ReservationCompleted},
		{ReservationSeated, ReservationNoShow},
		{ReservationCancelled, ReservationConfirmed},
	}
	for _, tc := range allowed {
		assert.True(t, CanTransition(tc.from, tc.to), "%s -> %s should be allowed", tc.from, tc.to)
	}

	denied := []struct{ from, to string }{
		{ReservationConfirmed, ReservationCompleted}, // must be seated first
		{ReservationSeated, ReservationCancelled},    // seated parties don't cancel
		{ReservationCompleted, ReservationSeated},
		{ReservationCompleted, ReservationConfirmed},
		{ReservationNoShow, ReservationConfirmed},
		{ReservationCancelled, ReservationSeated},
		{ReservationConfirmed, ReservationConfirmed},
		{"bogus", ReservationSeated},
	}
	for _, tc := range denied {
		assert.False(t, CanTransition(tc.from, tc.to), "%s -> %s should be denied", tc.from, tc.to)
	}
}

func TestHoldsCapacity(t *testing.T) {
	assert.True(t, HoldsCapacity(ReservationConfirmed))
	assert.True(t, HoldsCapacity(ReservationSeated))
	assert.False(t, HoldsCapacity(ReservationCompleted))
	assert.False(t, HoldsCapacity(ReservationCancelled))
	assert.False(t, HoldsCapacity(ReservationNoShow))
}

func TestValidReservationStatus(t *testing.T) {
	for _, s := range []string{ReservationConfirmed, ReservationSeated, ReservationCompleted, ReservationCancelled, ReservationNoShow} {
		assert.True(t, ValidReservationStatus(s))
	}
	assert.False(t, ValidReservationStatus("pending"))
	assert.False(t, ValidReservationStatus(""))
	assert.False(t, ValidReservationStatus("CONFIRMED"))
}
