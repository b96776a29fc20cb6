package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPriorityForCause(t *testing.T) {
	cases := []struct {
		cause string
		want  int
	}{
		{CauseAllergySafety, 1},
		{CauseSafetyConcern, 1},
		{CauseLargeParty, 2},
		{CauseSystemError, 3},
		{CauseSystemTimeout, 3},
		{CauseBookingConflict, 4},
		{CauseGeneralInquiry, 5},
		{"SOMETHING_NEW", 5},
		{"", 5},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, PriorityForCause(tc.cause), "cause %q", tc.cause)
	}
}

func TestSafetyOutranksEverything(t *testing.T) {
	safety := PriorityForCause(CauseAllergySafety)
	for _, other := range []string{CauseLargeParty, CauseSystemError, CauseBookingConflict, CauseGeneralInquiry} {
		assert.Less(t, safety, PriorityForCause(other))
	}
}

func TestUrgentThreshold(t *testing.T) {
	assert.LessOrEqual(t, PriorityForCause(CauseSafetyConcern), UrgentPriority)
	assert.LessOrEqual(t, PriorityForCause(CauseLargeParty), UrgentPriority)
	assert.Greater(t, PriorityForCause(CauseSystemError), UrgentPriority)
	assert.Greater(t, PriorityForCause(CauseGeneralInquiry), UrgentPriority)
}
