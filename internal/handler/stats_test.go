package handler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsRangeDefaults(t *testing.T) {
	now := time.Date(2026, time.March, 10, 23, 30, 0, 0, time.UTC)

	from, to, err := statsRange("", "", now)
	require.NoError(t, err)
	assert.Equal(t, "2026-03-04", from)
	assert.Equal(t, "2026-03-10", to)

	// An explicit end date anchors the default start.
	from, to, err = statsRange("", "2026-03-05", now)
	require.NoError(t, err)
	assert.Equal(t, "2026-02-27", from)
	assert.Equal(t, "2026-03-05", to)
}

func TestStatsRangeLocalMidnight(t *testing.T) {
	loc, err := time.LoadLocation("Pacific/Auckland")
	if err != nil {
		t.Skip("tzdata unavailable")
	}
	// 11:30 UTC is already the next calendar day in Auckland; the default
	// "today" must follow the local clock the rollups are keyed by.
	now := time.Date(2026, time.March, 10, 11, 30, 0, 0, time.UTC).In(loc)

	_, to, err := statsRange("", "", now)
	require.NoError(t, err)
	assert.Equal(t, "2026-03-11", to)
}

func TestStatsRangeSwapsAndRejects(t *testing.T) {
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

	from, to, err := statsRange("2026-03-08", "2026-03-02", now)
	require.NoError(t, err)
	assert.Equal(t, "2026-03-02", from)
	assert.Equal(t, "2026-03-08", to)

	_, _, err = statsRange("not-a-date", "2026-03-08", now)
	assert.Error(t, err)
	_, _, err = statsRange("", "03/08/2026", now)
	assert.Error(t, err)
}
