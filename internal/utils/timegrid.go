package utils

import "time"

// GridInterval is the booking grid step.  Every slot starts on a
// 30-minute boundary; requested times are snapped to the grid before any
// ledger lookup.
const GridInterval = 30 * time.Minute

// SnapToGrid normalizes t to the nearest 30-minute grid point.  Exact
// halves round up, so 19:15 becomes 19:30 and 19:44 becomes 19:30 while
// 19:45 becomes 20:00.  Sub-minute precision is discarded first so that
// seconds never tip the rounding direction.
func SnapToGrid(t time.Time) time.Time {
	t = t.Truncate(time.Minute)
	rem := t.Sub(t.Truncate(GridInterval))
	base := t.Truncate(GridInterval)
	if rem*2 >= GridInterval {
		return base.Add(GridInterval)
	}
	return base
}

// MinutesIntoDay returns how many minutes after local midnight t falls,
// evaluated in t's own location.
func MinutesIntoDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}
