package model

import "time"

// DailyStats is the per-day rollup of call activity for one restaurant.
// One row exists per (restaurant, calendar date in the restaurant's
// timezone).  Counters are monotonically incremented as a synchronous side
// effect of LogCallOutcome and never decremented; the table is derived
// data and can be rebuilt from calls if ever required.  The struct is
// also the dashboard wire shape, hence the JSON tags.
type DailyStats struct {
	RestaurantID     uint64    `json:"restaurant_id"`     // daily_stats.restaurant_id
	StatDate         string    `json:"stat_date"`         // daily_stats.stat_date (YYYY-MM-DD)
	TotalCalls       int       `json:"total_calls"`       // daily_stats.total_calls
	CompletedCalls   int       `json:"completed_calls"`   // daily_stats.completed_calls
	FailedCalls      int       `json:"failed_calls"`      // daily_stats.failed_calls
	BookingsMade     int       `json:"bookings_made"`     // daily_stats.bookings_made
	CallbacksCreated int       `json:"callbacks_created"` // daily_stats.callbacks_created
	SafetyTriggers   int       `json:"safety_triggers"`   // daily_stats.safety_triggers
	UpdatedAt        time.Time `json:"updated_at"`        // daily_stats.updated_at
}

// HourlyStats is the per-hour-of-day call histogram companion to
// DailyStats, kept in its own table so increments stay a single upsert.
type HourlyStats struct {
	RestaurantID uint64 `json:"restaurant_id"` // daily_stats_hours.restaurant_id
	StatDate     string `json:"stat_date"`     // daily_stats_hours.stat_date
	HourOfDay    int    `json:"hour_of_day"`   // daily_stats_hours.hour_of_day (0-23, restaurant-local)
	Calls        int    `json:"calls"`         // daily_stats_hours.calls
}
