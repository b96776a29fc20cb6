package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/voicetable/reservation-engine/internal/model"
)

// StatsRepo maintains the per-day activity rollup.  Every mutation is a
// single upsert-and-increment statement keyed by (restaurant, local
// date), never a read-modify-write pair, so concurrent call completions
// cannot lose updates.  Counters only ever grow.
type StatsRepo struct {
	db *sql.DB
}

// NewStatsRepo returns a new StatsRepo bound to the given database.
func NewStatsRepo(db *sql.DB) *StatsRepo { return &StatsRepo{db: db} }

// StatsDelta is one call outcome's contribution to the daily counters.
// Fields are 0/1 flags except HourOfDay, which feeds the histogram.
type StatsDelta struct {
	Completed       int
	Failed          int
	BookingMade     int
	CallbackCreated int
	SafetyTriggered int
	HourOfDay       int // restaurant-local hour of the call, -1 to skip the histogram
}

// BumpTx applies one call's outcome to the daily counters inside the
// caller's transaction.  The row is created on first touch; both the
// daily row and the hourly histogram row use the same atomic
// upsert-increment pattern.
func (r *StatsRepo) BumpTx(ctx context.Context, tx *sql.Tx, restaurantID uint64, localDate string, d StatsDelta) error {
	const q = `INSERT INTO daily_stats
	           (restaurant_id, stat_date, total_calls, completed_calls, failed_calls,
	            bookings_made, callbacks_created, safety_triggers)
	           VALUES (?, ?, 1, ?, ?, ?, ?, ?)
	           ON DUPLICATE KEY UPDATE
	             total_calls = total_calls + 1,
	             completed_calls = completed_calls + VALUES(completed_calls),
	             failed_calls = failed_calls + VALUES(failed_calls),
	             bookings_made = bookings_made + VALUES(bookings_made),
	             callbacks_created = callbacks_created + VALUES(callbacks_created),
	             safety_triggers = safety_triggers + VALUES(safety_triggers)`
	if _, err := tx.ExecContext(ctx, q, restaurantID, localDate,
		d.Completed, d.Failed, d.BookingMade, d.CallbackCreated, d.SafetyTriggered); err != nil {
		return err
	}
	if d.HourOfDay < 0 {
		return nil
	}
	const hq = `INSERT INTO daily_stats_hours (restaurant_id, stat_date, hour_of_day, calls)
	            VALUES (?, ?, ?, 1)
	            ON DUPLICATE KEY UPDATE calls = calls + 1`
	_, err := tx.ExecContext(ctx, hq, restaurantID, localDate, d.HourOfDay)
	return err
}

// ListRange returns daily rollups for [fromDate, toDate] inclusive,
// newest first.  Dashboard read; never mutates.
func (r *StatsRepo) ListRange(ctx context.Context, restaurantID uint64, fromDate, toDate string) ([]model.DailyStats, error) {
	const q = `SELECT restaurant_id, stat_date, total_calls, completed_calls, failed_calls,
	                  bookings_made, callbacks_created, safety_triggers, updated_at
	           FROM daily_stats
	           WHERE restaurant_id = ? AND stat_date BETWEEN ? AND ?
	           ORDER BY stat_date DESC`
	rows, err := r.db.QueryContext(ctx, q, restaurantID, fromDate, toDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.DailyStats, 0)
	for rows.Next() {
		var s model.DailyStats
		var statDate time.Time
		if err := rows.Scan(
			&s.RestaurantID, &statDate, &s.TotalCalls, &s.CompletedCalls, &s.FailedCalls,
			&s.BookingsMade, &s.CallbacksCreated, &s.SafetyTriggers, &s.UpdatedAt,
		); err != nil {
			return nil, err
		}
		s.StatDate = statDate.Format("2006-01-02")
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Hours returns the hourly call histogram for one local date.
func (r *StatsRepo) Hours(ctx context.Context, restaurantID uint64, statDate string) ([]model.HourlyStats, error) {
	const q = `SELECT restaurant_id, stat_date, hour_of_day, calls
	           FROM daily_stats_hours
	           WHERE restaurant_id = ? AND stat_date = ?
	           ORDER BY hour_of_day ASC`
	rows, err := r.db.QueryContext(ctx, q, restaurantID, statDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.HourlyStats, 0)
	for rows.Next() {
		var h model.HourlyStats
		var statDate time.Time
		if err := rows.Scan(&h.RestaurantID, &statDate, &h.HourOfDay, &h.Calls); err != nil {
			return nil, err
		}
		h.StatDate = statDate.Format("2006-01-02")
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
