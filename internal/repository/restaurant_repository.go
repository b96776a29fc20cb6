package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/voicetable/reservation-engine/internal/model"
)

// RestaurantRepo provides read access to restaurants, their weekly
// opening hours and date-level blocks.  The engine never mutates
// restaurant configuration; that is owned by the provisioning tooling.
type RestaurantRepo struct {
	db *sql.DB
}

// NewRestaurantRepo constructs a RestaurantRepo with the given DB handle.
func NewRestaurantRepo(db *sql.DB) *RestaurantRepo { return &RestaurantRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions.
func (r *RestaurantRepo) DB() *sql.DB { return r.db }

// GetByID loads a restaurant and its typed settings.  Returns
// ErrRestaurantNotFound when no row exists.
func (r *RestaurantRepo) GetByID(ctx context.Context, id uint64) (*model.Restaurant, error) {
	const q = `SELECT id, name, timezone, max_party_size, large_party_threshold,
	                  last_seating_offset_min, booking_horizon_days, created_at, updated_at
	           FROM restaurants WHERE id = ?`
	var rest model.Restaurant
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&rest.ID, &rest.Name, &rest.Timezone, &rest.MaxPartySize, &rest.LargePartyThreshold,
		&rest.LastSeatingOffsetMin, &rest.BookingHorizonDays, &rest.CreatedAt, &rest.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRestaurantNotFound
		}
		return nil, err
	}
	return &rest, nil
}

// HoursForWeekday returns the service window for one weekday.  A missing
// row is treated as closed, so restaurants only need rows for days they
// actually open.
func (r *RestaurantRepo) HoursForWeekday(ctx context.Context, restaurantID uint64, weekday int) (*model.OpeningHours, error) {
	const q = `SELECT restaurant_id, weekday, opens_at, closes_at, is_closed
	           FROM restaurant_hours WHERE restaurant_id = ? AND weekday = ?`
	var h model.OpeningHours
	err := r.db.QueryRowContext(ctx, q, restaurantID, weekday).Scan(
		&h.RestaurantID, &h.Weekday, &h.OpensAtMin, &h.ClosesAtMin, &h.IsClosed,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &model.OpeningHours{RestaurantID: restaurantID, Weekday: weekday, IsClosed: true}, nil
		}
		return nil, err
	}
	return &h, nil
}

// BlockForDate returns the date-level block covering the given local date
// (YYYY-MM-DD), or nil when the date is not blocked.
func (r *RestaurantRepo) BlockForDate(ctx context.Context, restaurantID uint64, localDate string) (*model.DateBlock, error) {
	const q = `SELECT id, restaurant_id, block_date, reason, created_at
	           FROM restaurant_blocks WHERE restaurant_id = ? AND block_date = ?`
	var b model.DateBlock
	err := r.db.QueryRowContext(ctx, q, restaurantID, localDate).Scan(
		&b.ID, &b.RestaurantID, &b.BlockDate, &b.Reason, &b.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}
