package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/voicetable/reservation-engine/internal/model"
)

// TimeSlotRepo owns the capacity ledger: per-restaurant, per-time,
// per-seating-area slots with total/booked counters.  Read paths never
// lock; the booking path acquires a slot with FOR UPDATE SKIP LOCKED so
// that concurrent bookers fail fast into a conflict instead of queuing
// behind each other.  All timestamps are stored in UTC.
type TimeSlotRepo struct {
	db *sql.DB
}

// NewTimeSlotRepo constructs a TimeSlotRepo with the given DB handle.
func NewTimeSlotRepo(db *sql.DB) *TimeSlotRepo { return &TimeSlotRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions.
func (r *TimeSlotRepo) DB() *sql.DB { return r.db }

const slotColumns = `id, restaurant_id, starts_at, seating_area, total_capacity,
	booked_capacity, is_blocked, created_at, updated_at`

func scanSlot(row interface{ Scan(...interface{}) error }) (*model.TimeSlot, error) {
	var s model.TimeSlot
	err := row.Scan(
		&s.ID, &s.RestaurantID, &s.StartsAt, &s.SeatingArea, &s.TotalCapacity,
		&s.BookedCapacity, &s.IsBlocked, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// FindExact returns the best bookable slot at exactly the given grid time
// with enough free capacity for the party, or nil when none qualifies.
// A slot in the preferred seating area wins over other areas; ties are
// broken by highest remaining capacity.  Pass pref = "" for no
// preference.  This is a plain read and never takes locks.
func (r *TimeSlotRepo) FindExact(ctx context.Context, restaurantID uint64, at time.Time, pref string, partySize int) (*model.TimeSlot, error) {
	const q = `SELECT ` + slotColumns + `
	           FROM time_slots
	           WHERE restaurant_id = ? AND starts_at = ? AND is_blocked = 0
	             AND total_capacity - booked_capacity >= ?
	           ORDER BY (seating_area = ?) DESC,
	                    total_capacity - booked_capacity DESC,
	                    id ASC
	           LIMIT 1`
	slot, err := scanSlot(r.db.QueryRowContext(ctx, q,
		restaurantID, at.UTC().Format("2006-01-02 15:04:05"), partySize, pref))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if pref != "" && slot.SeatingArea != pref {
		// an exact-time hit in another area is an alternative, not a match
		return nil, nil
	}
	return slot, nil
}

// FindWindow returns up to limit candidate slots inside [from, to] with
// enough free capacity for the party, excluding blocked slots and the
// preferred-area slot at the exact grid point, which FindExact already
// answered.  An exact-time slot in another seating area stays in: it
// ranks first by distance zero, so "your time, different table" beats
// "your table, different time".  Candidates are ranked by absolute time
// distance from the requested time, then preferred seating area, then
// earliest start; ids break remaining ties so repeated queries never
// reshuffle.  Read-only and lock-free.
func (r *TimeSlotRepo) FindWindow(ctx context.Context, restaurantID uint64, requested, from, to time.Time, pref string, partySize, limit int) ([]model.TimeSlot, error) {
	const q = `SELECT ` + slotColumns + `
	           FROM time_slots
	           WHERE restaurant_id = ? AND is_blocked = 0
	             AND starts_at BETWEEN ? AND ?
	             AND NOT (starts_at = ? AND seating_area = ?)
	             AND total_capacity - booked_capacity >= ?
	           ORDER BY ABS(TIMESTAMPDIFF(MINUTE, ?, starts_at)) ASC,
	                    (seating_area = ?) DESC,
	                    starts_at ASC,
	                    id ASC
	           LIMIT ?`
	ts := requested.UTC().Format("2006-01-02 15:04:05")
	rows, err := r.db.QueryContext(ctx, q,
		restaurantID,
		from.UTC().Format("2006-01-02 15:04:05"),
		to.UTC().Format("2006-01-02 15:04:05"),
		ts, pref, partySize, ts, pref, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.TimeSlot
	for rows.Next() {
		s, err := scanSlot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// AcquireTx locks a slot row for the duration of the transaction using
// FOR UPDATE SKIP LOCKED.  When the row is currently locked by a
// concurrent booking the select simply skips it, and AcquireTx reports
// ErrSlotConflict so the caller can fail fast instead of blocking a live
// phone conversation.  A blocked or missing slot yields ErrSlotNotFound.
func (r *TimeSlotRepo) AcquireTx(ctx context.Context, tx *sql.Tx, restaurantID, slotID uint64) (*model.TimeSlot, error) {
	const q = `SELECT ` + slotColumns + `
	           FROM time_slots
	           WHERE id = ? AND restaurant_id = ? AND is_blocked = 0
	           FOR UPDATE SKIP LOCKED`
	slot, err := scanSlot(tx.QueryRowContext(ctx, q, slotID, restaurantID))
	if err == nil {
		return slot, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	// Distinguish "locked by someone else" from "does not exist": a plain
	// read sees the row either way because MySQL reads are consistent
	// snapshots.
	const exists = `SELECT COUNT(*) FROM time_slots WHERE id = ? AND restaurant_id = ? AND is_blocked = 0`
	var n int
	if err := tx.QueryRowContext(ctx, exists, slotID, restaurantID).Scan(&n); err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, ErrSlotConflict
	}
	return nil, ErrSlotNotFound
}

// AcquireByTimeTx is AcquireTx for callers that located the slot by grid
// time and seating area rather than id (CreateBooking without a prior
// availability check).
func (r *TimeSlotRepo) AcquireByTimeTx(ctx context.Context, tx *sql.Tx, restaurantID uint64, at time.Time, area string) (*model.TimeSlot, error) {
	ts := at.UTC().Format("2006-01-02 15:04:05")
	const q = `SELECT ` + slotColumns + `
	           FROM time_slots
	           WHERE restaurant_id = ? AND starts_at = ? AND seating_area = ? AND is_blocked = 0
	           FOR UPDATE SKIP LOCKED`
	slot, err := scanSlot(tx.QueryRowContext(ctx, q, restaurantID, ts, area))
	if err == nil {
		return slot, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	const exists = `SELECT COUNT(*) FROM time_slots
	                WHERE restaurant_id = ? AND starts_at = ? AND seating_area = ? AND is_blocked = 0`
	var n int
	if err := tx.QueryRowContext(ctx, exists, restaurantID, ts, area).Scan(&n); err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, ErrSlotConflict
	}
	return nil, ErrSlotNotFound
}

// AdjustBookedTx moves booked_capacity by delta inside the transaction
// that owns the slot lock.  The WHERE clause re-checks the capacity
// bounds so booked can never exceed total or go negative even if the
// caller's arithmetic is stale; a guarded miss returns ErrSlotConflict.
func (r *TimeSlotRepo) AdjustBookedTx(ctx context.Context, tx *sql.Tx, slotID uint64, delta int) error {
	const q = `UPDATE time_slots
	           SET booked_capacity = booked_capacity + ?
	           WHERE id = ?
	             AND booked_capacity + ? >= 0
	             AND booked_capacity + ? <= total_capacity`
	res, err := tx.ExecContext(ctx, q, delta, slotID, delta, delta)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrSlotConflict
	}
	return nil
}
