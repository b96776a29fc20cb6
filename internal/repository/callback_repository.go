package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/voicetable/reservation-engine/internal/model"
)

// CallbackRepo persists the escalation queue.  Pending callbacks are the
// staff work queue; ordering by priority, then age, then id is the
// contract the dashboard depends on and must never reshuffle between
// refreshes.
type CallbackRepo struct {
	db *sql.DB
}

// NewCallbackRepo returns a new CallbackRepo bound to the given database.
func NewCallbackRepo(db *sql.DB) *CallbackRepo { return &CallbackRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions.
func (r *CallbackRepo) DB() *sql.DB { return r.db }

// CreateTx inserts a callback in pending status.  Priority must already
// be derived from the cause via model.PriorityForCause; the repository
// stores what it is given so the cause→priority table lives in one place.
func (r *CallbackRepo) CreateTx(ctx context.Context, tx *sql.Tx, cb *model.Callback) error {
	const q = `INSERT INTO callbacks
	           (restaurant_id, call_id, customer_name, customer_phone, requested_time,
	            party_size, seating_area, reason, priority, status)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	var reqTime interface{}
	if cb.RequestedTime != nil {
		reqTime = cb.RequestedTime.UTC().Format("2006-01-02 15:04:05")
	}
	res, err := tx.ExecContext(ctx, q,
		cb.RestaurantID, cb.CallID, cb.CustomerName, cb.CustomerPhone, reqTime,
		cb.PartySize, cb.SeatingArea, cb.Reason, cb.Priority, model.CallbackPending,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	cb.ID = uint64(id)
	cb.Status = model.CallbackPending
	const sel = `SELECT created_at FROM callbacks WHERE id = ?`
	return tx.QueryRowContext(ctx, sel, cb.ID).Scan(&cb.CreatedAt)
}

// ResolveTx transitions a pending or in_progress callback to resolved,
// recording who resolved it, an outcome note and optionally the
// reservation that satisfied the request.  The row is locked first so
// two staff members cannot both resolve it; a callback already past
// pending/in_progress yields ErrAlreadyResolved.
func (r *CallbackRepo) ResolveTx(ctx context.Context, tx *sql.Tx, id uint64, resolvedBy, notes string, reservationID *uint64) error {
	const sel = `SELECT status FROM callbacks WHERE id = ? FOR UPDATE`
	var status string
	if err := tx.QueryRowContext(ctx, sel, id).Scan(&status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrCallbackNotFound
		}
		return err
	}
	if status != model.CallbackPending && status != model.CallbackInProgress {
		return ErrAlreadyResolved
	}
	const upd = `UPDATE callbacks
	             SET status = ?, resolved_by = ?, notes = ?, reservation_id = ?, resolved_at = UTC_TIMESTAMP()
	             WHERE id = ?`
	_, err := tx.ExecContext(ctx, upd, model.CallbackResolved, resolvedBy, notes, reservationID, id)
	return err
}

// GetByID loads a callback for a restaurant, mainly to verify tenancy
// before resolution.  Returns ErrCallbackNotFound when no row exists and
// ErrForbidden when the callback belongs to another restaurant.
func (r *CallbackRepo) GetByID(ctx context.Context, restaurantID, id uint64) (*model.Callback, error) {
	const q = `SELECT id, restaurant_id, call_id, reservation_id, customer_name, customer_phone,
	                  requested_time, party_size, seating_area, reason, priority, status,
	                  notes, resolved_by, resolved_at, created_at
	           FROM callbacks WHERE id = ?`
	cb, err := scanCallback(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCallbackNotFound
		}
		return nil, err
	}
	if cb.RestaurantID != restaurantID {
		return nil, ErrForbidden
	}
	return cb, nil
}

// ListPending returns open callbacks for a restaurant ordered by
// priority (urgent first), then creation time, then id.  The id term
// keeps the order stable when priorities and timestamps tie.
func (r *CallbackRepo) ListPending(ctx context.Context, restaurantID uint64, limit int) ([]model.Callback, error) {
	const q = `SELECT id, restaurant_id, call_id, reservation_id, customer_name, customer_phone,
	                  requested_time, party_size, seating_area, reason, priority, status,
	                  notes, resolved_by, resolved_at, created_at
	           FROM callbacks
	           WHERE restaurant_id = ? AND status IN (?, ?)
	           ORDER BY priority ASC, created_at ASC, id ASC
	           LIMIT ?`
	rows, err := r.db.QueryContext(ctx, q, restaurantID, model.CallbackPending, model.CallbackInProgress, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Callback, 0)
	for rows.Next() {
		cb, err := scanCallback(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *cb)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanCallback(row interface{ Scan(...interface{}) error }) (*model.Callback, error) {
	var cb model.Callback
	var callID, reservationID sql.NullInt64
	var requestedTime, resolvedAt sql.NullTime
	var notes, resolvedBy sql.NullString
	err := row.Scan(
		&cb.ID, &cb.RestaurantID, &callID, &reservationID, &cb.CustomerName, &cb.CustomerPhone,
		&requestedTime, &cb.PartySize, &cb.SeatingArea, &cb.Reason, &cb.Priority, &cb.Status,
		&notes, &resolvedBy, &resolvedAt, &cb.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if callID.Valid {
		v := uint64(callID.Int64)
		cb.CallID = &v
	}
	if reservationID.Valid {
		v := uint64(reservationID.Int64)
		cb.ReservationID = &v
	}
	if requestedTime.Valid {
		t := requestedTime.Time.UTC()
		cb.RequestedTime = &t
	}
	if resolvedAt.Valid {
		t := resolvedAt.Time.UTC()
		cb.ResolvedAt = &t
	}
	cb.Notes = notes.String
	cb.ResolvedBy = resolvedBy.String
	return &cb, nil
}
