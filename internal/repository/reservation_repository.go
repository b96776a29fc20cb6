package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/voicetable/reservation-engine/internal/model"
)

// ReservationRepo provides persistence for reservations.  Inserts and
// status transitions always run inside a caller-owned transaction so the
// accompanying capacity mutation on the time slot is inseparable from the
// reservation change.  All timestamps are stored in UTC.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions.
func (r *ReservationRepo) DB() *sql.DB { return r.db }

// CodeExistsTx reports whether a confirmation code is already present in
// the restaurant's reservation history.  Generated codes are checked here
// before insert; collisions are rare but not assumed impossible.
func (r *ReservationRepo) CodeExistsTx(ctx context.Context, tx *sql.Tx, restaurantID uint64, code string) (bool, error) {
	const q = `SELECT COUNT(*) FROM reservations WHERE restaurant_id = ? AND confirmation_code = ?`
	var n int
	if err := tx.QueryRowContext(ctx, q, restaurantID, code).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// CreateTx inserts a new reservation within the scope of an existing
// transaction.  It populates the generated ID and timestamps on the
// provided record.  The caller must commit or roll back the transaction
// and is responsible for adjusting the slot's booked capacity in the
// same transaction.
func (r *ReservationRepo) CreateTx(ctx context.Context, tx *sql.Tx, res *model.Reservation) error {
	const q = `INSERT INTO reservations
	           (restaurant_id, time_slot_id, customer_id, call_id, confirmation_code,
	            party_size, seating_area, special_requests, status)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, q,
		res.RestaurantID, res.TimeSlotID, res.CustomerID, res.CallID, res.ConfirmationCode,
		res.PartySize, res.SeatingArea, res.SpecialRequests, res.Status,
	)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)
	// Query back the row to populate DB-defaulted timestamps.
	const sel = `SELECT created_at, updated_at FROM reservations WHERE id = ?`
	return tx.QueryRowContext(ctx, sel, res.ID).Scan(&res.CreatedAt, &res.UpdatedAt)
}

// GetForUpdateTx loads a reservation by id under FOR UPDATE so a status
// transition cannot race a concurrent transition on the same row.  It
// returns ErrReservationNotFound when no row exists for the restaurant.
func (r *ReservationRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, restaurantID, id uint64) (*model.Reservation, error) {
	const q = `SELECT id, restaurant_id, time_slot_id, customer_id, call_id, confirmation_code,
	                  party_size, seating_area, special_requests, status, created_at, updated_at
	           FROM reservations WHERE id = ? AND restaurant_id = ?
	           FOR UPDATE`
	res, err := scanReservation(tx.QueryRowContext(ctx, q, id, restaurantID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	return res, nil
}

// UpdateStatusTx writes a new lifecycle status.  The caller validates the
// transition and applies the matching capacity delta via the slot
// repository inside the same transaction.
func (r *ReservationRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, status string) error {
	const q = `UPDATE reservations SET status = ? WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, status, id)
	return err
}

// IncrementNoShowTx bumps the customer's no-show counter when a
// reservation transitions to no_show.  A nil customer id is a no-op.
func (r *ReservationRepo) IncrementNoShowTx(ctx context.Context, tx *sql.Tx, customerID *uint64) error {
	if customerID == nil {
		return nil
	}
	const q = `UPDATE customers SET no_show_count = no_show_count + 1 WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, *customerID)
	return err
}

// ReservationDetail is the dashboard read shape: a reservation joined
// with its slot time and customer name.
type ReservationDetail struct {
	ID               uint64  `json:"id"`
	ConfirmationCode string  `json:"confirmation_code"`
	PartySize        int     `json:"party_size"`
	SeatingArea      string  `json:"seating_area"`
	Status           string  `json:"status"`
	SpecialRequests  string  `json:"special_requests,omitempty"`
	StartsAt         string  `json:"starts_at"`
	CustomerName     *string `json:"customer_name,omitempty"`
	CustomerVIP      bool    `json:"customer_vip"`
	CreatedAt        string  `json:"created_at"`
}

// ListByDate returns all reservations whose slot starts within [from, to)
// for a restaurant, ordered by slot time then creation order.  Used by
// the staff dashboard; read-only.
func (r *ReservationRepo) ListByDate(ctx context.Context, restaurantID uint64, from, to time.Time) ([]ReservationDetail, error) {
	const q = `SELECT r.id, r.confirmation_code, r.party_size, r.seating_area, r.status,
	                  r.special_requests, s.starts_at, c.name, COALESCE(c.is_vip, 0), r.created_at
	           FROM reservations r
	           JOIN time_slots s ON s.id = r.time_slot_id
	           LEFT JOIN customers c ON c.id = r.customer_id
	           WHERE r.restaurant_id = ? AND s.starts_at >= ? AND s.starts_at < ?
	           ORDER BY s.starts_at ASC, r.id ASC`
	rows, err := r.db.QueryContext(ctx, q, restaurantID,
		from.UTC().Format("2006-01-02 15:04:05"), to.UTC().Format("2006-01-02 15:04:05"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]ReservationDetail, 0)
	for rows.Next() {
		var d ReservationDetail
		var startsAt, createdAt time.Time
		var name sql.NullString
		if err := rows.Scan(
			&d.ID, &d.ConfirmationCode, &d.PartySize, &d.SeatingArea, &d.Status,
			&d.SpecialRequests, &startsAt, &name, &d.CustomerVIP, &createdAt,
		); err != nil {
			return nil, err
		}
		d.StartsAt = startsAt.UTC().Format(time.RFC3339)
		d.CreatedAt = createdAt.UTC().Format(time.RFC3339)
		if name.Valid {
			n := name.String
			d.CustomerName = &n
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanReservation(row interface{ Scan(...interface{}) error }) (*model.Reservation, error) {
	var res model.Reservation
	var customerID, callID sql.NullInt64
	err := row.Scan(
		&res.ID, &res.RestaurantID, &res.TimeSlotID, &customerID, &callID, &res.ConfirmationCode,
		&res.PartySize, &res.SeatingArea, &res.SpecialRequests, &res.Status,
		&res.CreatedAt, &res.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if customerID.Valid {
		v := uint64(customerID.Int64)
		res.CustomerID = &v
	}
	if callID.Valid {
		v := uint64(callID.Int64)
		res.CallID = &v
	}
	return &res, nil
}
