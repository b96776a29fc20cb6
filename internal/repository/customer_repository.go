package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/voicetable/reservation-engine/internal/model"
)

// CustomerRepo is the customer directory.  Exactly one row exists per
// (restaurant, phone fingerprint); the uniqueness constraint enforces
// this, not an application-level check-then-insert, so concurrent first
// bookings from the same caller cannot create duplicates.
type CustomerRepo struct {
	db *sql.DB
}

// NewCustomerRepo returns a new CustomerRepo bound to the given database.
func NewCustomerRepo(db *sql.DB) *CustomerRepo { return &CustomerRepo{db: db} }

// UpsertTx creates or updates the customer identified by fingerprint and
// returns the row id.  On first sighting a new row is inserted; on later
// visits the name is refreshed, a missing email is filled in, consent is
// updated and the visit counter is incremented.  Existing data is never
// blanked: empty inputs leave the stored values alone.  The single
// INSERT ... ON DUPLICATE KEY UPDATE statement keeps the upsert atomic
// under concurrency, and LAST_INSERT_ID(id) makes the existing row's id
// observable through LastInsertId on the update path.
func (r *CustomerRepo) UpsertTx(ctx context.Context, tx *sql.Tx, restaurantID uint64, fingerprint, name string, email *string, consent bool) (uint64, error) {
	const q = `INSERT INTO customers
	           (restaurant_id, phone_fingerprint, name, email, contact_consent,
	            visit_count, first_seen_at, last_seen_at)
	           VALUES (?, ?, ?, ?, ?, 1, UTC_TIMESTAMP(), UTC_TIMESTAMP())
	           ON DUPLICATE KEY UPDATE
	             id = LAST_INSERT_ID(id),
	             name = IF(VALUES(name) <> '', VALUES(name), name),
	             email = COALESCE(email, VALUES(email)),
	             contact_consent = VALUES(contact_consent),
	             visit_count = visit_count + 1,
	             last_seen_at = UTC_TIMESTAMP()`
	res, err := tx.ExecContext(ctx, q, restaurantID, fingerprint, name, email, consent)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByFingerprint returns the directory entry for a fingerprint, or nil
// when the caller has never booked here.
func (r *CustomerRepo) GetByFingerprint(ctx context.Context, restaurantID uint64, fingerprint string) (*model.Customer, error) {
	const q = `SELECT id, restaurant_id, phone_fingerprint, name, email, contact_consent,
	                  visit_count, no_show_count, is_vip, first_seen_at, last_seen_at
	           FROM customers WHERE restaurant_id = ? AND phone_fingerprint = ?`
	var c model.Customer
	var email sql.NullString
	err := r.db.QueryRowContext(ctx, q, restaurantID, fingerprint).Scan(
		&c.ID, &c.RestaurantID, &c.PhoneFingerprint, &c.Name, &email, &c.ContactConsent,
		&c.VisitCount, &c.NoShowCount, &c.IsVIP, &c.FirstSeenAt, &c.LastSeenAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if email.Valid {
		e := email.String
		c.Email = &e
	}
	return &c, nil
}
