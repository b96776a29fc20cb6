package repository

import (
	"context"
	"database/sql"
	"time"
)

// CallRepo persists phone call records keyed by the voice platform's
// external call id.  The UNIQUE constraint on external_call_id plus a
// single upsert statement make LogCallOutcome idempotent: replays merge
// the latest non-empty terminal fields into the existing row instead of
// creating a second record.
type CallRepo struct {
	db *sql.DB
}

// NewCallRepo returns a new CallRepo bound to the given database.
func NewCallRepo(db *sql.DB) *CallRepo { return &CallRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions.
func (r *CallRepo) DB() *sql.DB { return r.db }

// CallUpsert carries the fields LogCallOutcome may supply.  Nil/empty
// fields never overwrite stored values.
type CallUpsert struct {
	RestaurantID   uint64
	ExternalCallID string
	CallerPhone    string
	StartedAt      *time.Time
	EndedAt        *time.Time
	Status         string
	Outcome        string
	SafetyFlag     bool
	TranscriptRef  string
	RecordingRef   string
}

// UpsertTx inserts or merges a call record and returns its row id along
// with whether the row was newly created.  MySQL reports one affected
// row for an insert and two for an update, which is how callers learn
// whether this was the first sighting of the external id (aggregates are
// only incremented once per call).
func (r *CallRepo) UpsertTx(ctx context.Context, tx *sql.Tx, c CallUpsert) (uint64, bool, error) {
	const q = `INSERT INTO calls
	           (restaurant_id, external_call_id, caller_phone, started_at, ended_at,
	            status, outcome, safety_flag, transcript_ref, recording_ref)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	           ON DUPLICATE KEY UPDATE
	             id = LAST_INSERT_ID(id),
	             caller_phone = IF(VALUES(caller_phone) <> '', VALUES(caller_phone), caller_phone),
	             started_at = COALESCE(VALUES(started_at), started_at),
	             ended_at = COALESCE(VALUES(ended_at), ended_at),
	             status = IF(VALUES(status) <> '', VALUES(status), status),
	             outcome = IF(VALUES(outcome) <> '', VALUES(outcome), outcome),
	             safety_flag = safety_flag OR VALUES(safety_flag),
	             transcript_ref = IF(VALUES(transcript_ref) <> '', VALUES(transcript_ref), transcript_ref),
	             recording_ref = IF(VALUES(recording_ref) <> '', VALUES(recording_ref), recording_ref)`
	res, err := tx.ExecContext(ctx, q,
		c.RestaurantID, c.ExternalCallID, c.CallerPhone, nullTime(c.StartedAt), nullTime(c.EndedAt),
		c.Status, c.Outcome, c.SafetyFlag, c.TranscriptRef, c.RecordingRef,
	)
	if err != nil {
		return 0, false, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, false, err
	}
	return uint64(id), affected == 1, nil
}

// StatusForUpdateTx returns the stored status for an external call id,
// locking the row for the rest of the transaction.  exists is false when
// the call has never been seen; an empty status on an existing row means
// a mid-call stub that has not reached a terminal outcome yet.
func (r *CallRepo) StatusForUpdateTx(ctx context.Context, tx *sql.Tx, restaurantID uint64, externalCallID string) (status string, exists bool, err error) {
	const q = `SELECT status FROM calls WHERE restaurant_id = ? AND external_call_id = ? FOR UPDATE`
	err = tx.QueryRowContext(ctx, q, restaurantID, externalCallID).Scan(&status)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return status, true, nil
}

// EnsureTx returns the row id for an external call id, creating a stub
// record when the call has not been logged yet.  Bookings and callbacks
// reference calls mid-conversation, before the terminal LogCallOutcome
// arrives.
func (r *CallRepo) EnsureTx(ctx context.Context, tx *sql.Tx, restaurantID uint64, externalCallID string) (uint64, error) {
	id, _, err := r.UpsertTx(ctx, tx, CallUpsert{
		RestaurantID:   restaurantID,
		ExternalCallID: externalCallID,
	})
	return id, err
}

// LinkCallbackTx back-links a call to the callback created from it.
func (r *CallRepo) LinkCallbackTx(ctx context.Context, tx *sql.Tx, callID, callbackID uint64) error {
	const q = `UPDATE calls SET callback_id = ? WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, callbackID, callID)
	return err
}

func nullTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC().Format("2006-01-02 15:04:05")
}
