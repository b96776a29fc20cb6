package repository

// Integration tests against a real MySQL server.  They exercise the
// properties that only hold at the database level: skip-locked slot
// acquisition, the guarded capacity update, idempotent call merging and
// the callback queue ordering.  Set TEST_MYSQL_DSN to run them, e.g.
//
//	TEST_MYSQL_DSN='root:secret@tcp(127.0.0.1:3306)/booking_test?parseTime=true&loc=UTC'
//
// The DSN must include parseTime=true and point at a throwaway schema:
// every test wipes the tables it touches.

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voicetable/reservation-engine/internal/model"
)

const testRestaurantID = 1

var testSchema = []string{
	`CREATE TABLE IF NOT EXISTS time_slots (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		restaurant_id BIGINT UNSIGNED NOT NULL,
		starts_at DATETIME NOT NULL,
		seating_area VARCHAR(16) NOT NULL,
		total_capacity INT NOT NULL,
		booked_capacity INT NOT NULL DEFAULT 0,
		is_blocked TINYINT(1) NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		UNIQUE KEY uq_slot (restaurant_id, starts_at, seating_area)
	)`,
	`CREATE TABLE IF NOT EXISTS reservations (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		restaurant_id BIGINT UNSIGNED NOT NULL,
		time_slot_id BIGINT UNSIGNED NOT NULL,
		customer_id BIGINT UNSIGNED NULL,
		call_id BIGINT UNSIGNED NULL,
		confirmation_code VARCHAR(8) NOT NULL,
		party_size INT NOT NULL,
		seating_area VARCHAR(16) NOT NULL,
		special_requests TEXT NOT NULL,
		status VARCHAR(16) NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		UNIQUE KEY uq_code (confirmation_code)
	)`,
	`CREATE TABLE IF NOT EXISTS calls (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		restaurant_id BIGINT UNSIGNED NOT NULL,
		external_call_id VARCHAR(128) NOT NULL,
		caller_phone VARCHAR(32) NOT NULL DEFAULT '',
		started_at DATETIME NULL,
		ended_at DATETIME NULL,
		status VARCHAR(16) NOT NULL DEFAULT '',
		outcome VARCHAR(32) NOT NULL DEFAULT '',
		safety_flag TINYINT(1) NOT NULL DEFAULT 0,
		transcript_ref VARCHAR(255) NOT NULL DEFAULT '',
		recording_ref VARCHAR(255) NOT NULL DEFAULT '',
		callback_id BIGINT UNSIGNED NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		UNIQUE KEY uq_external (external_call_id)
	)`,
	`CREATE TABLE IF NOT EXISTS callbacks (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		restaurant_id BIGINT UNSIGNED NOT NULL,
		call_id BIGINT UNSIGNED NULL,
		reservation_id BIGINT UNSIGNED NULL,
		customer_name VARCHAR(128) NOT NULL,
		customer_phone VARCHAR(32) NOT NULL,
		requested_time DATETIME NULL,
		party_size INT NOT NULL DEFAULT 0,
		seating_area VARCHAR(16) NOT NULL DEFAULT '',
		reason VARCHAR(32) NOT NULL,
		priority INT NOT NULL,
		status VARCHAR(16) NOT NULL,
		notes TEXT NULL,
		resolved_by VARCHAR(128) NULL,
		resolved_at DATETIME NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
}

// testDB opens the integration database or skips the test.  Tables are
// created on demand and emptied so every test starts from nothing.
func testDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("TEST_MYSQL_DSN")
	if dsn == "" {
		t.Skip("TEST_MYSQL_DSN not set")
	}
	db, err := sql.Open("mysql", dsn)
	require.NoError(t, err)
	require.NoError(t, db.Ping())
	for _, ddl := range testSchema {
		_, err := db.Exec(ddl)
		require.NoError(t, err)
	}
	for _, table := range []string{"time_slots", "reservations", "calls", "callbacks"} {
		_, err := db.Exec("DELETE FROM " + table)
		require.NoError(t, err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func insertSlot(t *testing.T, db *sql.DB, startsAt time.Time, area string, total, booked int) uint64 {
	t.Helper()
	res, err := db.Exec(
		`INSERT INTO time_slots (restaurant_id, starts_at, seating_area, total_capacity, booked_capacity)
		 VALUES (?, ?, ?, ?, ?)`,
		testRestaurantID, startsAt.UTC().Format("2006-01-02 15:04:05"), area, total, booked,
	)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return uint64(id)
}

func bookedCapacity(t *testing.T, db *sql.DB, slotID uint64) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow("SELECT booked_capacity FROM time_slots WHERE id = ?", slotID).Scan(&n))
	return n
}

func TestAcquireSkipLockedConflict(t *testing.T) {
	db := testDB(t)
	repo := NewTimeSlotRepo(db)
	ctx := context.Background()
	slotID := insertSlot(t, db, time.Date(2026, 10, 2, 23, 0, 0, 0, time.UTC), "indoor", 6, 0)

	tx1, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	defer tx1.Rollback()
	_, err = repo.AcquireTx(ctx, tx1, testRestaurantID, slotID)
	require.NoError(t, err)

	// A second transaction must not queue behind the lock; it fails fast.
	tx2, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	defer tx2.Rollback()
	_, err = repo.AcquireTx(ctx, tx2, testRestaurantID, slotID)
	assert.ErrorIs(t, err, ErrSlotConflict)
	require.NoError(t, tx2.Rollback())

	// Releasing the lock makes the slot acquirable again.
	require.NoError(t, tx1.Rollback())
	tx3, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	defer tx3.Rollback()
	slot, err := repo.AcquireTx(ctx, tx3, testRestaurantID, slotID)
	require.NoError(t, err)
	assert.Equal(t, slotID, slot.ID)

	// A missing slot is not-found, not a conflict.
	_, err = repo.AcquireTx(ctx, tx3, testRestaurantID, slotID+1000)
	assert.ErrorIs(t, err, ErrSlotNotFound)
}

func TestAdjustBookedNeverOverbooks(t *testing.T) {
	db := testDB(t)
	repo := NewTimeSlotRepo(db)
	ctx := context.Background()
	slotID := insertSlot(t, db, time.Date(2026, 10, 2, 23, 0, 0, 0, time.UTC), "indoor", 4, 0)

	book := func(party int) error {
		tx, err := db.BeginTx(ctx, nil)
		require.NoError(t, err)
		defer tx.Rollback()
		if _, err := repo.AcquireTx(ctx, tx, testRestaurantID, slotID); err != nil {
			return err
		}
		if err := repo.AdjustBookedTx(ctx, tx, slotID, party); err != nil {
			return err
		}
		return tx.Commit()
	}

	// Two parties of 3 against 4 seats: exactly one wins.
	require.NoError(t, book(3))
	assert.ErrorIs(t, book(3), ErrSlotConflict)
	assert.Equal(t, 3, bookedCapacity(t, db, slotID))

	// A party of 1 still fits, then the slot is full.
	require.NoError(t, book(1))
	assert.ErrorIs(t, book(1), ErrSlotConflict)
	assert.Equal(t, 4, bookedCapacity(t, db, slotID))

	// The guard also refuses to go negative.
	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	defer tx.Rollback()
	assert.ErrorIs(t, repo.AdjustBookedTx(ctx, tx, slotID, -5), ErrSlotConflict)
}

func TestStatusTransitionsKeepCapacityConsistent(t *testing.T) {
	db := testDB(t)
	slots := NewTimeSlotRepo(db)
	reservations := NewReservationRepo(db)
	ctx := context.Background()
	slotID := insertSlot(t, db, time.Date(2026, 10, 2, 23, 30, 0, 0, time.UTC), "indoor", 10, 0)

	// Book a party of 4.
	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	res := &model.Reservation{
		RestaurantID:     testRestaurantID,
		TimeSlotID:       slotID,
		ConfirmationCode: "QX7PMA",
		PartySize:        4,
		SeatingArea:      "indoor",
		Status:           model.ReservationConfirmed,
	}
	require.NoError(t, reservations.CreateTx(ctx, tx, res))
	require.NoError(t, slots.AdjustBookedTx(ctx, tx, slotID, 4))
	require.NoError(t, tx.Commit())
	assert.Equal(t, 4, bookedCapacity(t, db, slotID))

	transition := func(next string, delta int) {
		t.Helper()
		tx, err := db.BeginTx(ctx, nil)
		require.NoError(t, err)
		defer tx.Rollback()
		got, err := reservations.GetForUpdateTx(ctx, tx, testRestaurantID, res.ID)
		require.NoError(t, err)
		require.True(t, model.CanTransition(got.Status, next))
		if delta != 0 {
			require.NoError(t, slots.AdjustBookedTx(ctx, tx, slotID, delta))
		}
		require.NoError(t, reservations.UpdateStatusTx(ctx, tx, res.ID, next))
		require.NoError(t, tx.Commit())
	}

	// Cancel releases the seats, reinstating takes them back, a no-show
	// releases them again.  The ledger mirrors every step.
	transition(model.ReservationCancelled, -4)
	assert.Equal(t, 0, bookedCapacity(t, db, slotID))
	transition(model.ReservationConfirmed, 4)
	assert.Equal(t, 4, bookedCapacity(t, db, slotID))
	transition(model.ReservationNoShow, -4)
	assert.Equal(t, 0, bookedCapacity(t, db, slotID))
}

func TestFindWindowOffersExactTimeOtherArea(t *testing.T) {
	db := testDB(t)
	repo := NewTimeSlotRepo(db)
	ctx := context.Background()
	requested := time.Date(2026, 10, 2, 23, 0, 0, 0, time.UTC)

	outdoorID := insertSlot(t, db, requested, "outdoor", 6, 0)
	laterIndoorID := insertSlot(t, db, requested.Add(30*time.Minute), "indoor", 6, 0)

	// No indoor table at the exact time: not an exact match.
	slot, err := repo.FindExact(ctx, testRestaurantID, requested, "indoor", 4)
	require.NoError(t, err)
	assert.Nil(t, slot)

	// But the outdoor table at the requested time is the best alternative,
	// ahead of the indoor table half an hour later.
	alts, err := repo.FindWindow(ctx, testRestaurantID, requested,
		requested.Add(-2*time.Hour), requested.Add(2*time.Hour), "indoor", 4, 3)
	require.NoError(t, err)
	require.Len(t, alts, 2)
	assert.Equal(t, outdoorID, alts[0].ID)
	assert.Equal(t, laterIndoorID, alts[1].ID)

	// Once an indoor table exists at the exact time it is the exact match
	// and the window search no longer repeats it; the outdoor slot stays.
	indoorID := insertSlot(t, db, requested, "indoor", 6, 0)
	slot, err = repo.FindExact(ctx, testRestaurantID, requested, "indoor", 4)
	require.NoError(t, err)
	require.NotNil(t, slot)
	assert.Equal(t, indoorID, slot.ID)

	alts, err = repo.FindWindow(ctx, testRestaurantID, requested,
		requested.Add(-2*time.Hour), requested.Add(2*time.Hour), "indoor", 4, 3)
	require.NoError(t, err)
	require.Len(t, alts, 2)
	assert.Equal(t, outdoorID, alts[0].ID)
	assert.Equal(t, laterIndoorID, alts[1].ID)
}

func TestCallUpsertIsIdempotent(t *testing.T) {
	db := testDB(t)
	repo := NewCallRepo(db)
	ctx := context.Background()
	const externalID = "vapi-call-123"

	// A mid-call stub: exists with no terminal status yet.
	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	stubID, err := repo.EnsureTx(ctx, tx, testRestaurantID, externalID)
	require.NoError(t, err)
	status, exists, err := repo.StatusForUpdateTx(ctx, tx, testRestaurantID, externalID)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Empty(t, status)
	require.NoError(t, tx.Commit())

	// The terminal report merges into the same row.
	ended := time.Date(2026, 10, 2, 23, 12, 0, 0, time.UTC)
	tx, err = db.BeginTx(ctx, nil)
	require.NoError(t, err)
	id, created, err := repo.UpsertTx(ctx, tx, CallUpsert{
		RestaurantID:   testRestaurantID,
		ExternalCallID: externalID,
		CallerPhone:    "+15551234567",
		EndedAt:        &ended,
		Status:         model.CallCompleted,
		Outcome:        model.OutcomeBooked,
	})
	require.NoError(t, err)
	assert.Equal(t, stubID, id)
	assert.False(t, created)
	require.NoError(t, tx.Commit())

	// A replayed webhook with empty fields never blanks the stored ones.
	tx, err = db.BeginTx(ctx, nil)
	require.NoError(t, err)
	id, created, err = repo.UpsertTx(ctx, tx, CallUpsert{
		RestaurantID:   testRestaurantID,
		ExternalCallID: externalID,
		TranscriptRef:  "s3://transcripts/123",
	})
	require.NoError(t, err)
	assert.Equal(t, stubID, id)
	assert.False(t, created)
	require.NoError(t, tx.Commit())

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM calls WHERE external_call_id = ?", externalID).Scan(&count))
	assert.Equal(t, 1, count)
	var storedStatus, storedOutcome, storedRef string
	require.NoError(t, db.QueryRow(
		"SELECT status, outcome, transcript_ref FROM calls WHERE id = ?", stubID,
	).Scan(&storedStatus, &storedOutcome, &storedRef))
	assert.Equal(t, model.CallCompleted, storedStatus)
	assert.Equal(t, model.OutcomeBooked, storedOutcome)
	assert.Equal(t, "s3://transcripts/123", storedRef)
}

func TestListPendingOrdersByPriorityAgeID(t *testing.T) {
	db := testDB(t)
	repo := NewCallbackRepo(db)
	ctx := context.Background()

	create := func(reason string) uint64 {
		t.Helper()
		tx, err := db.BeginTx(ctx, nil)
		require.NoError(t, err)
		cb := &model.Callback{
			RestaurantID:  testRestaurantID,
			CustomerName:  "Caller",
			CustomerPhone: "+15551234567",
			Reason:        reason,
			Priority:      model.PriorityForCause(reason),
		}
		require.NoError(t, repo.CreateTx(ctx, tx, cb))
		require.NoError(t, tx.Commit())
		return cb.ID
	}

	// Arrival order deliberately scrambles priority order.
	general := create(model.CauseGeneralInquiry)
	safety := create(model.CauseAllergySafety)
	largeA := create(model.CauseLargeParty)
	largeB := create(model.CauseLargeParty)

	got, err := repo.ListPending(ctx, testRestaurantID, 50)
	require.NoError(t, err)
	require.Len(t, got, 4)
	ids := []uint64{got[0].ID, got[1].ID, got[2].ID, got[3].ID}
	// Safety first, then the two large parties in arrival order, then the
	// general inquiry despite arriving first.
	assert.Equal(t, []uint64{safety, largeA, largeB, general}, ids)

	// Resolution removes the entry and a second resolve is rejected.
	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, repo.ResolveTx(ctx, tx, safety, "host@example.com", "called back", nil))
	require.NoError(t, tx.Commit())

	tx, err = db.BeginTx(ctx, nil)
	require.NoError(t, err)
	defer tx.Rollback()
	assert.ErrorIs(t, repo.ResolveTx(ctx, tx, safety, "host@example.com", "", nil), ErrAlreadyResolved)

	got, err = repo.ListPending(ctx, testRestaurantID, 50)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, largeA, got[0].ID)
}
