package model

import "time"

// Callback statuses.  pending -> in_progress -> resolved is the staff
// workflow; failed marks callbacks that could not be actioned.
const (
	CallbackPending    = "pending"
	CallbackInProgress = "in_progress"
	CallbackResolved   = "resolved"
	CallbackFailed     = "failed"
)

// Callback failure causes.  These drive priority assignment; the set is
// fixed so the staff queue ordering is predictable.
const (
	CauseAllergySafety   = "ALLERGY_SAFETY"
	CauseSafetyConcern   = "SAFETY_CONCERN"
	CauseLargeParty      = "LARGE_PARTY"
	CauseSystemError     = "SYSTEM_ERROR"
	CauseSystemTimeout   = "SYSTEM_TIMEOUT"
	CauseBookingConflict = "BOOKING_CONFLICT"
	CauseGeneralInquiry  = "GENERAL_INQUIRY"
)

// PriorityForCause maps a failure cause to its queue priority.  Lower is
// more urgent.  Safety causes always outrank everything else regardless of
// arrival order; unknown causes land in the lowest tier.
func PriorityForCause(cause string) int {
	switch cause {
	case CauseAllergySafety, CauseSafetyConcern:
		return 1
	case CauseLargeParty:
		return 2
	case CauseSystemError, CauseSystemTimeout:
		return 3
	case CauseBookingConflict:
		return 4
	default:
		return 5
	}
}

// UrgentPriority is the threshold at or below which the caller is expected
// to trigger the alerting channel after creating a callback.
const UrgentPriority = 2

// Callback is a deferred, staff-actioned booking request created when a
// booking could not complete synchronously.
//
// Fields:
//  ID            – primary key identifier.
//  RestaurantID  – owning restaurant.
//  CallID        – originating call, if supplied.
//  ReservationID – reservation that eventually resolved this, if any.
//  CustomerName  – caller name as captured.
//  CustomerPhone – caller phone as captured.
//  RequestedTime – booking time the caller wanted, UTC, if known.
//  PartySize     – requested party size (0 when unknown).
//  SeatingArea   – requested seating area ("" when none).
//  Reason        – failure cause, one of the Cause* constants.
//  Priority      – derived from Reason via PriorityForCause.
//  Status        – one of the Callback* constants.
//  Notes         – staff notes recorded at resolution.
//  ResolvedBy    – staff identity that resolved the callback.
//  ResolvedAt    – resolution timestamp.
//  CreatedAt     – creation timestamp; the stable age tie-break.
type Callback struct {
	ID            uint64     // callbacks.id
	RestaurantID  uint64     // callbacks.restaurant_id
	CallID        *uint64    // callbacks.call_id (nullable)
	ReservationID *uint64    // callbacks.reservation_id (nullable)
	CustomerName  string     // callbacks.customer_name
	CustomerPhone string     // callbacks.customer_phone
	RequestedTime *time.Time // callbacks.requested_time (nullable)
	PartySize     int        // callbacks.party_size
	SeatingArea   string     // callbacks.seating_area
	Reason        string     // callbacks.reason
	Priority      int        // callbacks.priority
	Status        string     // callbacks.status
	Notes         string     // callbacks.notes
	ResolvedBy    string     // callbacks.resolved_by
	ResolvedAt    *time.Time // callbacks.resolved_at (nullable)
	CreatedAt     time.Time  // callbacks.created_at
}
