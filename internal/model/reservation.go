package model

import "time"

// Reservation lifecycle statuses.  confirmed -> seated -> completed is the
// happy path; confirmed -> cancelled / no_show are terminal failures.
// Only confirmed and seated reservations hold slot capacity.
const (
	ReservationConfirmed = "confirmed"
	ReservationSeated    = "seated"
	ReservationCompleted = "completed"
	ReservationCancelled = "cancelled"
	ReservationNoShow    = "no_show"
)

// HoldsCapacity reports whether a reservation in the given status consumes
// booked capacity on its time slot.
func HoldsCapacity(status string) bool {
	return status == ReservationConfirmed || status == ReservationSeated
}

// ValidReservationStatus reports whether s is a known lifecycle status.
func ValidReservationStatus(s string) bool {
	switch s {
	case ReservationConfirmed, ReservationSeated, ReservationCompleted,
		ReservationCancelled, ReservationNoShow:
		return true
	}
	return false
}

// CanTransition reports whether a reservation may move from one lifecycle
// status to another.  cancelled -> confirmed is allowed so staff can
// reinstate a cancelled booking; the capacity re-check happens at the
// ledger, not here.
func CanTransition(from, to string) bool {
	switch from {
	case ReservationConfirmed:
		return to == ReservationSeated || to == ReservationCancelled || to == ReservationNoShow
	case ReservationSeated:
		return to == ReservationCompleted || to == ReservationNoShow
	case ReservationCancelled:
		return to == ReservationConfirmed
	}
	return false
}

// Reservation records a confirmed table booking against one time slot.
//
// Fields:
//  ID               – primary key identifier.
//  RestaurantID     – owning restaurant.
//  TimeSlotID       – slot whose capacity this reservation consumes.
//  CustomerID       – customer directory entry, if resolved.
//  CallID           – originating phone call, if any.
//  ConfirmationCode – short speakable code, unique per restaurant history.
//  PartySize        – number of guests.
//  SeatingArea      – seating area booked (copied from the slot).
//  SpecialRequests  – free-text notes captured during the call.
//  Status           – one of the Reservation* constants.
//  CreatedAt        – creation timestamp.
//  UpdatedAt        – last update timestamp.
type Reservation struct {
	ID               uint64    // reservations.id
	RestaurantID     uint64    // reservations.restaurant_id
	TimeSlotID       uint64    // reservations.time_slot_id
	CustomerID       *uint64   // reservations.customer_id (nullable)
	CallID           *uint64   // reservations.call_id (nullable)
	ConfirmationCode string    // reservations.confirmation_code
	PartySize        int       // reservations.party_size
	SeatingArea      string    // reservations.seating_area
	SpecialRequests  string    // reservations.special_requests
	Status           string    // reservations.status
	CreatedAt        time.Time // reservations.created_at
	UpdatedAt        time.Time // reservations.updated_at
}
