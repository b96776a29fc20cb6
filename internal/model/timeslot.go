package model

import "time"

// Seating area categories a slot can belong to.  Stored as an enum in
// time_slots.seating_area; "any" is accepted on the request side only and
// never persisted.
const (
	SeatingIndoor  = "indoor"
	SeatingOutdoor = "outdoor"
	SeatingBar     = "bar"
	SeatingPrivate = "private"
)

// ValidSeatingArea reports whether s names a persistable seating area.
func ValidSeatingArea(s string) bool {
	switch s {
	case SeatingIndoor, SeatingOutdoor, SeatingBar, SeatingPrivate:
		return true
	}
	return false
}

// TimeSlot is the ledger's unit of capacity: one bookable (start time,
// seating area) combination for a restaurant.  At most one row exists per
// (restaurant_id, starts_at, seating_area).  BookedCapacity only moves
// inside the same transaction as the reservation mutation that causes it.
//
// Fields:
//  ID             – primary key identifier.
//  RestaurantID   – owning restaurant.
//  StartsAt       – slot start time, stored in UTC.
//  SeatingArea    – one of the Seating* constants.
//  TotalCapacity  – seats physically available in this slot.
//  BookedCapacity – seats consumed by confirmed/seated reservations.
//  IsBlocked      – manual block flag; removes the slot from search.
//  CreatedAt      – creation timestamp.
//  UpdatedAt      – last update timestamp.
type TimeSlot struct {
	ID             uint64    // time_slots.id
	RestaurantID   uint64    // time_slots.restaurant_id
	StartsAt       time.Time // time_slots.starts_at
	SeatingArea    string    // time_slots.seating_area
	TotalCapacity  int       // time_slots.total_capacity
	BookedCapacity int       // time_slots.booked_capacity
	IsBlocked      bool      // time_slots.is_blocked
	CreatedAt      time.Time // time_slots.created_at
	UpdatedAt      time.Time // time_slots.updated_at
}

// Available returns the derived free capacity.  It is never stored; the
// counters are the source of truth and this accessor is the only way the
// rest of the engine reads availability.
func (s *TimeSlot) Available() int {
	free := s.TotalCapacity - s.BookedCapacity
	if free < 0 {
		return 0
	}
	return free
}
