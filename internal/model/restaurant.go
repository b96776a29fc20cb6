package model

import "time"

// Restaurant is the tenant root of the engine.  Every slot, reservation,
// customer, call and callback belongs to exactly one restaurant, and all
// time computations for a restaurant are interpreted in its timezone.
//
// Fields:
//  ID                   – primary key identifier.
//  Name                 – display name of the restaurant.
//  Timezone             – IANA timezone name (e.g. "America/New_York").
//  MaxPartySize         – largest party bookable without staff handoff.
//  LargePartyThreshold  – party size at which a callback is preferred.
//  LastSeatingOffsetMin – minutes before close after which no seating occurs.
//  BookingHorizonDays   – how far into the future bookings are accepted.
//  CreatedAt            – creation timestamp.
//  UpdatedAt            – last update timestamp.
type Restaurant struct {
	ID                   uint64    // restaurants.id
	Name                 string    // restaurants.name
	Timezone             string    // restaurants.timezone
	MaxPartySize         int       // restaurants.max_party_size
	LargePartyThreshold  int       // restaurants.large_party_threshold
	LastSeatingOffsetMin int       // restaurants.last_seating_offset_min
	BookingHorizonDays   int       // restaurants.booking_horizon_days
	CreatedAt            time.Time // restaurants.created_at
	UpdatedAt            time.Time // restaurants.updated_at
}

// Location resolves the restaurant's timezone.  It falls back to UTC when
// the stored name cannot be loaded so time math never silently uses the
// server's local zone.
func (r *Restaurant) Location() *time.Location {
	loc, err := time.LoadLocation(r.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// OpeningHours describes one weekday's service window for a restaurant.
// OpensAt and ClosesAt are minutes after local midnight so that hours can
// be compared without parsing clock strings on every request.
type OpeningHours struct {
	RestaurantID uint64 // restaurant_hours.restaurant_id
	Weekday      int    // restaurant_hours.weekday (0 = Sunday ... 6 = Saturday)
	OpensAtMin   int    // restaurant_hours.opens_at as minutes after midnight
	ClosesAtMin  int    // restaurant_hours.closes_at as minutes after midnight
	IsClosed     bool   // restaurant_hours.is_closed
}

// DateBlock marks an entire calendar date as unbookable (private event,
// maintenance closure).  Reason is the public-facing explanation spoken
// back to callers.
type DateBlock struct {
	ID           uint64    // restaurant_blocks.id
	RestaurantID uint64    // restaurant_blocks.restaurant_id
	BlockDate    string    // restaurant_blocks.block_date (YYYY-MM-DD, restaurant-local)
	Reason       string    // restaurant_blocks.reason
	CreatedAt    time.Time // restaurant_blocks.created_at
}
