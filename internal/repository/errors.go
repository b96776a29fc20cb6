// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrSlotConflict indicates that a booking lost the race for a
// slot's remaining capacity, while ErrAlreadyResolved signals that a
// callback was resolved by someone else first.
package repository

import "errors"

// ErrRestaurantNotFound is returned when a restaurant lookup yields no
// rows. Handlers translate this into RESTAURANT_NOT_FOUND.
var ErrRestaurantNotFound = errors.New("restaurant not found")

// ErrSlotNotFound is returned when no time slot exists for the requested
// time and seating area. Booking handlers report it as SLOT_UNAVAILABLE.
var ErrSlotNotFound = errors.New("time slot not found")

// ErrSlotConflict is returned when a slot row could not be acquired
// (locked by a concurrent booking) or its remaining capacity no longer
// covers the party. This is the expected fail-fast outcome under
// contention and callers should re-run availability rather than retry.
var ErrSlotConflict = errors.New("slot conflict")

// ErrReservationNotFound is returned when a reservation lookup yields no
// rows for the given restaurant.
var ErrReservationNotFound = errors.New("reservation not found")

// ErrCallbackNotFound is returned when a callback lookup yields no rows.
var ErrCallbackNotFound = errors.New("callback not found")

// ErrAlreadyResolved is returned when resolving a callback that is not in
// pending or in_progress status. Handlers translate this into a 409 with
// ALREADY_RESOLVED.
var ErrAlreadyResolved = errors.New("callback already resolved")

// ErrForbidden is returned when a staff caller attempts an operation on a
// resource belonging to another restaurant. Handlers translate this into
// an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")
