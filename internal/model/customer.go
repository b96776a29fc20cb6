package model

import "time"

// Customer is a directory entry for a caller, keyed internally by a one-way
// fingerprint of their phone number so lookups never need the number in a
// searchable plain column.  Rows are created on first booking and updated
// additively on later visits (counters only grow, fields are only filled
// in, never blanked).
//
// Fields:
//  ID               – primary key identifier.
//  RestaurantID     – owning restaurant.
//  PhoneFingerprint – SHA-256 hex of the normalized phone number.
//  Name             – most recently confirmed caller name.
//  Email            – optional contact email.
//  ContactConsent   – whether the caller agreed to be contacted.
//  VisitCount       – number of reservations ever made.
//  NoShowCount      – number of reservations ending in no_show.
//  IsVIP            – staff-managed flag.
//  FirstSeenAt      – first booking timestamp.
//  LastSeenAt       – latest booking timestamp.
type Customer struct {
	ID               uint64    // customers.id
	RestaurantID     uint64    // customers.restaurant_id
	PhoneFingerprint string    // customers.phone_fingerprint
	Name             string    // customers.name
	Email            *string   // customers.email (nullable)
	ContactConsent   bool      // customers.contact_consent
	VisitCount       int       // customers.visit_count
	NoShowCount      int       // customers.no_show_count
	IsVIP            bool      // customers.is_vip
	FirstSeenAt      time.Time // customers.first_seen_at
	LastSeenAt       time.Time // customers.last_seen_at
}
