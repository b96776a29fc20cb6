// Package queue defines message payloads exchanged over the message broker.
package queue

// Queue names.  Both queues are durable; the default exchange routes by
// queue name.
const (
	ReservationQueueName = "reservation.confirmed"
	CallbackQueueName    = "callback.created"
)

// ReservationConfirmedEvent is published after a booking commits.  It
// carries enough for downstream consumers (SMS confirmations, activity
// log, analytics) to act without querying the primary database.
type ReservationConfirmedEvent struct {
	ReservationID    uint64 `json:"reservation_id"`
	RestaurantID     uint64 `json:"restaurant_id"`
	RestaurantName   string `json:"restaurant_name"`
	CustomerID       uint64 `json:"customer_id"`
	ConfirmationCode string `json:"confirmation_code"`
	PartySize        int    `json:"party_size"`
	SeatingArea      string `json:"seating_area"`
	StartsAt         string `json:"starts_at"`
	ContactConsent   bool   `json:"contact_consent"`
	ConfirmedAt      string `json:"confirmed_at"`
}

// CallbackCreatedEvent is published after an escalation lands in the
// queue.  Urgent entries (safety and large-party causes) are expected to
// trigger immediate staff alerting downstream.
type CallbackCreatedEvent struct {
	CallbackID     uint64 `json:"callback_id"`
	RestaurantID   uint64 `json:"restaurant_id"`
	RestaurantName string `json:"restaurant_name"`
	CustomerName   string `json:"customer_name"`
	CustomerPhone  string `json:"customer_phone"`
	Reason         string `json:"reason"`
	Priority       int    `json:"priority"`
	Urgent         bool   `json:"urgent"`
	CreatedAt      string `json:"created_at"`
}
