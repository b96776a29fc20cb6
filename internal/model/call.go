package model

import "time"

// Call statuses and outcomes as reported by the dialogue engine when a
// phone call finishes.  The engine treats these as opaque labels except
// for aggregation; the constants document the expected vocabulary.
const (
	CallCompleted = "completed"
	CallFailed    = "failed"
	CallAbandoned = "abandoned"

	OutcomeBooked       = "booked"
	OutcomeCallback     = "callback"
	OutcomeNoBooking    = "no_booking"
	OutcomeTransferred  = "transferred"
	OutcomeSafetyHanded = "safety_handoff"
)

// Call records one inbound phone call, keyed by the external call id the
// voice platform assigns.  LogCallOutcome upserts this row: logging the
// same external id twice merges the latest non-null terminal fields into
// the existing record instead of creating a second one.
//
// Fields:
//  ID             – primary key identifier.
//  RestaurantID   – owning restaurant.
//  ExternalCallID – unique id from the voice platform.
//  CallerPhone    – caller number as reported (may be empty/withheld).
//  StartedAt      – call start time, UTC.
//  EndedAt        – call end time, UTC, nil while in progress.
//  Status         – terminal call status (completed/failed/abandoned).
//  Outcome        – business outcome of the call.
//  SafetyFlag     – true when a safety concern was raised on the call.
//  TranscriptRef  – opaque reference to the stored transcript.
//  RecordingRef   – opaque reference to the stored recording.
//  CallbackID     – callback created from this call, if any.
//  CreatedAt      – creation timestamp.
//  UpdatedAt      – last update timestamp.
type Call struct {
	ID             uint64     // calls.id
	RestaurantID   uint64     // calls.restaurant_id
	ExternalCallID string     // calls.external_call_id
	CallerPhone    string     // calls.caller_phone
	StartedAt      *time.Time // calls.started_at (nullable)
	EndedAt        *time.Time // calls.ended_at (nullable)
	Status         string     // calls.status
	Outcome        string     // calls.outcome
	SafetyFlag     bool       // calls.safety_flag
	TranscriptRef  string     // calls.transcript_ref
	RecordingRef   string     // calls.recording_ref
	CallbackID     *uint64    // calls.callback_id (nullable)
	CreatedAt      time.Time  // calls.created_at
	UpdatedAt      time.Time  // calls.updated_at
}
