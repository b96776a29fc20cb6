package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/voicetable/reservation-engine/internal/model"
	"github.com/voicetable/reservation-engine/internal/repository"
)

// CallLogHandler serves LogCallOutcome, the terminal report the voice
// platform sends when a phone call ends.  The upsert on external_call_id
// makes replays safe; the daily counters are only bumped on the first
// transition to a terminal status so a redelivered webhook cannot count
// a call twice.
type CallLogHandler struct {
	RestaurantRepo *repository.RestaurantRepo
	CallRepo       *repository.CallRepo
	StatsRepo      *repository.StatsRepo
}

// NewCallLogHandler constructs a CallLogHandler.
func NewCallLogHandler(restaurantRepo *repository.RestaurantRepo, callRepo *repository.CallRepo, statsRepo *repository.StatsRepo) *CallLogHandler {
	if restaurantRepo == nil || callRepo == nil || statsRepo == nil {
		panic("nil repository passed to NewCallLogHandler")
	}
	return &CallLogHandler{RestaurantRepo: restaurantRepo, CallRepo: callRepo, StatsRepo: statsRepo}
}

type callLogReq struct {
	RestaurantID   uint64 `json:"restaurant_id"`
	ExternalCallID string `json:"external_call_id"`
	CallerPhone    string `json:"caller_phone"`
	StartedAt      string `json:"started_at"` // RFC3339
	EndedAt        string `json:"ended_at"`   // RFC3339
	Status         string `json:"status"`     // completed|failed|abandoned
	Outcome        string `json:"outcome"`
	SafetyFlag     bool   `json:"safety_flag"`
	TranscriptRef  string `json:"transcript_ref"`
	RecordingRef   string `json:"recording_ref"`
}

// Log handles POST /v1/calls.  Always 200 on success with the stored
// call id, whether the row was created or merged.
func (h *CallLogHandler) Log(c echo.Context) error {
	var req callLogReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.ExternalCallID = strings.TrimSpace(req.ExternalCallID)
	if req.ExternalCallID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error_code": codeMissingCallID,
			"message":    "external_call_id is required",
		})
	}

	ctx := c.Request().Context()
	rest, err := h.RestaurantRepo.GetByID(ctx, req.RestaurantID)
	if err != nil {
		if errors.Is(err, repository.ErrRestaurantNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error_code": codeRestaurantNotFound, "message": "restaurant not found"})
		}
		return internalError(c)
	}

	up := repository.CallUpsert{
		RestaurantID:   rest.ID,
		ExternalCallID: req.ExternalCallID,
		CallerPhone:    strings.TrimSpace(req.CallerPhone),
		StartedAt:      parseOptionalTime(req.StartedAt),
		EndedAt:        parseOptionalTime(req.EndedAt),
		Status:         strings.TrimSpace(req.Status),
		Outcome:        strings.TrimSpace(req.Outcome),
		SafetyFlag:     req.SafetyFlag,
		TranscriptRef:  strings.TrimSpace(req.TranscriptRef),
		RecordingRef:   strings.TrimSpace(req.RecordingRef),
	}

	tx, err := h.CallRepo.DB().BeginTx(ctx, nil)
	if err != nil {
		return internalError(c)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// Counters bump only when the stored row moves from no-status (stub
	// or absent) to a terminal status.  The FOR UPDATE read serializes
	// concurrent deliveries of the same external id.
	prevStatus, _, err := h.CallRepo.StatusForUpdateTx(ctx, tx, rest.ID, req.ExternalCallID)
	if err != nil {
		return internalError(c)
	}
	callID, _, err := h.CallRepo.UpsertTx(ctx, tx, up)
	if err != nil {
		return internalError(c)
	}
	if prevStatus == "" && up.Status != "" {
		localDate, hour := callLocalDateHour(&up, rest.Location())
		if err := h.StatsRepo.BumpTx(ctx, tx, rest.ID, localDate, statsDelta(&up, hour)); err != nil {
			return internalError(c)
		}
	}
	if err := tx.Commit(); err != nil {
		return internalError(c)
	}
	committed = true

	return c.JSON(http.StatusOK, echo.Map{"call_id": callID, "message": "call recorded"})
}

func parseOptionalTime(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil
	}
	u := t.UTC()
	return &u
}

// callLocalDateHour picks the stat bucket for a call: start time when
// reported, end time as fallback, receipt time as a last resort, all in
// the restaurant's timezone.
func callLocalDateHour(up *repository.CallUpsert, loc *time.Location) (string, int) {
	var t time.Time
	switch {
	case up.StartedAt != nil:
		t = up.StartedAt.In(loc)
	case up.EndedAt != nil:
		t = up.EndedAt.In(loc)
	default:
		t = time.Now().In(loc)
	}
	return t.Format("2006-01-02"), t.Hour()
}

func statsDelta(up *repository.CallUpsert, hour int) repository.StatsDelta {
	d := repository.StatsDelta{HourOfDay: hour}
	switch up.Status {
	case model.CallCompleted:
		d.Completed = 1
	case model.CallFailed, model.CallAbandoned:
		d.Failed = 1
	}
	if up.Outcome == model.OutcomeBooked {
		d.BookingMade = 1
	}
	if up.Outcome == model.OutcomeCallback {
		d.CallbackCreated = 1
	}
	if up.SafetyFlag || up.Outcome == model.OutcomeSafetyHanded {
		d.SafetyTriggered = 1
	}
	return d
}
