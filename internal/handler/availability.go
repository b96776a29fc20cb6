package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/voicetable/reservation-engine/internal/model"
	"github.com/voicetable/reservation-engine/internal/repository"
	"github.com/voicetable/reservation-engine/internal/utils"
)

// AvailabilityHandler serves CheckAvailability.  The whole path is
// read-only and lock-free: it may be stale by the time a booking runs,
// which is why CreateBooking re-verifies capacity under its own lock.
// Being side-effect free also makes it safe to cache and to repeat
// across conversation turns.
type AvailabilityHandler struct {
	RestaurantRepo *repository.RestaurantRepo
	SlotRepo       *repository.TimeSlotRepo
}

// NewAvailabilityHandler constructs an AvailabilityHandler.
func NewAvailabilityHandler(restaurantRepo *repository.RestaurantRepo, slotRepo *repository.TimeSlotRepo) *AvailabilityHandler {
	if restaurantRepo == nil || slotRepo == nil {
		panic("nil repository passed to NewAvailabilityHandler")
	}
	return &AvailabilityHandler{RestaurantRepo: restaurantRepo, SlotRepo: slotRepo}
}

type availabilityReq struct {
	RestaurantID      uint64 `json:"restaurant_id"`
	RequestedTime     string `json:"requested_time"` // RFC3339
	PartySize         int    `json:"party_size"`
	SeatingPreference string `json:"seating_preference"` // indoor|outdoor|bar|private|any
}

// slotView is the wire shape for a slot in availability responses.
// Times are rendered in the restaurant's timezone because the dialogue
// engine speaks them back to the caller as-is.
type slotView struct {
	ID                uint64 `json:"id"`
	StartsAt          string `json:"starts_at"`
	SeatingArea       string `json:"seating_area"`
	AvailableCapacity int    `json:"available_capacity"`
}

func viewSlot(s *model.TimeSlot, loc *time.Location) slotView {
	return slotView{
		ID:                s.ID,
		StartsAt:          s.StartsAt.In(loc).Format(time.RFC3339),
		SeatingArea:       s.SeatingArea,
		AvailableCapacity: s.Available(),
	}
}

// Check handles POST /v1/availability.  Validation failures return 400
// with a specific error_code; business "no" answers (closed, blocked,
// nothing free) are 200 responses with status=unavailable so the
// dialogue engine can speak the reason.
func (h *AvailabilityHandler) Check(c echo.Context) error {
	var req availabilityReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.PartySize < 1 || req.PartySize > 20 {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error_code": codeInvalidPartySize,
			"message":    "We can take parties of 1 to 20 guests.",
		})
	}
	requested, err := time.Parse(time.RFC3339, req.RequestedTime)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error_code": codeInvalidDate,
			"message":    "I couldn't understand that date and time.",
		})
	}
	pref := normalizePref(req.SeatingPreference)
	ctx := c.Request().Context()

	rest, err := h.RestaurantRepo.GetByID(ctx, req.RestaurantID)
	if err != nil {
		if err == repository.ErrRestaurantNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error_code": codeRestaurantNotFound, "message": "restaurant not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error_code": codeInternalError, "message": fallbackMessage})
	}
	loc := rest.Location()
	local := requested.In(loc)
	now := time.Now().In(loc)

	if !local.After(now) {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error_code": codeInvalidDate,
			"message":    "That time has already passed.",
		})
	}
	if local.After(now.AddDate(0, 0, rest.BookingHorizonDays)) {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error_code": codeDateTooFar,
			"message":    fmt.Sprintf("We only take reservations up to %d days ahead.", rest.BookingHorizonDays),
		})
	}
	if req.PartySize > rest.MaxPartySize {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error_code": codeInvalidPartySize,
			"message":    fmt.Sprintf("For parties larger than %d, the restaurant will call you back to arrange it.", rest.MaxPartySize),
		})
	}
	if needsLargePartyHandoff(rest, req.PartySize) {
		return c.JSON(http.StatusOK, echo.Map{
			"status":     statusUnavailable,
			"error_code": codeLargeParty,
			"message":    fmt.Sprintf("For a group of %d the restaurant arranges seating personally. I'll have them call you back.", req.PartySize),
		})
	}

	// Opening hours for that weekday, in the restaurant's own timezone.
	hours, err := h.RestaurantRepo.HoursForWeekday(ctx, rest.ID, int(local.Weekday()))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error_code": codeInternalError, "message": fallbackMessage})
	}
	if cause := hoursCause(local, hours, rest.LastSeatingOffsetMin); cause != "" {
		msg := "We're closed that day."
		if cause == codeOutsideHours {
			msg = "That time is outside our seating hours."
		}
		return c.JSON(http.StatusOK, echo.Map{
			"status": statusUnavailable, "error_code": cause, "message": msg,
		})
	}

	// Date-level blocks (private events, maintenance closures).
	block, err := h.RestaurantRepo.BlockForDate(ctx, rest.ID, local.Format("2006-01-02"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error_code": codeInternalError, "message": fallbackMessage})
	}
	if block != nil {
		return c.JSON(http.StatusOK, echo.Map{
			"status": statusUnavailable, "error_code": codeDateBlocked, "message": block.Reason,
		})
	}

	grid := utils.SnapToGrid(local)
	slot, err := h.SlotRepo.FindExact(ctx, rest.ID, grid, pref, req.PartySize)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error_code": codeInternalError, "message": fallbackMessage})
	}
	if slot != nil {
		v := viewSlot(slot, loc)
		return c.JSON(http.StatusOK, echo.Map{
			"status":  statusAvailable,
			"slot":    v,
			"message": fmt.Sprintf("Yes, we have a table for %d at %s.", req.PartySize, spokenTime(slot.StartsAt.In(loc))),
		})
	}

	from, to := searchWindow(grid, hours, rest.LastSeatingOffsetMin)
	alts, err := h.SlotRepo.FindWindow(ctx, rest.ID, grid, from, to, pref, req.PartySize, maxAlternatives)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error_code": codeInternalError, "message": fallbackMessage})
	}
	if len(alts) == 0 {
		return c.JSON(http.StatusOK, echo.Map{
			"status":  statusUnavailable,
			"message": fmt.Sprintf("I'm sorry, we don't have anything around %s for %d guests.", spokenTime(grid), req.PartySize),
		})
	}
	views := make([]slotView, 0, len(alts))
	for i := range alts {
		views = append(views, viewSlot(&alts[i], loc))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status":       statusPartialMatch,
		"alternatives": views,
		"message":      fmt.Sprintf("That exact time isn't available, but we do have %s.", spokenTime(alts[0].StartsAt.In(loc))),
	})
}

// maxAlternatives bounds the alternative list; the search window is
// fixed at ±2 hours.  Both are deliberate constants, not per-restaurant
// settings.
const (
	maxAlternatives = 3
	windowHalfWidth = 2 * time.Hour
)

// needsLargePartyHandoff reports whether a party is big enough that the
// restaurant wants to arrange it personally instead of auto-booking.
// The dialogue engine reacts by creating a LARGE_PARTY callback.  A zero
// threshold disables the handoff.
func needsLargePartyHandoff(rest *model.Restaurant, partySize int) bool {
	return rest.LargePartyThreshold > 0 && partySize >= rest.LargePartyThreshold
}

// normalizePref maps the request's seating preference onto the repo
// convention: a concrete area string, or "" for no preference.
func normalizePref(p string) string {
	if model.ValidSeatingArea(p) {
		return p
	}
	return ""
}

// hoursCause checks a local request time against the weekday's service
// window.  Returns "" when bookable, RESTAURANT_CLOSED when the day has
// no service, OUTSIDE_HOURS when the time misses the window or falls
// inside the last-seating cutoff before close.
func hoursCause(local time.Time, h *model.OpeningHours, lastSeatingOffsetMin int) string {
	if h.IsClosed {
		return codeRestaurantClosed
	}
	m := utils.MinutesIntoDay(local)
	if m < h.OpensAtMin || m > h.ClosesAtMin-lastSeatingOffsetMin {
		return codeOutsideHours
	}
	return ""
}

// searchWindow clips the ±2h alternative window to the day's bookable
// hours so alternatives never land before opening or past last seating.
func searchWindow(grid time.Time, h *model.OpeningHours, lastSeatingOffsetMin int) (time.Time, time.Time) {
	dayStart := time.Date(grid.Year(), grid.Month(), grid.Day(), 0, 0, 0, 0, grid.Location())
	open := dayStart.Add(time.Duration(h.OpensAtMin) * time.Minute)
	last := dayStart.Add(time.Duration(h.ClosesAtMin-lastSeatingOffsetMin) * time.Minute)
	from := grid.Add(-windowHalfWidth)
	if from.Before(open) {
		from = open
	}
	to := grid.Add(windowHalfWidth)
	if to.After(last) {
		to = last
	}
	return from, to
}

// spokenTime renders a time the way the voice script reads it back.
func spokenTime(t time.Time) string {
	return t.Format("3:04 PM on Monday, January 2")
}
