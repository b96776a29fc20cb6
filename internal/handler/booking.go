package handler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/voicetable/reservation-engine/internal/model"
	"github.com/voicetable/reservation-engine/internal/queue"
	"github.com/voicetable/reservation-engine/internal/repository"
	"github.com/voicetable/reservation-engine/internal/service"
	"github.com/voicetable/reservation-engine/internal/utils"
)

// BookingHandler serves CreateBooking.  The whole booking runs as one
// database transaction: slot acquisition (skip-locked), capacity
// re-check, customer upsert, reservation insert and the capacity
// increment either all land or none do.  No network I/O happens inside
// the transaction; the confirmation event is published after commit.
type BookingHandler struct {
	RestaurantRepo  *repository.RestaurantRepo
	SlotRepo        *repository.TimeSlotRepo
	ReservationRepo *repository.ReservationRepo
	CustomerRepo    *repository.CustomerRepo
	CallRepo        *repository.CallRepo
}

// NewBookingHandler constructs a BookingHandler with the provided
// repositories.  All dependencies must be non-nil.
func NewBookingHandler(restaurantRepo *repository.RestaurantRepo, slotRepo *repository.TimeSlotRepo, reservationRepo *repository.ReservationRepo, customerRepo *repository.CustomerRepo, callRepo *repository.CallRepo) *BookingHandler {
	if restaurantRepo == nil || slotRepo == nil || reservationRepo == nil || customerRepo == nil || callRepo == nil {
		panic("nil repository passed to NewBookingHandler")
	}
	return &BookingHandler{
		RestaurantRepo:  restaurantRepo,
		SlotRepo:        slotRepo,
		ReservationRepo: reservationRepo,
		CustomerRepo:    customerRepo,
		CallRepo:        callRepo,
	}
}

type bookingReq struct {
	RestaurantID    uint64 `json:"restaurant_id"`
	ExternalCallID  string `json:"external_call_id"`
	CustomerName    string `json:"customer_name"`
	CustomerPhone   string `json:"customer_phone"`
	CustomerEmail   string `json:"customer_email"`
	ContactConsent  bool   `json:"contact_consent"`
	TimeSlotID      uint64 `json:"time_slot_id"`
	RequestedTime   string `json:"requested_time"` // RFC3339, used when time_slot_id is 0
	PartySize       int    `json:"party_size"`
	SeatingArea     string `json:"seating_area"`
	SpecialRequests string `json:"special_requests"`
}

// Create handles POST /v1/bookings.  Outcomes:
//   - 201 status=booked with booking id, confirmation code, customer id
//   - 409 status=conflict (SLOT_UNAVAILABLE / INSUFFICIENT_CAPACITY);
//     the caller should re-run availability and offer an alternative
//   - 500 status=error (INTERNAL_ERROR); the caller should create a
//     callback instead of retrying blindly
func (h *BookingHandler) Create(c echo.Context) error {
	var req bookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if code, msg := validateBookingReq(&req); code != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error_code": code, "message": msg})
	}
	phone, err := utils.NormalizePhone(req.CustomerPhone)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error_code": codeInvalidPhone,
			"message":    "That phone number doesn't look right, could you repeat it?",
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
	if req.PartySize > rest.MaxPartySize {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error_code": codeInvalidPartySize,
			"message":    fmt.Sprintf("We can't book parties larger than %d directly.", rest.MaxPartySize),
		})
	}
	if needsLargePartyHandoff(rest, req.PartySize) {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error_code": codeLargeParty,
			"message":    fmt.Sprintf("Groups of %d or more are arranged by the restaurant directly. I'll have them call you back.", rest.LargePartyThreshold),
		})
	}

	tx, err := h.SlotRepo.DB().BeginTx(ctx, nil)
	if err != nil {
		return internalError(c)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	slot, err := h.acquireSlot(ctx, tx, rest, &req)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrSlotNotFound), errors.Is(err, repository.ErrSlotConflict):
			// Locked by a concurrent booking, vanished, or was never
			// there: either way the caller re-runs availability.
			return c.JSON(http.StatusConflict, echo.Map{
				"status":     statusConflict,
				"error_code": codeSlotUnavailable,
				"message":    "That table was just taken. Let me check what else is open.",
			})
		default:
			return internalError(c)
		}
	}
	// Re-verify even when the caller supplied a slot id from an earlier
	// availability check; the two calls are not atomic together.
	if slot.Available() < req.PartySize {
		return c.JSON(http.StatusConflict, echo.Map{
			"status":     statusConflict,
			"error_code": codeInsufficientCapacity,
			"message":    fmt.Sprintf("We only have room for %d at that time now.", slot.Available()),
		})
	}

	var callID *uint64
	if strings.TrimSpace(req.ExternalCallID) != "" {
		id, err := h.CallRepo.EnsureTx(ctx, tx, rest.ID, strings.TrimSpace(req.ExternalCallID))
		if err != nil {
			return internalError(c)
		}
		callID = &id
	}

	var email *string
	if e := strings.TrimSpace(req.CustomerEmail); e != "" {
		email = &e
	}
	customerID, err := h.CustomerRepo.UpsertTx(ctx, tx, rest.ID,
		utils.PhoneFingerprint(phone), strings.TrimSpace(req.CustomerName), email, req.ContactConsent)
	if err != nil {
		return internalError(c)
	}

	code, err := h.uniqueCode(ctx, tx, rest.ID)
	if err != nil {
		return internalError(c)
	}

	res := &model.Reservation{
		RestaurantID:     rest.ID,
		TimeSlotID:       slot.ID,
		CustomerID:       &customerID,
		CallID:           callID,
		ConfirmationCode: code,
		PartySize:        req.PartySize,
		SeatingArea:      slot.SeatingArea,
		SpecialRequests:  strings.TrimSpace(req.SpecialRequests),
		Status:           model.ReservationConfirmed,
	}
	if err := h.ReservationRepo.CreateTx(ctx, tx, res); err != nil {
		return internalError(c)
	}
	// The increment lives in the same transaction as the insert; a crash
	// between them can never leave the ledger out of step.
	if err := h.SlotRepo.AdjustBookedTx(ctx, tx, slot.ID, req.PartySize); err != nil {
		if errors.Is(err, repository.ErrSlotConflict) {
			return c.JSON(http.StatusConflict, echo.Map{
				"status":     statusConflict,
				"error_code": codeInsufficientCapacity,
				"message":    "That table was just taken. Let me check what else is open.",
			})
		}
		return internalError(c)
	}
	if err := tx.Commit(); err != nil {
		return internalError(c)
	}
	committed = true

	// Post-commit: hand the confirmation to the notifier queue.  Failures
	// are logged and ignored; the booking already happened.
	loc := rest.Location()
	if err := service.PublishReservationConfirmed(ctx, queue.ReservationConfirmedEvent{
		ReservationID:    res.ID,
		RestaurantID:     rest.ID,
		RestaurantName:   rest.Name,
		CustomerID:       customerID,
		ConfirmationCode: res.ConfirmationCode,
		PartySize:        res.PartySize,
		SeatingArea:      res.SeatingArea,
		StartsAt:         slot.StartsAt.In(loc).Format(time.RFC3339),
		ContactConsent:   req.ContactConsent,
		ConfirmedAt:      time.Now().UTC().Format(time.RFC3339),
	}); err != nil {
		log.Printf("booking: publish confirmation event failed: %v", err)
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"status":            statusBooked,
		"booking_id":        res.ID,
		"confirmation_code": res.ConfirmationCode,
		"customer_id":       customerID,
		"message":           fmt.Sprintf("You're all set for %s. Your confirmation code is %s.", spokenTime(slot.StartsAt.In(loc)), res.ConfirmationCode),
	})
}

// acquireSlot locates and locks the target slot: by id when the caller
// kept one from availability, otherwise by snapped time and seating
// area.  The lock is skip-locked, so contention surfaces as
// ErrSlotConflict instead of blocking.
func (h *BookingHandler) acquireSlot(ctx context.Context, tx *sql.Tx, rest *model.Restaurant, req *bookingReq) (*model.TimeSlot, error) {
	if req.TimeSlotID != 0 {
		return h.SlotRepo.AcquireTx(ctx, tx, rest.ID, req.TimeSlotID)
	}
	requested, err := time.Parse(time.RFC3339, req.RequestedTime)
	if err != nil {
		return nil, repository.ErrSlotNotFound
	}
	grid := utils.SnapToGrid(requested.In(rest.Location()))
	area := req.SeatingArea
	if !model.ValidSeatingArea(area) {
		// No concrete area given: pick the best exact-time candidate with
		// an advisory read, then lock it by id.
		slot, err := h.SlotRepo.FindExact(ctx, rest.ID, grid, "", req.PartySize)
		if err != nil {
			return nil, err
		}
		if slot == nil {
			return nil, repository.ErrSlotNotFound
		}
		return h.SlotRepo.AcquireTx(ctx, tx, rest.ID, slot.ID)
	}
	return h.SlotRepo.AcquireByTimeTx(ctx, tx, rest.ID, grid, area)
}

// uniqueCode draws confirmation codes until one misses the restaurant's
// reservation history.  Collisions are rare with a 31^6 space but are
// checked, not assumed away.
func (h *BookingHandler) uniqueCode(ctx context.Context, tx *sql.Tx, restaurantID uint64) (string, error) {
	for i := 0; i < 10; i++ {
		code, err := utils.NewConfirmationCode()
		if err != nil {
			return "", err
		}
		exists, err := h.ReservationRepo.CodeExistsTx(ctx, tx, restaurantID, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", errors.New("could not generate a unique confirmation code")
}

func validateBookingReq(req *bookingReq) (string, string) {
	if strings.TrimSpace(req.CustomerName) == "" {
		return codeMissingName, "A name is required for the reservation."
	}
	if strings.TrimSpace(req.CustomerPhone) == "" {
		return codeMissingPhone, "A phone number is required for the reservation."
	}
	if req.TimeSlotID == 0 && strings.TrimSpace(req.RequestedTime) == "" {
		return codeMissingDatetime, "A reservation time is required."
	}
	if req.PartySize < 1 || req.PartySize > 20 {
		return codeInvalidPartySize, "We can take parties of 1 to 20 guests."
	}
	return "", ""
}

func internalError(c echo.Context) error {
	return c.JSON(http.StatusInternalServerError, echo.Map{
		"status":     statusError,
		"error_code": codeInternalError,
		"message":    fallbackMessage,
	})
}
