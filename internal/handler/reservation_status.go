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

// ReservationHandler serves the staff lifecycle endpoints: status
// transitions on a reservation and the day sheet listing.  A transition
// and its capacity effect on the slot commit together or not at all.
type ReservationHandler struct {
	RestaurantRepo  *repository.RestaurantRepo
	ReservationRepo *repository.ReservationRepo
	SlotRepo        *repository.TimeSlotRepo
}

// NewReservationHandler constructs a ReservationHandler.
func NewReservationHandler(restaurantRepo *repository.RestaurantRepo, reservationRepo *repository.ReservationRepo, slotRepo *repository.TimeSlotRepo) *ReservationHandler {
	if restaurantRepo == nil || reservationRepo == nil || slotRepo == nil {
		panic("nil repository passed to NewReservationHandler")
	}
	return &ReservationHandler{RestaurantRepo: restaurantRepo, ReservationRepo: reservationRepo, SlotRepo: slotRepo}
}

type statusReq struct {
	Status string `json:"status"`
}

// UpdateStatus handles PATCH /v1/staff/reservations/:id/status.
// Allowed transitions form a small graph; cancelling releases the
// seats, reinstating re-takes them (and can fail with 409 if the slot
// has since filled), and no_show bumps the customer's counter.
func (h *ReservationHandler) UpdateStatus(c echo.Context) error {
	restaurantID, err := getStaffRestaurantID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
	}
	id, err := contextParamUint(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error_code": codeNotFound, "message": "invalid reservation id"})
	}
	var req statusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	next := strings.TrimSpace(strings.ToLower(req.Status))
	if !model.ValidReservationStatus(next) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status " + next})
	}

	ctx := c.Request().Context()
	tx, err := h.ReservationRepo.DB().BeginTx(ctx, nil)
	if err != nil {
		return internalError(c)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := h.ReservationRepo.GetForUpdateTx(ctx, tx, restaurantID, id)
	if err != nil {
		if errors.Is(err, repository.ErrReservationNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error_code": codeNotFound, "message": "reservation not found"})
		}
		return internalError(c)
	}
	if !model.CanTransition(res.Status, next) {
		return c.JSON(http.StatusConflict, echo.Map{
			"error": "cannot move a " + res.Status + " reservation to " + next,
		})
	}

	// Seats are held by confirmed and seated reservations only; moving
	// across that boundary adjusts the slot inside the same transaction.
	delta := 0
	if model.HoldsCapacity(res.Status) && !model.HoldsCapacity(next) {
		delta = -res.PartySize
	} else if !model.HoldsCapacity(res.Status) && model.HoldsCapacity(next) {
		delta = res.PartySize
	}
	if delta != 0 {
		if err := h.SlotRepo.AdjustBookedTx(ctx, tx, res.TimeSlotID, delta); err != nil {
			if errors.Is(err, repository.ErrSlotConflict) {
				return c.JSON(http.StatusConflict, echo.Map{
					"error_code": codeInsufficientCapacity,
					"message":    "the slot no longer has room for this party",
				})
			}
			return internalError(c)
		}
	}
	if next == model.ReservationNoShow {
		if err := h.ReservationRepo.IncrementNoShowTx(ctx, tx, res.CustomerID); err != nil {
			return internalError(c)
		}
	}
	if err := h.ReservationRepo.UpdateStatusTx(ctx, tx, res.ID, next); err != nil {
		return internalError(c)
	}
	if err := tx.Commit(); err != nil {
		return internalError(c)
	}
	committed = true

	return c.JSON(http.StatusOK, echo.Map{"reservation_id": res.ID, "status": next})
}

// ListByDate handles GET /v1/staff/reservations?date=YYYY-MM-DD.  The
// day is interpreted in the restaurant's timezone; default is today.
func (h *ReservationHandler) ListByDate(c echo.Context) error {
	restaurantID, err := getStaffRestaurantID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
	}
	rest, err := h.RestaurantRepo.GetByID(c.Request().Context(), restaurantID)
	if err != nil {
		return internalError(c)
	}
	loc := rest.Location()

	day := time.Now().In(loc)
	if raw := c.QueryParam("date"); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, loc)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error_code": codeInvalidDate, "message": "date must be YYYY-MM-DD"})
		}
		day = parsed
	}
	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc)
	to := from.AddDate(0, 0, 1)

	list, err := h.ReservationRepo.ListByDate(c.Request().Context(), restaurantID, from, to)
	if err != nil {
		return internalError(c)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"date":         from.Format("2006-01-02"),
		"reservations": list,
		"count":        len(list),
	})
}
