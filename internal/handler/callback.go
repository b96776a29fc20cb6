package handler

import (
	"errors"
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

// CallbackHandler serves the escalation queue: creation from the voice
// side, listing and resolution from the staff dashboard.
type CallbackHandler struct {
	RestaurantRepo *repository.RestaurantRepo
	CallbackRepo   *repository.CallbackRepo
	CallRepo       *repository.CallRepo
	StaffRepo      *repository.StaffRepo
}

// NewCallbackHandler constructs a CallbackHandler.
func NewCallbackHandler(restaurantRepo *repository.RestaurantRepo, callbackRepo *repository.CallbackRepo, callRepo *repository.CallRepo, staffRepo *repository.StaffRepo) *CallbackHandler {
	if restaurantRepo == nil || callbackRepo == nil || callRepo == nil || staffRepo == nil {
		panic("nil repository passed to NewCallbackHandler")
	}
	return &CallbackHandler{
		RestaurantRepo: restaurantRepo,
		CallbackRepo:   callbackRepo,
		CallRepo:       callRepo,
		StaffRepo:      staffRepo,
	}
}

type callbackReq struct {
	RestaurantID   uint64 `json:"restaurant_id"`
	ExternalCallID string `json:"external_call_id"`
	CustomerName   string `json:"customer_name"`
	CustomerPhone  string `json:"customer_phone"`
	RequestedTime  string `json:"requested_time"` // RFC3339, optional
	PartySize      int    `json:"party_size"`
	SeatingArea    string `json:"seating_area"`
	Reason         string `json:"reason"`
}

// Create handles POST /v1/callbacks.  The priority is derived from the
// reason; urgent tiers additionally raise an alert event after commit.
func (h *CallbackHandler) Create(c echo.Context) error {
	var req callbackReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	phone, err := utils.NormalizePhone(req.CustomerPhone)
	if err != nil {
		if strings.TrimSpace(req.CustomerPhone) == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{
				"error_code": codeMissingPhone,
				"message":    "A phone number is required so the restaurant can call back.",
			})
		}
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

	reason := strings.TrimSpace(strings.ToUpper(req.Reason))
	if reason == "" {
		reason = model.CauseGeneralInquiry
	}
	cb := &model.Callback{
		RestaurantID:  rest.ID,
		CustomerName:  strings.TrimSpace(req.CustomerName),
		CustomerPhone: phone,
		RequestedTime: parseOptionalTime(req.RequestedTime),
		PartySize:     req.PartySize,
		SeatingArea:   strings.TrimSpace(req.SeatingArea),
		Reason:        reason,
		Priority:      model.PriorityForCause(reason),
	}

	tx, err := h.CallbackRepo.DB().BeginTx(ctx, nil)
	if err != nil {
		return internalError(c)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if ext := strings.TrimSpace(req.ExternalCallID); ext != "" {
		callID, err := h.CallRepo.EnsureTx(ctx, tx, rest.ID, ext)
		if err != nil {
			return internalError(c)
		}
		cb.CallID = &callID
	}
	if err := h.CallbackRepo.CreateTx(ctx, tx, cb); err != nil {
		return internalError(c)
	}
	if cb.CallID != nil {
		if err := h.CallRepo.LinkCallbackTx(ctx, tx, *cb.CallID, cb.ID); err != nil {
			return internalError(c)
		}
	}
	if err := tx.Commit(); err != nil {
		return internalError(c)
	}
	committed = true

	urgent := cb.Priority <= model.UrgentPriority
	if err := service.PublishCallbackCreated(ctx, queue.CallbackCreatedEvent{
		CallbackID:     cb.ID,
		RestaurantID:   rest.ID,
		RestaurantName: rest.Name,
		CustomerName:   cb.CustomerName,
		CustomerPhone:  cb.CustomerPhone,
		Reason:         cb.Reason,
		Priority:       cb.Priority,
		Urgent:         urgent,
		CreatedAt:      cb.CreatedAt.UTC().Format(time.RFC3339),
	}); err != nil {
		log.Printf("callback: publish created event failed: %v", err)
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"callback_id": cb.ID,
		"priority":    cb.Priority,
		"urgent":      urgent,
		"message":     "The restaurant will call you back shortly.",
	})
}

type resolveReq struct {
	Notes         string  `json:"notes"`
	ReservationID *uint64 `json:"reservation_id"`
}

// Resolve handles POST /v1/staff/callbacks/:id/resolve.  The callback
// must belong to the staff token's restaurant; resolving twice yields
// 409 ALREADY_RESOLVED.
func (h *CallbackHandler) Resolve(c echo.Context) error {
	staffID, err := getStaffID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
	}
	restaurantID, err := getStaffRestaurantID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
	}
	id, err := contextParamUint(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error_code": codeNotFound, "message": "invalid callback id"})
	}
	var req resolveReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx := c.Request().Context()
	if _, err := h.CallbackRepo.GetByID(ctx, restaurantID, id); err != nil {
		switch {
		case errors.Is(err, repository.ErrCallbackNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error_code": codeNotFound, "message": "callback not found"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "callback belongs to another restaurant"})
		default:
			return internalError(c)
		}
	}

	staff, err := h.StaffRepo.GetByID(ctx, staffID)
	if err != nil {
		return internalError(c)
	}

	tx, err := h.CallbackRepo.DB().BeginTx(ctx, nil)
	if err != nil {
		return internalError(c)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := h.CallbackRepo.ResolveTx(ctx, tx, id, staff.Email, strings.TrimSpace(req.Notes), req.ReservationID); err != nil {
		switch {
		case errors.Is(err, repository.ErrCallbackNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error_code": codeNotFound, "message": "callback not found"})
		case errors.Is(err, repository.ErrAlreadyResolved):
			return c.JSON(http.StatusConflict, echo.Map{"error_code": codeAlreadyResolved, "message": "callback is already resolved"})
		default:
			return internalError(c)
		}
	}
	if err := tx.Commit(); err != nil {
		return internalError(c)
	}
	committed = true

	return c.JSON(http.StatusOK, echo.Map{"callback_id": id, "status": model.CallbackResolved})
}

// callbackView is the dashboard wire shape for a queue entry.
type callbackView struct {
	ID            uint64  `json:"id"`
	CallID        *uint64 `json:"call_id,omitempty"`
	CustomerName  string  `json:"customer_name"`
	CustomerPhone string  `json:"customer_phone"`
	RequestedTime string  `json:"requested_time,omitempty"`
	PartySize     int     `json:"party_size,omitempty"`
	SeatingArea   string  `json:"seating_area,omitempty"`
	Reason        string  `json:"reason"`
	Priority      int     `json:"priority"`
	Status        string  `json:"status"`
	CreatedAt     string  `json:"created_at"`
}

// ListPending handles GET /v1/staff/callbacks.  Returns the open queue
// for the token's restaurant, most urgent first.
func (h *CallbackHandler) ListPending(c echo.Context) error {
	restaurantID, err := getStaffRestaurantID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
	}
	limit := queryInt(c, "limit", 50)
	if limit < 1 || limit > 200 {
		limit = 50
	}

	cbs, err := h.CallbackRepo.ListPending(c.Request().Context(), restaurantID, limit)
	if err != nil {
		return internalError(c)
	}
	views := make([]callbackView, 0, len(cbs))
	for i := range cbs {
		cb := &cbs[i]
		v := callbackView{
			ID:            cb.ID,
			CallID:        cb.CallID,
			CustomerName:  cb.CustomerName,
			CustomerPhone: cb.CustomerPhone,
			PartySize:     cb.PartySize,
			SeatingArea:   cb.SeatingArea,
			Reason:        cb.Reason,
			Priority:      cb.Priority,
			Status:        cb.Status,
			CreatedAt:     cb.CreatedAt.UTC().Format(time.RFC3339),
		}
		if cb.RequestedTime != nil {
			v.RequestedTime = cb.RequestedTime.UTC().Format(time.RFC3339)
		}
		views = append(views, v)
	}
	return c.JSON(http.StatusOK, echo.Map{"callbacks": views, "count": len(views)})
}
