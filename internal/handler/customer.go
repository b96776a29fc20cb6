package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/voicetable/reservation-engine/internal/repository"
	"github.com/voicetable/reservation-engine/internal/utils"
)

// CustomerHandler serves the staff directory lookup.  Hosts use it to
// recognize a caller before picking up a callback: the phone number is
// normalized and fingerprinted the same way bookings do it, so any
// format of the same number finds the same entry.
type CustomerHandler struct {
	CustomerRepo *repository.CustomerRepo
}

// NewCustomerHandler constructs a CustomerHandler.
func NewCustomerHandler(customerRepo *repository.CustomerRepo) *CustomerHandler {
	if customerRepo == nil {
		panic("nil repository passed to NewCustomerHandler")
	}
	return &CustomerHandler{CustomerRepo: customerRepo}
}

// Lookup handles GET /v1/staff/customers?phone=.  Returns found=false
// rather than 404 when the caller has never booked, so the dashboard can
// render "new caller" without treating it as an error.
func (h *CustomerHandler) Lookup(c echo.Context) error {
	restaurantID, err := getStaffRestaurantID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
	}
	phone, err := utils.NormalizePhone(c.QueryParam("phone"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error_code": codeInvalidPhone,
			"message":    "phone must be a dialable number",
		})
	}

	cust, err := h.CustomerRepo.GetByFingerprint(c.Request().Context(), restaurantID, utils.PhoneFingerprint(phone))
	if err != nil {
		return internalError(c)
	}
	if cust == nil {
		return c.JSON(http.StatusOK, echo.Map{"found": false})
	}

	resp := echo.Map{
		"found": true,
		"customer": echo.Map{
			"id":            cust.ID,
			"name":          cust.Name,
			"visit_count":   cust.VisitCount,
			"no_show_count": cust.NoShowCount,
			"is_vip":        cust.IsVIP,
			"last_seen_at":  cust.LastSeenAt.UTC().Format(time.RFC3339),
		},
	}
	return c.JSON(http.StatusOK, resp)
}
