package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/voicetable/reservation-engine/internal/repository"
)

// StatsHandler serves the dashboard's daily rollup reads.
type StatsHandler struct {
	RestaurantRepo *repository.RestaurantRepo
	StatsRepo      *repository.StatsRepo
}

// NewStatsHandler constructs a StatsHandler.
func NewStatsHandler(restaurantRepo *repository.RestaurantRepo, statsRepo *repository.StatsRepo) *StatsHandler {
	if restaurantRepo == nil || statsRepo == nil {
		panic("nil repository passed to NewStatsHandler")
	}
	return &StatsHandler{RestaurantRepo: restaurantRepo, StatsRepo: statsRepo}
}

// Daily handles GET /v1/staff/stats/daily?from=&to=.  Dates are local to
// the restaurant, matching how the rollup buckets calls, so the default
// "today" is the restaurant's today even when the server clock has
// already rolled past midnight UTC.  The default range is the last 7
// days.  Passing a single-day range with hours=1 includes the hourly
// call histogram.
func (h *StatsHandler) Daily(c echo.Context) error {
	restaurantID, err := getStaffRestaurantID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
	}
	ctx := c.Request().Context()
	rest, err := h.RestaurantRepo.GetByID(ctx, restaurantID)
	if err != nil {
		return internalError(c)
	}

	from, to, err := statsRange(c.QueryParam("from"), c.QueryParam("to"), time.Now().In(rest.Location()))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error_code": codeInvalidDate, "message": "dates must be YYYY-MM-DD"})
	}

	days, err := h.StatsRepo.ListRange(ctx, restaurantID, from, to)
	if err != nil {
		return internalError(c)
	}
	resp := echo.Map{"from": from, "to": to, "days": days}

	if c.QueryParam("hours") == "1" && from == to {
		hours, err := h.StatsRepo.Hours(ctx, restaurantID, from)
		if err != nil {
			return internalError(c)
		}
		resp["hours"] = hours
	}
	return c.JSON(http.StatusOK, resp)
}

// statsRange resolves the requested date pair: to defaults to now's
// calendar date (now must already be in the restaurant's timezone), from
// defaults to six days before to, and a reversed pair is swapped rather
// than rejected.
func statsRange(from, to string, now time.Time) (string, string, error) {
	if to == "" {
		to = now.Format("2006-01-02")
	}
	end, err := time.Parse("2006-01-02", to)
	if err != nil {
		return "", "", err
	}
	if from == "" {
		from = end.AddDate(0, 0, -6).Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", from); err != nil {
		return "", "", err
	}
	if from > to {
		from, to = to, from
	}
	return from, to, nil
}
