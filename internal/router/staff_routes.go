package router

import (
	"github.com/labstack/echo/v4"

	"github.com/voicetable/reservation-engine/internal/handler"
	"github.com/voicetable/reservation-engine/internal/middleware"
	"github.com/voicetable/reservation-engine/internal/model"
)

// RegisterStaff registers the dashboard endpoints under /v1/staff.  All
// routes require a valid JWT; the rid claim scopes every query to the
// staff member's restaurant.  The response cache wraps the read-only
// stats route only, mutations and the live queue stay uncached.
func RegisterStaff(e *echo.Echo, cb *handler.CallbackHandler, rs *handler.ReservationHandler,
	st *handler.StatsHandler, cu *handler.CustomerHandler, jwtSecret string, cache echo.MiddlewareFunc) {
	g := e.Group(
		"/v1/staff",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleManager, model.RoleHost),
	)

	// ---- Callback queue ----
	g.GET("/callbacks", cb.ListPending)
	g.POST("/callbacks/:id/resolve", cb.Resolve)

	// ---- Reservations ----
	g.GET("/reservations", rs.ListByDate)
	g.PATCH("/reservations/:id/status", rs.UpdateStatus)

	// ---- Customer directory ----
	g.GET("/customers", cu.Lookup)

	// ---- Daily stats ----
	g.GET("/stats/daily", st.Daily, cache)
}
