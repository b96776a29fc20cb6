package router

import (
	"github.com/labstack/echo/v4"

	"github.com/voicetable/reservation-engine/internal/handler"
)

// RegisterVoice registers the endpoints the voice platform calls during
// a phone conversation.  They authenticate at the network layer, not
// per-request; rateLimit guards against retry storms.  None of these
// routes is cached: availability must always reflect live capacity.
func RegisterVoice(e *echo.Echo, av *handler.AvailabilityHandler, bk *handler.BookingHandler,
	cl *handler.CallLogHandler, cb *handler.CallbackHandler, rateLimit echo.MiddlewareFunc) {
	g := e.Group("/v1", rateLimit)
	g.POST("/availability", av.Check)
	g.POST("/bookings", bk.Create)
	g.POST("/calls", cl.Log)
	g.POST("/callbacks", cb.Create)
}
