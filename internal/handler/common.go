package handler // handler defines http handlers for the booking engine API

import (
	"errors"
	"strconv"

	"github.com/labstack/echo/v4"
)

// Machine error codes returned alongside status fields.  The dialogue
// engine branches on these, so they are part of the wire contract and
// never change meaning.
const (
	codeInvalidPartySize     = "INVALID_PARTY_SIZE"
	codeInvalidDate          = "INVALID_DATE"
	codeDateTooFar           = "DATE_TOO_FAR"
	codeRestaurantNotFound   = "RESTAURANT_NOT_FOUND"
	codeRestaurantClosed     = "RESTAURANT_CLOSED"
	codeOutsideHours         = "OUTSIDE_HOURS"
	codeDateBlocked          = "DATE_BLOCKED"
	codeLargeParty           = "LARGE_PARTY"
	codeMissingName          = "MISSING_NAME"
	codeMissingPhone         = "MISSING_PHONE"
	codeInvalidPhone         = "INVALID_PHONE"
	codeMissingDatetime      = "MISSING_DATETIME"
	codeMissingCallID        = "MISSING_CALL_ID"
	codeSlotUnavailable      = "SLOT_UNAVAILABLE"
	codeInsufficientCapacity = "INSUFFICIENT_CAPACITY"
	codeNotFound             = "NOT_FOUND"
	codeAlreadyResolved      = "ALREADY_RESOLVED"
	codeInternalError        = "INTERNAL_ERROR"
)

// Availability / booking outcome statuses.
const (
	statusAvailable    = "available"
	statusPartialMatch = "partial_match"
	statusUnavailable  = "unavailable"
	statusBooked       = "booked"
	statusConflict     = "conflict"
	statusError        = "error"
)

// fallbackMessage is the safe spoken response for internal errors; the
// dialogue engine reads it verbatim to the caller.
const fallbackMessage = "I'm sorry, something went wrong on our end. Let me take your details and have the restaurant call you back."

// getStaffID extracts the authenticated staff id stored by the JWT middleware.
func getStaffID(c echo.Context) (uint64, error) {
	return contextUint(c, "user_id")
}

// getStaffRestaurantID extracts the restaurant scope of the staff token.
func getStaffRestaurantID(c echo.Context) (uint64, error) {
	return contextUint(c, "restaurant_id")
}

// contextParamUint parses a numeric path parameter.
func contextParamUint(c echo.Context, name string) (uint64, error) {
	return strconv.ParseUint(c.Param(name), 10, 64)
}

// queryInt parses an optional integer query parameter with a default.
func queryInt(c echo.Context, name string, def int) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

func contextUint(c echo.Context, key string) (uint64, error) {
	v := c.Get(key)
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid " + key + " in context")
}
