package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validBookingReq() bookingReq {
	return bookingReq{
		RestaurantID:  1,
		CustomerName:  "Dana Reyes",
		CustomerPhone: "+14155551234",
		RequestedTime: "2026-09-04T19:30:00-04:00",
		PartySize:     4,
	}
}

func TestValidateBookingReq(t *testing.T) {
	req := validBookingReq()
	code, _ := validateBookingReq(&req)
	assert.Equal(t, "", code)

	// A slot id can stand in for the requested time.
	req = validBookingReq()
	req.RequestedTime = ""
	req.TimeSlotID = 42
	code, _ = validateBookingReq(&req)
	assert.Equal(t, "", code)
}

func TestValidateBookingReqFailures(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*bookingReq)
		want   string
	}{
		{"missing name", func(r *bookingReq) { r.CustomerName = "  " }, codeMissingName},
		{"missing phone", func(r *bookingReq) { r.CustomerPhone = "" }, codeMissingPhone},
		{"missing datetime and slot", func(r *bookingReq) { r.RequestedTime = ""; r.TimeSlotID = 0 }, codeMissingDatetime},
		{"party too small", func(r *bookingReq) { r.PartySize = 0 }, codeInvalidPartySize},
		{"party too large", func(r *bookingReq) { r.PartySize = 21 }, codeInvalidPartySize},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validBookingReq()
			tc.mutate(&req)
			code, msg := validateBookingReq(&req)
			assert.Equal(t, tc.want, code)
			assert.NotEmpty(t, msg)
		})
	}
}

func TestValidationOrderNameBeforePhone(t *testing.T) {
	// The dialogue engine asks for whichever field comes back first, so
	// the check order is part of the contract.
	req := validBookingReq()
	req.CustomerName = ""
	req.CustomerPhone = ""
	code, _ := validateBookingReq(&req)
	assert.Equal(t, codeMissingName, code)
}
