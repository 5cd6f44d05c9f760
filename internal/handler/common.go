// Package handler implements the HTTP endpoints.
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/iliyamo/cinema-seat-booking/internal/booking"
	"github.com/iliyamo/cinema-seat-booking/internal/session"
	"github.com/iliyamo/cinema-seat-booking/internal/showtime"
)

func parseID(raw string) (uint64, bool) {
	id, err := strconv.ParseUint(raw, 10, 64)
	return id, err == nil && id != 0
}

// statusOf maps service errors to HTTP statuses and client-safe messages.
func statusOf(err error) (int, string) {
	switch {
	case errors.Is(err, session.ErrNoIdentity):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, session.ErrContention):
		return http.StatusConflict, "selection changed concurrently, try again"
	case errors.Is(err, showtime.ErrNotFound):
		return http.StatusNotFound, "showtime not found"
	case errors.Is(err, booking.ErrSeatConflict):
		return http.StatusConflict, "one or more seats are already booked"
	case errors.Is(err, booking.ErrInvalidSeat):
		return http.StatusBadRequest, "invalid seat id"
	case errors.Is(err, booking.ErrSeatUnavailable):
		return http.StatusBadRequest, "one or more seats cannot be booked"
	case errors.Is(err, booking.ErrEmptySelection):
		return http.StatusBadRequest, "no seats selected"
	case errors.Is(err, booking.ErrInvalidPaymentMethod):
		return http.StatusBadRequest, "unsupported payment method"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}
