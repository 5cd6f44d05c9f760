package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/cinema-seat-booking/internal/booking"
	"github.com/iliyamo/cinema-seat-booking/internal/middleware"
	"github.com/iliyamo/cinema-seat-booking/internal/session"
)

// BookingService is the part of booking.Service the handlers use.
type BookingService interface {
	Layout(ctx context.Context, showtimeID uint64) (booking.Summary, error)
	Summary(ctx context.Context, who session.Identity, showtimeID uint64) (booking.Summary, error)
	Toggle(ctx context.Context, who session.Identity, showtimeID uint64, seat string) (booking.Summary, error)
	Reset(ctx context.Context, who session.Identity, showtimeID uint64) (booking.Summary, error)
	Submit(ctx context.Context, who session.Identity, req booking.Request) (*booking.Confirmation, error)
}

// BookingHandler serves seat maps, selections and booking submission.
// Customer endpoints expect JWTAuth to have stored the identity.
type BookingHandler struct {
	svc BookingService
	log *zap.Logger
}

// NewBookingHandler panics on a nil service.
func NewBookingHandler(svc BookingService, log *zap.Logger) *BookingHandler {
	if svc == nil {
		panic("nil service passed to NewBookingHandler")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &BookingHandler{svc: svc, log: log}
}

func (h *BookingHandler) fail(c echo.Context, err error) error {
	status, msg := statusOf(err)
	if status >= http.StatusInternalServerError {
		h.log.Error("request failed", zap.String("route", c.Path()), zap.Error(err))
	}
	return c.JSON(status, echo.Map{"error": msg})
}

// Layout handles GET /v1/showtimes/:id/layout. Public; no selection.
func (h *BookingHandler) Layout(c echo.Context) error {
	id, ok := parseID(c.Param("id"))
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid showtime id"})
	}
	sum, err := h.svc.Layout(c.Request().Context(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, sum)
}

// Selection handles GET /v1/showtimes/:id/selection.
func (h *BookingHandler) Selection(c echo.Context) error {
	return h.withShowtime(c, func(ctx context.Context, who session.Identity, id uint64) (booking.Summary, error) {
		return h.svc.Summary(ctx, who, id)
	})
}

// Toggle handles POST /v1/showtimes/:id/seats/:seat/toggle.
func (h *BookingHandler) Toggle(c echo.Context) error {
	seat := c.Param("seat")
	return h.withShowtime(c, func(ctx context.Context, who session.Identity, id uint64) (booking.Summary, error) {
		return h.svc.Toggle(ctx, who, id, seat)
	})
}

// Reset handles DELETE /v1/showtimes/:id/selection.
func (h *BookingHandler) Reset(c echo.Context) error {
	return h.withShowtime(c, func(ctx context.Context, who session.Identity, id uint64) (booking.Summary, error) {
		return h.svc.Reset(ctx, who, id)
	})
}

func (h *BookingHandler) withShowtime(c echo.Context, fn func(context.Context, session.Identity, uint64) (booking.Summary, error)) error {
	who, ok := middleware.IdentityFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := parseID(c.Param("id"))
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid showtime id"})
	}
	sum, err := fn(c.Request().Context(), who, id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, sum)
}

type submitRequest struct {
	ShowtimeID    uint64   `json:"showtime_id"`
	PaymentMethod string   `json:"payment_method"`
	Seats         []string `json:"seats"`
}

// Submit handles POST /v1/bookings. Without "seats" the stored selection
// is booked. Returns 201 with the confirmation.
func (h *BookingHandler) Submit(c echo.Context) error {
	who, ok := middleware.IdentityFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body submitRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.ShowtimeID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "showtime_id is required"})
	}
	conf, err := h.svc.Submit(c.Request().Context(), who, booking.Request{
		ShowtimeID:    body.ShowtimeID,
		Seats:         body.Seats,
		PaymentMethod: body.PaymentMethod,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, conf)
}
