package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-seat-booking/internal/handler"
	"github.com/iliyamo/cinema-seat-booking/internal/middleware"
	"github.com/iliyamo/cinema-seat-booking/internal/session"
)

// RegisterCustomer registers the selection and booking endpoints. All of
// them require a valid JWT and the CUSTOMER role. limiter guards seat
// toggles and may be nil.
func RegisterCustomer(e *echo.Echo, h *handler.BookingHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(session.RoleCustomer),
	)

	var toggleMW []echo.MiddlewareFunc
	if limiter != nil {
		toggleMW = append(toggleMW, limiter)
	}
	g.GET("/showtimes/:id/selection", h.Selection)
	g.POST("/showtimes/:id/seats/:seat/toggle", h.Toggle, toggleMW...)
	g.DELETE("/showtimes/:id/selection", h.Reset)
	g.POST("/bookings", h.Submit)
}
