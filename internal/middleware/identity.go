package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-seat-booking/internal/session"
)

const identityKey = "identity"

// SetIdentity stores who on the request context.
func SetIdentity(c echo.Context, who session.Identity) {
	c.Set(identityKey, who)
}

// IdentityFrom returns the identity resolved by JWTAuth.
func IdentityFrom(c echo.Context) (session.Identity, bool) {
	who, ok := c.Get(identityKey).(session.Identity)
	return who, ok && who.Valid()
}

// userKey is the user part of rate-limit keys; "anon" without identity.
func userKey(c echo.Context) string {
	if who, ok := IdentityFrom(c); ok {
		return who.String()
	}
	return "anon"
}
