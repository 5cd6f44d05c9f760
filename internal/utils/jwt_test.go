package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-seat-booking/internal/session"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	tok, err := NewAccessToken("secret", 42, session.RoleCustomer, time.Hour)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), tok.Exp, 5*time.Second)

	who, err := ParseAccessToken("secret", tok.Token)
	require.NoError(t, err)
	assert.Equal(t, session.Identity{UserID: 42, Role: session.RoleCustomer}, who)
}

func TestParseAccessTokenRejects(t *testing.T) {
	good, err := NewAccessToken("secret", 1, "CUSTOMER", time.Hour)
	require.NoError(t, err)
	expired, err := NewAccessToken("secret", 1, "CUSTOMER", -time.Minute)
	require.NoError(t, err)
	noneAlg, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "1", "exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	noSub := sign(t, jwt.MapClaims{"role": "CUSTOMER", "exp": time.Now().Add(time.Hour).Unix()})
	zeroSub := sign(t, jwt.MapClaims{"sub": "0", "exp": time.Now().Add(time.Hour).Unix()})
	noExp := sign(t, jwt.MapClaims{"sub": "1"})

	tests := map[string]struct{ secret, raw string }{
		"wrong secret": {"other", good.Token},
		"expired":      {"secret", expired.Token},
		"alg none":     {"secret", noneAlg},
		"garbage":      {"secret", "not.a.jwt"},
		"no sub":       {"secret", noSub},
		"zero sub":     {"secret", zeroSub},
		"no exp":       {"secret", noExp},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseAccessToken(tt.secret, tt.raw)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestParseAccessTokenNumericSubject(t *testing.T) {
	raw := sign(t, jwt.MapClaims{"sub": 9, "role": "OWNER", "exp": time.Now().Add(time.Hour).Unix()})
	who, err := ParseAccessToken("secret", raw)
	require.NoError(t, err)
	assert.Equal(t, uint64(9), who.UserID)
	assert.Equal(t, "OWNER", who.Role)
}

func sign(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)
	return s
}
