// Package utils provides access-token helpers.
package utils

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/iliyamo/cinema-seat-booking/internal/session"
)

// ErrInvalidToken is returned by ParseAccessToken for any unusable token.
var ErrInvalidToken = errors.New("invalid access token")

// AccessToken is a signed JWT and its expiry.
type AccessToken struct {
	Token string
	Exp   time.Time
}

// NewAccessToken signs an HS256 JWT carrying sub, role, exp and iat.
func NewAccessToken(secret string, userID uint64, role string, ttl time.Duration) (AccessToken, error) {
	now := time.Now().UTC()
	exp := now.Add(ttl)
	claims := jwt.MapClaims{
		"sub":  strconv.FormatUint(userID, 10),
		"role": role,
		"exp":  exp.Unix(),
		"iat":  now.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// ParseAccessToken verifies raw and returns the identity it names. The sub
// claim may be a string or a number; older tokens used numbers.
func ParseAccessToken(secret, raw string) (session.Identity, error) {
	tok, err := jwt.Parse(raw, func(*jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return session.Identity{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok || !tok.Valid {
		return session.Identity{}, ErrInvalidToken
	}

	var uid uint64
	switch sub := claims["sub"].(type) {
	case string:
		uid, err = strconv.ParseUint(sub, 10, 64)
		if err != nil {
			return session.Identity{}, fmt.Errorf("%w: sub %q", ErrInvalidToken, sub)
		}
	case float64:
		if sub < 1 || sub != float64(uint64(sub)) {
			return session.Identity{}, fmt.Errorf("%w: sub %v", ErrInvalidToken, sub)
		}
		uid = uint64(sub)
	default:
		return session.Identity{}, fmt.Errorf("%w: missing sub", ErrInvalidToken)
	}
	role, _ := claims["role"].(string)

	who := session.Identity{UserID: uid, Role: role}
	if !who.Valid() {
		return session.Identity{}, ErrInvalidToken
	}
	return who, nil
}
