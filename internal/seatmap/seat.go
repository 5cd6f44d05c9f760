// Package seatmap models a theater's seat grid: which coordinates hold a
// seat, what type each seat is, and how seat identifiers such as "C7" map to
// grid coordinates. A Layout is built once per booking session and never
// mutated afterwards.
package seatmap

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// SeatType classifies a grid entry.
type SeatType string

const (
	Standard SeatType = "STANDARD"
	VIP      SeatType = "VIP"
	Couple   SeatType = "COUPLE"
	Disabled SeatType = "DISABLED" // out of service, rendered but never selectable
	Aisle    SeatType = "AISLE"    // placeholder, not a seat
)

// MaxRows is the number of single-letter row labels (A..Z).
const MaxRows = 26

var (
	// ErrInvalidIdentifier is returned when a seat identifier does not match [A-Z][1-9][0-9]*.
	ErrInvalidIdentifier = errors.New("invalid seat identifier")
	// ErrInvalidCoordinate is returned when a coordinate cannot be labelled.
	ErrInvalidCoordinate = errors.New("invalid seat coordinate")
	// ErrUnknownSeatType is returned by ParseSeatType for unrecognised names.
	ErrUnknownSeatType = errors.New("unknown seat type")
)

// ParseSeatType normalises a seat type name. An empty name means STANDARD.
func ParseSeatType(raw string) (SeatType, error) {
	switch t := SeatType(strings.ToUpper(strings.TrimSpace(raw))); t {
	case "":
		return Standard, nil
	case Standard, VIP, Couple, Disabled, Aisle:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownSeatType, raw)
	}
}

// Selectable reports whether seats of this type can ever be chosen.
func (t SeatType) Selectable() bool {
	return t != Disabled && t != Aisle
}

// Coordinate addresses a grid cell. Row is zero-based, Number is one-based.
type Coordinate struct {
	Row    int
	Number int
}

// RowLabel returns the letter of the row ("A" for row 0), or "" when the row
// has no single-letter label.
func (c Coordinate) RowLabel() string {
	if c.Row < 0 || c.Row >= MaxRows {
		return ""
	}
	return string(rune('A' + c.Row))
}

func (c Coordinate) String() string {
	return c.RowLabel() + strconv.Itoa(c.Number)
}

// Identifier is the canonical "{row}{number}" form of a seat, e.g. "C7".
type Identifier string

// IdentifierOf converts a coordinate into its identifier.
func IdentifierOf(c Coordinate) (Identifier, error) {
	if c.Row < 0 || c.Row >= MaxRows || c.Number < 1 {
		return "", fmt.Errorf("%w: row=%d number=%d", ErrInvalidCoordinate, c.Row, c.Number)
	}
	return Identifier(c.String()), nil
}

// CoordinateOf parses an identifier string back into a coordinate.
func CoordinateOf(raw string) (Coordinate, error) {
	if len(raw) < 2 || raw[0] < 'A' || raw[0] > 'Z' || raw[1] == '0' {
		return Coordinate{}, fmt.Errorf("%w: %q", ErrInvalidIdentifier, raw)
	}
	digits := raw[1:]
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return Coordinate{}, fmt.Errorf("%w: %q", ErrInvalidIdentifier, raw)
		}
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		// only reachable on overflow
		return Coordinate{}, fmt.Errorf("%w: %q", ErrInvalidIdentifier, raw)
	}
	return Coordinate{Row: int(raw[0] - 'A'), Number: n}, nil
}

// ParseIdentifier validates raw and returns it as an Identifier.
func ParseIdentifier(raw string) (Identifier, error) {
	if _, err := CoordinateOf(raw); err != nil {
		return "", err
	}
	return Identifier(raw), nil
}

// Coordinate is shorthand for CoordinateOf(string(id)).
func (id Identifier) Coordinate() (Coordinate, error) {
	return CoordinateOf(string(id))
}

// RowIndex converts a row label such as "C" into its zero-based index.
// Only single-letter labels are accepted.
func RowIndex(label string) (int, bool) {
	s := strings.ToUpper(strings.TrimSpace(label))
	if len(s) != 1 || s[0] < 'A' || s[0] > 'Z' {
		return -1, false
	}
	return int(s[0] - 'A'), true
}

// Seat is a layout entry.
type Seat struct {
	Coordinate Coordinate
	Type       SeatType
}

// ID returns the seat's identifier. Seats stored in a Layout always have a
// valid coordinate, so the conversion cannot fail there.
func (s Seat) ID() Identifier {
	id, _ := IdentifierOf(s.Coordinate)
	return id
}
