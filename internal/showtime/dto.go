// Package showtime is the boundary between upstream showtime data and the
// seat-selection core. Upstream payloads have used several spellings for the
// same fields over time; DetailDTO accepts all of them and ToDetail is the one
// place where they are turned into domain values.
package showtime

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/iliyamo/cinema-seat-booking/internal/seatmap"
)

var (
	// ErrNotFound is returned by a Source when the showtime does not exist.
	ErrNotFound = errors.New("showtime not found")
	// ErrMissingID is returned by ToDetail when no showtime id is present.
	ErrMissingID = errors.New("showtime id missing")
)

// Source fetches the raw detail of a showtime.
type Source interface {
	FetchDetail(ctx context.Context, showtimeID uint64) (*DetailDTO, error)
}

// SeatDTO is one seat as reported upstream.
type SeatDTO struct {
	RowLabel        string `json:"rowLabel,omitempty"`
	RowLabelSnake   string `json:"row_label,omitempty"`
	Row             string `json:"row,omitempty"`
	SeatNumber      int    `json:"seatNumber,omitempty"`
	SeatNumberSnake int    `json:"seat_number,omitempty"`
	Number          int    `json:"number,omitempty"`
	Type            string `json:"type,omitempty"`
	SeatType        string `json:"seatType,omitempty"`
	SeatTypeSnake   string `json:"seat_type,omitempty"`
}

func (s SeatDTO) rowLabel() string {
	return firstString(s.RowLabel, s.RowLabelSnake, s.Row)
}

func (s SeatDTO) number() int {
	return firstInt(s.SeatNumber, s.SeatNumberSnake, s.Number)
}

func (s SeatDTO) seatType() string {
	return firstString(s.Type, s.SeatType, s.SeatTypeSnake)
}

// DetailDTO is the showtime detail payload. Only one spelling of each field
// is expected to be set; the first non-empty one wins.
type DetailDTO struct {
	ShowtimeID      uint64 `json:"showtimeId,omitempty"`
	ShowtimeIDSnake uint64 `json:"showtime_id,omitempty"`
	ID              uint64 `json:"id,omitempty"`

	MovieTitle      string `json:"movieTitle,omitempty"`
	MovieTitleSnake string `json:"movie_title,omitempty"`
	Title           string `json:"title,omitempty"`

	RoomName      string `json:"roomName,omitempty"`
	RoomNameSnake string `json:"room_name,omitempty"`

	StartsAt      string `json:"startsAt,omitempty"`
	StartsAtSnake string `json:"starts_at,omitempty"`
	ShowDate      string `json:"show_date,omitempty"`

	TotalRows        int `json:"totalRows,omitempty"`
	TotalRowsSnake   int `json:"total_rows,omitempty"`
	SeatsPerRow      int `json:"seatsPerRow,omitempty"`
	SeatsPerRowSnake int `json:"seats_per_row,omitempty"`

	BasePrice      float64 `json:"basePrice,omitempty"`
	BasePriceSnake float64 `json:"base_price,omitempty"`
	Price          float64 `json:"price,omitempty"`

	AllSeats []SeatDTO `json:"allSeats,omitempty"`
	Seats    []SeatDTO `json:"seats,omitempty"`

	BookedSeatIDs []string `json:"bookedSeatIds,omitempty"`
	BookedSeats   []string `json:"booked_seats,omitempty"`
}

// Detail is the canonical showtime value the booking core consumes.
type Detail struct {
	ID         uint64
	MovieTitle string
	RoomName   string
	StartsAt   time.Time
	BasePrice  int64
	Layout     *seatmap.Layout
	Booked     []seatmap.Identifier
	Warnings   []seatmap.Warning
}

var startsAtLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseStartsAt(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	for _, layout := range startsAtLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// ToDetail maps a DetailDTO onto domain values. Seat and booking data that
// cannot be placed is dropped and reported in Detail.Warnings; only a
// missing showtime id is an error.
func ToDetail(dto *DetailDTO) (Detail, error) {
	if dto == nil {
		return Detail{}, ErrMissingID
	}
	id := firstUint(dto.ShowtimeID, dto.ShowtimeIDSnake, dto.ID)
	if id == 0 {
		return Detail{}, ErrMissingID
	}

	var warnings []seatmap.Warning
	rawSeats := dto.AllSeats
	if len(rawSeats) == 0 {
		rawSeats = dto.Seats
	}
	seats := make([]seatmap.Seat, 0, len(rawSeats))
	for _, s := range rawSeats {
		label := s.rowLabel()
		row, ok := seatmap.RowIndex(label)
		if !ok || s.number() < 1 {
			warnings = append(warnings, seatmap.Warning{
				Kind:    seatmap.MalformedSeat,
				Seat:    fmt.Sprintf("%s%d", label, s.number()),
				Message: "row label or seat number unusable, dropped",
			})
			continue
		}
		typ, err := seatmap.ParseSeatType(s.seatType())
		if err != nil {
			typ = seatmap.Standard
			warnings = append(warnings, seatmap.Warning{
				Kind:    seatmap.UnknownSeatType,
				Seat:    fmt.Sprintf("%s%d", strings.ToUpper(label), s.number()),
				Message: fmt.Sprintf("type %q treated as STANDARD", s.seatType()),
			})
		}
		seats = append(seats, seatmap.Seat{
			Coordinate: seatmap.Coordinate{Row: row, Number: s.number()},
			Type:       typ,
		})
	}

	layout, layoutWarnings := seatmap.BuildGrid(
		firstInt(dto.TotalRows, dto.TotalRowsSnake),
		firstInt(dto.SeatsPerRow, dto.SeatsPerRowSnake),
		seats,
	)
	warnings = append(warnings, layoutWarnings...)

	rawBooked := dto.BookedSeatIDs
	if len(rawBooked) == 0 {
		rawBooked = dto.BookedSeats
	}
	booked := make([]seatmap.Identifier, 0, len(rawBooked))
	for _, b := range rawBooked {
		bid, err := seatmap.ParseIdentifier(strings.ToUpper(strings.TrimSpace(b)))
		if err != nil {
			warnings = append(warnings, seatmap.Warning{Kind: seatmap.MalformedSeat, Seat: b, Message: "booked seat id unusable, ignored"})
			continue
		}
		booked = append(booked, bid)
	}

	return Detail{
		ID:         id,
		MovieTitle: firstString(dto.MovieTitle, dto.MovieTitleSnake, dto.Title),
		RoomName:   firstString(dto.RoomName, dto.RoomNameSnake),
		StartsAt:   parseStartsAt(firstString(dto.StartsAt, dto.StartsAtSnake, dto.ShowDate)),
		BasePrice:  roundUnits(firstFloat(dto.BasePrice, dto.BasePriceSnake, dto.Price)),
		Layout:     layout,
		Booked:     booked,
		Warnings:   warnings,
	}, nil
}

// roundUnits rounds a decimal amount half-up to whole currency units.
func roundUnits(v float64) int64 {
	if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return int64(math.Floor(v + 0.5))
}

func firstString(vs ...string) string {
	for _, v := range vs {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func firstInt(vs ...int) int {
	for _, v := range vs {
		if v != 0 {
			return v
		}
	}
	return 0
}

func firstUint(vs ...uint64) uint64 {
	for _, v := range vs {
		if v != 0 {
			return v
		}
	}
	return 0
}

func firstFloat(vs ...float64) float64 {
	for _, v := range vs {
		if v != 0 {
			return v
		}
	}
	return 0
}
