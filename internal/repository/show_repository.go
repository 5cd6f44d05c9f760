package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/cinema-seat-booking/internal/booking"
	"github.com/iliyamo/cinema-seat-booking/internal/showtime"
)

// ShowRepo reads showtime details from the shows, halls, seats and
// reservation tables. It implements showtime.Source.
type ShowRepo struct {
	db *sql.DB
}

// NewShowRepo constructs a ShowRepo given a DB handle.
func NewShowRepo(db *sql.DB) *ShowRepo {
	return &ShowRepo{db: db}
}

// FetchDetail loads the show with its hall dimensions, the hall's seats and
// the seats held by non-cancelled reservations. Inactive seats are reported
// as DISABLED. A missing show yields showtime.ErrNotFound.
func (r *ShowRepo) FetchDetail(ctx context.Context, showID uint64) (*showtime.DetailDTO, error) {
	const showQ = `SELECT s.id, s.title, s.starts_at, s.base_price, s.hall_id, h.name, h.seat_rows, h.seat_cols
	               FROM shows s
	               JOIN halls h ON h.id = s.hall_id
	               WHERE s.id = ?`
	var (
		dto      showtime.DetailDTO
		startsAt time.Time
		hallID   uint64
		rows     sql.NullInt32
		cols     sql.NullInt32
	)
	err := r.db.QueryRowContext(ctx, showQ, showID).Scan(
		&dto.ID, &dto.MovieTitle, &startsAt, &dto.BasePrice, &hallID, &dto.RoomName, &rows, &cols,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, showtime.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load show %d: %w", showID, err)
	}
	if !startsAt.IsZero() {
		dto.StartsAt = startsAt.UTC().Format(time.RFC3339)
	}
	if rows.Valid {
		dto.TotalRows = int(rows.Int32)
	}
	if cols.Valid {
		dto.SeatsPerRow = int(cols.Int32)
	}

	seats, err := r.seatsOfHall(ctx, hallID)
	if err != nil {
		return nil, err
	}
	dto.Seats = seats

	booked, err := r.bookedSeats(ctx, showID)
	if err != nil {
		return nil, err
	}
	dto.BookedSeatIDs = booked
	return &dto, nil
}

func (r *ShowRepo) seatsOfHall(ctx context.Context, hallID uint64) ([]showtime.SeatDTO, error) {
	const q = `SELECT row_label, seat_number, seat_type, is_active
	           FROM seats
	           WHERE hall_id = ?
	           ORDER BY row_label, seat_number`
	rows, err := r.db.QueryContext(ctx, q, hallID)
	if err != nil {
		return nil, fmt.Errorf("load seats of hall %d: %w", hallID, err)
	}
	defer rows.Close()

	var out []showtime.SeatDTO
	for rows.Next() {
		var (
			s        showtime.SeatDTO
			seatType sql.NullString
			active   bool
		)
		if err := rows.Scan(&s.RowLabel, &s.SeatNumber, &seatType, &active); err != nil {
			return nil, err
		}
		s.Type = seatType.String
		if !active {
			s.Type = "DISABLED"
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *ShowRepo) bookedSeats(ctx context.Context, showID uint64) ([]string, error) {
	const q = `SELECT rs.seat_label
	           FROM reservation_seats rs
	           JOIN reservations r ON r.id = rs.reservation_id
	           WHERE rs.show_id = ? AND r.status <> ?
	           ORDER BY rs.seat_label`
	rows, err := r.db.QueryContext(ctx, q, showID, booking.StatusCancelled)
	if err != nil {
		return nil, fmt.Errorf("load booked seats of show %d: %w", showID, err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var label string
		if err := rows.Scan(&label); err != nil {
			return nil, err
		}
		out = append(out, label)
	}
	return out, rows.Err()
}
