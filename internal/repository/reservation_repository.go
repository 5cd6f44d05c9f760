package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/iliyamo/cinema-seat-booking/internal/booking"
)

// ReservationRepo persists orders into the reservations and
// reservation_seats tables. reservation_seats carries a unique key on
// (show_id, seat_label), which is what turns a double booking into a
// duplicate-key error. Rows left behind by cancelled reservations are
// released inside the booking transaction before the insert.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// ReservationSeatRecord mirrors the reservation_seats table.
type ReservationSeatRecord struct {
	ReservationID uint64
	ShowID        uint64
	SeatLabel     string
	Price         int64
}

// CreateOrder inserts the reservation and its seats in one transaction and
// sets order.ID. Seats held by a cancelled reservation of the same show are
// released first, so they can be booked again. A seat already held by another reservation of the same
// show rolls everything back and returns an error matching both
// ErrConflict and booking.ErrSeatConflict.
func (r *ReservationRepo) CreateOrder(ctx context.Context, order *booking.Order) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	var paidAt sql.NullTime
	if order.PaidAt != nil {
		paidAt = sql.NullTime{Time: *order.PaidAt, Valid: true}
	}
	const q = `INSERT INTO reservations (user_id, show_id, ticket_code, status, payment_method, total_amount, paid_at, created_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, order.UserID, order.ShowtimeID, order.TicketCode,
		order.Status, order.PaymentMethod, order.Total, paidAt, order.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert reservation: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	order.ID = uint64(id)

	seats := make([]ReservationSeatRecord, len(order.Lines))
	for i, l := range order.Lines {
		seats[i] = ReservationSeatRecord{
			ReservationID: order.ID,
			ShowID:        order.ShowtimeID,
			SeatLabel:     string(l.Seat),
			Price:         l.Price,
		}
	}
	if err = r.releaseCancelledSeatsTx(ctx, tx, order.ShowtimeID, seats); err != nil {
		return fmt.Errorf("release cancelled seats: %w", err)
	}
	if err = r.createSeatsBulkTx(ctx, tx, seats); err != nil {
		if isDuplicate(err) {
			return fmt.Errorf("%w: %w", ErrConflict, booking.ErrSeatConflict)
		}
		return fmt.Errorf("insert reservation seats: %w", err)
	}
	return nil
}

// createSeatsBulkTx inserts all seats in a single statement.
func (r *ReservationRepo) createSeatsBulkTx(ctx context.Context, tx *sql.Tx, seats []ReservationSeatRecord) error {
	if len(seats) == 0 {
		return nil
	}
	var b strings.Builder
	b.WriteString(`INSERT INTO reservation_seats (reservation_id, show_id, seat_label, price) VALUES `)
	args := make([]interface{}, 0, len(seats)*4)
	for i, s := range seats {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString("(?, ?, ?, ?)")
		args = append(args, s.ReservationID, s.ShowID, s.SeatLabel, s.Price)
	}
	_, err := tx.ExecContext(ctx, b.String(), args...)
	return err
}

// releaseCancelledSeatsTx deletes the reservation_seats rows of cancelled
// reservations that occupy any of seats.
func (r *ReservationRepo) releaseCancelledSeatsTx(ctx context.Context, tx *sql.Tx, showID uint64, seats []ReservationSeatRecord) error {
	if len(seats) == 0 {
		return nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(seats)), ",")
	q := `DELETE rs FROM reservation_seats rs
	      JOIN reservations r ON r.id = rs.reservation_id
	      WHERE rs.show_id = ? AND r.status = ? AND rs.seat_label IN (` + placeholders + `)`
	args := make([]interface{}, 0, len(seats)+2)
	args = append(args, showID, booking.StatusCancelled)
	for _, s := range seats {
		args = append(args, s.SeatLabel)
	}
	_, err := tx.ExecContext(ctx, q, args...)
	return err
}
