// Package queue carries booking events over RabbitMQ: the payloads, the
// publisher used by the booking service and the background consumer.
package queue

// BookingConfirmedQueue is the durable queue confirmed bookings are published to.
const BookingConfirmedQueue = "booking.confirmed"

// BookingConfirmedEvent is published once an order has been committed.
// It carries enough for downstream consumers to log or notify without
// querying the primary database.
type BookingConfirmedEvent struct {
	OrderID       uint64   `json:"order_id"`
	TicketCode    string   `json:"ticket_code"`
	UserID        uint64   `json:"user_id"`
	ShowtimeID    uint64   `json:"showtime_id"`
	MovieTitle    string   `json:"movie_title"`
	RoomName      string   `json:"room_name"`
	StartsAt      string   `json:"starts_at"`
	Seats         []string `json:"seats"`
	Total         int64    `json:"total"`
	PaymentMethod string   `json:"payment_method"`
	Status        string   `json:"status"`
	ConfirmedAt   string   `json:"confirmed_at"`
}
