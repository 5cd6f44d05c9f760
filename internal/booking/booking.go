// Package booking hosts the seat-selection core for one user and one
// showtime at a time. It loads the showtime, restores the user's persisted
// selection, applies toggles and turns the final selection into an order.
package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iliyamo/cinema-seat-booking/internal/pricing"
	"github.com/iliyamo/cinema-seat-booking/internal/queue"
	"github.com/iliyamo/cinema-seat-booking/internal/seatmap"
	"github.com/iliyamo/cinema-seat-booking/internal/selection"
	"github.com/iliyamo/cinema-seat-booking/internal/session"
	"github.com/iliyamo/cinema-seat-booking/internal/showtime"
)

var (
	ErrEmptySelection       = errors.New("no seats selected")
	ErrInvalidPaymentMethod = errors.New("unsupported payment method")
	ErrInvalidSeat          = errors.New("invalid seat identifier")
	// ErrSeatUnavailable is returned when a requested seat is booked,
	// disabled or not part of the layout.
	ErrSeatUnavailable = errors.New("seat not available")
	// ErrSeatConflict is returned when another order took one of the seats
	// between selection and submission.
	ErrSeatConflict = errors.New("seat already booked")
)

// Order statuses.
const (
	StatusCompleted  = "COMPLETED"
	StatusProcessing = "PROCESSING"
	// StatusCancelled orders no longer hold their seats.
	StatusCancelled = "CANCELLED"
)

// DefaultPaymentMethod is used when a request names none.
const DefaultPaymentMethod = "cash"

var paymentMethods = map[string]bool{
	"cash":    true,
	"card":    true,
	"momo":    true,
	"banking": true,
}

// NormalizePaymentMethod lower-cases method and checks it is supported.
// An empty method means cash.
func NormalizePaymentMethod(method string) (string, error) {
	m := strings.ToLower(strings.TrimSpace(method))
	if m == "" {
		return DefaultPaymentMethod, nil
	}
	if !paymentMethods[m] {
		return "", fmt.Errorf("%w: %q", ErrInvalidPaymentMethod, method)
	}
	return m, nil
}

// StatusFor maps a payment method to the initial order status. Cash is
// settled at the counter; everything else waits for the payment provider.
func StatusFor(method string) string {
	if method == "cash" {
		return StatusCompleted
	}
	return StatusProcessing
}

// NewTicketCode returns TKT-<unix millis>-<4 upper-case hex chars>.
func NewTicketCode(now time.Time) string {
	suffix := strings.ToUpper(uuid.NewString()[:4])
	return fmt.Sprintf("TKT-%d-%s", now.UnixMilli(), suffix)
}

// Order is what the service hands to an OrderWriter.
type Order struct {
	ID            uint64
	UserID        uint64
	ShowtimeID    uint64
	TicketCode    string
	Status        string
	PaymentMethod string
	Total         int64
	Lines         []pricing.Line
	// PaidAt is set when the order is settled on creation (cash).
	PaidAt        *time.Time
	CreatedAt     time.Time
}

// OrderWriter persists orders. CreateOrder must set order.ID and fail with
// an error wrapping ErrSeatConflict when a seat is already taken.
type OrderWriter interface {
	CreateOrder(ctx context.Context, order *Order) error
}

// Publisher announces committed bookings.
type Publisher interface {
	PublishBookingConfirmed(ctx context.Context, ev queue.BookingConfirmedEvent) error
}

// Invalidator drops cached showtime data after its booked set changed.
type Invalidator interface {
	Invalidate(ctx context.Context, showtimeID uint64) error
}

// Deps groups the collaborators of a Service. Publisher and Invalidator
// are optional.
type Deps struct {
	Showtimes   showtime.Source
	Selections  session.Store
	Orders      OrderWriter
	Publisher   Publisher
	Invalidator Invalidator
	Logger      *zap.Logger
	Clock       func() time.Time
}

// Service implements the booking flow on top of the selection engine.
type Service struct {
	showtimes   showtime.Source
	selections  session.Store
	orders      OrderWriter
	publisher   Publisher
	invalidator Invalidator
	log         *zap.Logger
	now         func() time.Time
}

// NewService builds a Service from d.
func NewService(d Deps) *Service {
	s := &Service{
		showtimes:   d.Showtimes,
		selections:  d.Selections,
		orders:      d.Orders,
		publisher:   d.Publisher,
		invalidator: d.Invalidator,
		log:         d.Logger,
		now:         d.Clock,
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Session is one user's view of one showtime: the showtime detail, the
// selection engine over it and the calculator pricing it.
type Session struct {
	Identity session.Identity
	Detail   showtime.Detail
	Engine   *selection.Engine
	Pricing  pricing.Calculator
}

// Summary renders the session.
func (s *Session) Summary() Summary {
	return summarize(s.Detail, s.Engine, s.Pricing)
}

// Layout returns the public seat map of a showtime, without any selection.
func (s *Service) Layout(ctx context.Context, showtimeID uint64) (Summary, error) {
	detail, err := s.load(ctx, showtimeID)
	if err != nil {
		return Summary{}, err
	}
	engine := selection.New(detail.Layout, detail.Booked)
	return summarize(detail, engine, pricing.New(detail.Layout, detail.BasePrice)), nil
}

// Open loads the showtime and restores who's persisted selection. Entries
// that are no longer selectable are dropped and the cleaned selection is
// written back.
func (s *Service) Open(ctx context.Context, who session.Identity, showtimeID uint64) (*Session, error) {
	if !who.Valid() {
		return nil, session.ErrNoIdentity
	}
	detail, err := s.load(ctx, showtimeID)
	if err != nil {
		return nil, err
	}
	engine := selection.New(detail.Layout, detail.Booked)

	stored, err := s.selections.Load(ctx, who, showtimeID)
	if err != nil {
		return nil, err
	}
	restored := engine.Restore(stored)
	if len(restored) != len(stored) {
		s.log.Info("dropped stale seats from stored selection",
			zap.Uint64("user_id", who.UserID),
			zap.Uint64("showtime_id", showtimeID),
			zap.Int("stored", len(stored)),
			zap.Int("kept", len(restored)))
		if err := s.selections.Save(ctx, who, showtimeID, restored); err != nil {
			return nil, err
		}
	}
	return &Session{
		Identity: who,
		Detail:   detail,
		Engine:   engine,
		Pricing:  pricing.New(detail.Layout, detail.BasePrice),
	}, nil
}

// Summary is Open followed by rendering.
func (s *Service) Summary(ctx context.Context, who session.Identity, showtimeID uint64) (Summary, error) {
	sess, err := s.Open(ctx, who, showtimeID)
	if err != nil {
		return Summary{}, err
	}
	return sess.Summary(), nil
}

// Toggle flips seat in who's selection and persists the result as one
// atomic read-modify-write, so concurrent toggles by the same user all land.
// Seats that are booked, disabled or absent leave the selection unchanged;
// only a malformed identifier is an error.
func (s *Service) Toggle(ctx context.Context, who session.Identity, showtimeID uint64, seat string) (Summary, error) {
	id, err := parseSeat(seat)
	if err != nil {
		return Summary{}, err
	}
	if !who.Valid() {
		return Summary{}, session.ErrNoIdentity
	}
	detail, err := s.load(ctx, showtimeID)
	if err != nil {
		return Summary{}, err
	}
	engine := selection.New(detail.Layout, detail.Booked)

	if _, err := s.selections.Update(ctx, who, showtimeID, func(current []seatmap.Identifier) []seatmap.Identifier {
		engine.Restore(current)
		return engine.Toggle(id)
	}); err != nil {
		return Summary{}, err
	}
	return summarize(detail, engine, pricing.New(detail.Layout, detail.BasePrice)), nil
}

// Reset clears who's selection.
func (s *Service) Reset(ctx context.Context, who session.Identity, showtimeID uint64) (Summary, error) {
	sess, err := s.Open(ctx, who, showtimeID)
	if err != nil {
		return Summary{}, err
	}
	sess.Engine.Reset()
	if err := s.selections.Clear(ctx, who, showtimeID); err != nil {
		return Summary{}, err
	}
	return sess.Summary(), nil
}

// Request is a booking submission. When Seats is empty the stored
// selection is booked.
type Request struct {
	ShowtimeID    uint64
	Seats         []string
	PaymentMethod string
}

// Confirmation is returned for a committed order.
type Confirmation struct {
	OrderID       uint64               `json:"order_id"`
	TicketCode    string               `json:"ticket_code"`
	Status        string               `json:"status"`
	PaymentMethod string               `json:"payment_method"`
	ShowtimeID    uint64               `json:"showtime_id"`
	Seats         []seatmap.Identifier `json:"seats"`
	Lines         []pricing.Line       `json:"lines"`
	Total         int64                `json:"total"`
	PaidAt        *time.Time           `json:"paid_at,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
}

// Submit books the selection. The total is always recomputed from the
// layout; a client-side total is never trusted.
func (s *Service) Submit(ctx context.Context, who session.Identity, req Request) (*Confirmation, error) {
	method, err := NormalizePaymentMethod(req.PaymentMethod)
	if err != nil {
		return nil, err
	}
	sess, err := s.Open(ctx, who, req.ShowtimeID)
	if err != nil {
		return nil, err
	}

	seats := sess.Engine.CurrentSelection()
	if len(req.Seats) > 0 {
		seats, err = s.explicitSeats(sess.Engine, req.Seats)
		if err != nil {
			return nil, err
		}
	}
	if len(seats) == 0 {
		return nil, ErrEmptySelection
	}

	lines := sess.Pricing.Breakdown(seats)
	now := s.now().UTC()
	order := &Order{
		UserID:        who.UserID,
		ShowtimeID:    req.ShowtimeID,
		TicketCode:    NewTicketCode(now),
		Status:        StatusFor(method),
		PaymentMethod: method,
		Total:         pricing.Sum(lines),
		Lines:         lines,
		CreatedAt:     now,
	}
	if order.Status == StatusCompleted {
		order.PaidAt = &now
	}
	if err := s.orders.CreateOrder(ctx, order); err != nil {
		if errors.Is(err, ErrSeatConflict) {
			s.log.Info("booking lost a seat race",
				zap.Uint64("user_id", who.UserID),
				zap.Uint64("showtime_id", req.ShowtimeID),
				zap.Error(err))
		}
		return nil, fmt.Errorf("create order: %w", err)
	}

	// The order is committed from here on; follow-up failures are only logged.
	if err := s.selections.Clear(ctx, who, req.ShowtimeID); err != nil {
		s.log.Warn("clear selection after booking", zap.Error(err))
	}
	if s.invalidator != nil {
		if err := s.invalidator.Invalidate(ctx, req.ShowtimeID); err != nil {
			s.log.Warn("invalidate showtime cache", zap.Uint64("showtime_id", req.ShowtimeID), zap.Error(err))
		}
	}
	s.publish(ctx, sess.Detail, order, seats)

	s.log.Info("booking confirmed",
		zap.Uint64("order_id", order.ID),
		zap.String("ticket_code", order.TicketCode),
		zap.Uint64("user_id", who.UserID),
		zap.Uint64("showtime_id", req.ShowtimeID),
		zap.Int("seats", len(seats)),
		zap.Int64("total", order.Total))

	return &Confirmation{
		OrderID:       order.ID,
		TicketCode:    order.TicketCode,
		Status:        order.Status,
		PaymentMethod: method,
		ShowtimeID:    req.ShowtimeID,
		Seats:         seats,
		Lines:         lines,
		Total:         order.Total,
		PaidAt:        order.PaidAt,
		CreatedAt:     now,
	}, nil
}

func (s *Service) explicitSeats(engine *selection.Engine, raw []string) ([]seatmap.Identifier, error) {
	seen := make(map[seatmap.Identifier]bool, len(raw))
	out := make([]seatmap.Identifier, 0, len(raw))
	for _, r := range raw {
		id, err := parseSeat(r)
		if err != nil {
			return nil, err
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		st, ok := engine.Status(id)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrSeatUnavailable, id)
		}
		switch st {
		case selection.Booked:
			return nil, fmt.Errorf("%w: %s", ErrSeatConflict, id)
		case selection.Disabled:
			return nil, fmt.Errorf("%w: %s", ErrSeatUnavailable, id)
		}
		out = append(out, id)
	}
	return out, nil
}

func (s *Service) publish(ctx context.Context, detail showtime.Detail, order *Order, seats []seatmap.Identifier) {
	if s.publisher == nil {
		return
	}
	labels := make([]string, len(seats))
	for i, id := range seats {
		labels[i] = string(id)
	}
	ev := queue.BookingConfirmedEvent{
		OrderID:       order.ID,
		TicketCode:    order.TicketCode,
		UserID:        order.UserID,
		ShowtimeID:    order.ShowtimeID,
		MovieTitle:    detail.MovieTitle,
		RoomName:      detail.RoomName,
		Seats:         labels,
		Total:         order.Total,
		PaymentMethod: order.PaymentMethod,
		Status:        order.Status,
		ConfirmedAt:   order.CreatedAt.Format(time.RFC3339),
	}
	if !detail.StartsAt.IsZero() {
		ev.StartsAt = detail.StartsAt.Format(time.RFC3339)
	}
	if err := s.publisher.PublishBookingConfirmed(ctx, ev); err != nil {
		s.log.Warn("publish booking event", zap.String("ticket_code", order.TicketCode), zap.Error(err))
	}
}

func (s *Service) load(ctx context.Context, showtimeID uint64) (showtime.Detail, error) {
	dto, err := s.showtimes.FetchDetail(ctx, showtimeID)
	if err != nil {
		return showtime.Detail{}, err
	}
	detail, err := showtime.ToDetail(dto)
	if err != nil {
		return showtime.Detail{}, err
	}
	for _, w := range detail.Warnings {
		s.log.Warn("layout data repaired", zap.Uint64("showtime_id", showtimeID), zap.Stringer("warning", w))
	}
	return detail, nil
}

func parseSeat(raw string) (seatmap.Identifier, error) {
	id, err := seatmap.ParseIdentifier(strings.ToUpper(strings.TrimSpace(raw)))
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidSeat, raw)
	}
	return id, nil
}
