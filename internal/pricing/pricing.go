// Package pricing derives seat and order totals from a showtime's base price
// and the seat types of a layout. Amounts are whole currency units. Each seat
// price is rounded half-up once, and totals are sums of rounded seat prices,
// so the figure shown to the user is the figure submitted with the order.
package pricing

import "github.com/iliyamo/cinema-seat-booking/internal/seatmap"

// Multiplier is an exact ratio applied to the base price.
type Multiplier struct {
	Num int64
	Den int64
}

var (
	standardMultiplier = Multiplier{Num: 1, Den: 1}
	vipMultiplier      = Multiplier{Num: 5, Den: 4}
	coupleMultiplier   = Multiplier{Num: 2, Den: 1}
)

// MultiplierFor returns the price ratio for a seat type. Types that cannot be
// sold (DISABLED, AISLE) and unknown types use the STANDARD ratio.
func MultiplierFor(t seatmap.SeatType) Multiplier {
	switch t {
	case seatmap.VIP:
		return vipMultiplier
	case seatmap.Couple:
		return coupleMultiplier
	default:
		return standardMultiplier
	}
}

// Apply multiplies base by m and rounds half-up to a whole unit.
func (m Multiplier) Apply(base int64) int64 {
	if base <= 0 {
		return 0
	}
	return (base*m.Num*2 + m.Den) / (2 * m.Den)
}

// Float returns the ratio as a float for display.
func (m Multiplier) Float() float64 {
	return float64(m.Num) / float64(m.Den)
}

// Calculator prices seats of one showtime. The zero value prices every seat
// at zero; a nil Layout prices every seat as STANDARD.
type Calculator struct {
	Layout    *seatmap.Layout
	BasePrice int64
}

// New returns a Calculator for layout at basePrice.
func New(layout *seatmap.Layout, basePrice int64) Calculator {
	return Calculator{Layout: layout, BasePrice: basePrice}
}

// TypeOf resolves the seat type used for pricing id. Seats the layout cannot
// resolve are priced as STANDARD rather than failing checkout.
func (c Calculator) TypeOf(id seatmap.Identifier) (seatmap.SeatType, bool) {
	if c.Layout == nil {
		return seatmap.Standard, false
	}
	s, ok := c.Layout.LookupID(id)
	if !ok {
		return seatmap.Standard, false
	}
	return s.Type, true
}

// PriceOf returns the price of a single seat.
func (c Calculator) PriceOf(id seatmap.Identifier) int64 {
	t, _ := c.TypeOf(id)
	return MultiplierFor(t).Apply(c.BasePrice)
}

// TotalPrice sums PriceOf over the selection.
func (c Calculator) TotalPrice(selection []seatmap.Identifier) int64 {
	var total int64
	for _, id := range selection {
		total += c.PriceOf(id)
	}
	return total
}

// Line is one priced seat of an order summary.
type Line struct {
	Seat       seatmap.Identifier `json:"seat"`
	Type       seatmap.SeatType   `json:"type"`
	Multiplier float64            `json:"multiplier"`
	Price      int64              `json:"price"`
	Resolved   bool               `json:"resolved"`
}

// Breakdown prices each selected seat in selection order.
func (c Calculator) Breakdown(selection []seatmap.Identifier) []Line {
	out := make([]Line, 0, len(selection))
	for _, id := range selection {
		t, ok := c.TypeOf(id)
		m := MultiplierFor(t)
		out = append(out, Line{
			Seat:       id,
			Type:       t,
			Multiplier: m.Float(),
			Price:      m.Apply(c.BasePrice),
			Resolved:   ok,
		})
	}
	return out
}

// Sum adds up line prices.
func Sum(lines []Line) int64 {
	var total int64
	for _, l := range lines {
		total += l.Price
	}
	return total
}
