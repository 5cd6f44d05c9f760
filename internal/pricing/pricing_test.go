package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-seat-booking/internal/seatmap"
	"github.com/iliyamo/cinema-seat-booking/internal/selection"
)

func oneRow(types ...seatmap.SeatType) *seatmap.Layout {
	seats := make([]seatmap.Seat, len(types))
	for i, t := range types {
		seats[i] = seatmap.Seat{Coordinate: seatmap.Coordinate{Row: 0, Number: i + 1}, Type: t}
	}
	l, _ := seatmap.BuildGrid(1, len(types), seats)
	return l
}

func TestScenarioThreeSeatTypes(t *testing.T) {
	l := oneRow(seatmap.Standard, seatmap.VIP, seatmap.Couple)
	e := selection.New(l, nil)
	e.Toggle("A1")
	e.Toggle("A2")
	sel := e.Toggle("A3")

	c := New(l, 100000)
	assert.Equal(t, int64(100000), c.PriceOf("A1"))
	assert.Equal(t, int64(125000), c.PriceOf("A2"))
	assert.Equal(t, int64(200000), c.PriceOf("A3"))
	assert.Equal(t, int64(425000), c.TotalPrice(sel))
}

func TestApplyRoundsHalfUp(t *testing.T) {
	tests := []struct {
		base int64
		m    Multiplier
		want int64
	}{
		{base: 98, m: vipMultiplier, want: 123}, // 122.5
		{base: 99, m: vipMultiplier, want: 124}, // 123.75
		{base: 97, m: vipMultiplier, want: 121}, // 121.25
		{base: 1, m: vipMultiplier, want: 1},    // 1.25
		{base: 2, m: vipMultiplier, want: 3},    // 2.5
		{base: 45000, m: coupleMultiplier, want: 90000},
		{base: 0, m: coupleMultiplier, want: 0},
		{base: -10, m: standardMultiplier, want: 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.m.Apply(tt.base), "base=%d m=%v", tt.base, tt.m)
	}
}

func TestUnresolvableSeatsFallBackToStandard(t *testing.T) {
	l := oneRow(seatmap.VIP, seatmap.Disabled, seatmap.Aisle)
	c := New(l, 80000)

	assert.Equal(t, int64(80000), c.PriceOf("B9"), "seat missing from layout")
	assert.Equal(t, int64(80000), c.PriceOf("A2"), "disabled seat")
	assert.Equal(t, int64(80000), c.PriceOf("A3"), "aisle")
	assert.Equal(t, int64(80000), c.PriceOf("not-a-seat"))

	noLayout := Calculator{BasePrice: 80000}
	assert.Equal(t, int64(80000), noLayout.PriceOf("A1"))
}

func TestTotalNeverDecreasesWhenAddingSeats(t *testing.T) {
	l := oneRow(seatmap.Standard, seatmap.VIP, seatmap.Couple, seatmap.Standard, seatmap.VIP)
	e := selection.New(l, nil)
	c := New(l, 73333)

	prev := c.TotalPrice(e.CurrentSelection())
	for _, id := range []seatmap.Identifier{"A5", "A2", "A3", "A1", "A4"} {
		cur := c.TotalPrice(e.Toggle(id))
		assert.GreaterOrEqual(t, cur, prev)
		prev = cur
	}
}

func TestBreakdownMatchesTotal(t *testing.T) {
	l := oneRow(seatmap.Standard, seatmap.VIP, seatmap.Couple)
	c := New(l, 99)
	sel := []seatmap.Identifier{"A3", "A2", "C4"}

	lines := c.Breakdown(sel)
	require.Len(t, lines, 3)
	assert.Equal(t, seatmap.Identifier("A3"), lines[0].Seat)
	assert.Equal(t, seatmap.Couple, lines[0].Type)
	assert.Equal(t, 2.0, lines[0].Multiplier)
	assert.Equal(t, int64(124), lines[1].Price)
	assert.False(t, lines[2].Resolved)
	assert.Equal(t, seatmap.Standard, lines[2].Type)

	assert.Equal(t, c.TotalPrice(sel), Sum(lines))
	assert.Equal(t, int64(198+124+99), Sum(lines))
}

func TestTotalOfEmptySelectionIsZero(t *testing.T) {
	c := New(oneRow(seatmap.Standard), 50000)
	assert.Zero(t, c.TotalPrice(nil))
	assert.Empty(t, c.Breakdown(nil))
}
