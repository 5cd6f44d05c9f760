package seatmap

import "fmt"

// Fallback dimensions used when a layout arrives without usable row or
// column counts. Matches the default room size of the admin layout editor.
const (
	DefaultRows        = 10
	DefaultSeatsPerRow = 12
)

// MaxSeatsPerRow bounds the declared row width. Wider rows are clamped.
const MaxSeatsPerRow = 99

// WarningKind names a recovered layout problem.
type WarningKind string

const (
	// DegenerateLayout: rows or seats-per-row missing or non-positive, defaults applied.
	DegenerateLayout WarningKind = "DEGENERATE_LAYOUT"
	// RowsClamped: more rows than single-letter labels, extra rows ignored.
	RowsClamped WarningKind = "ROWS_CLAMPED"
	// SeatsClamped: rows wider than MaxSeatsPerRow, extra seats ignored.
	SeatsClamped WarningKind = "SEATS_CLAMPED"
	// OutOfBoundsSeat: a seat lies outside the declared grid and was dropped.
	OutOfBoundsSeat WarningKind = "OUT_OF_BOUNDS_SEAT"
	// DuplicateSeat: two entries share an identifier, the later one was kept.
	DuplicateSeat WarningKind = "DUPLICATE_SEAT"
	// UnknownSeatType: a seat carried an unrecognised type and was treated as STANDARD.
	UnknownSeatType WarningKind = "UNKNOWN_SEAT_TYPE"
	// MalformedSeat: a seat entry could not be placed on the grid at all.
	MalformedSeat WarningKind = "MALFORMED_SEAT"
)

// Warning describes layout data that was repaired or dropped during
// construction. Warnings are meant for logs and telemetry, not for users.
type Warning struct {
	Kind    WarningKind
	Seat    string
	Message string
}

func (w Warning) String() string {
	if w.Seat == "" {
		return fmt.Sprintf("%s: %s", w.Kind, w.Message)
	}
	return fmt.Sprintf("%s %s: %s", w.Kind, w.Seat, w.Message)
}

// Layout is an immutable rows × seats-per-row grid of seats.
type Layout struct {
	totalRows   int
	seatsPerRow int
	entries     map[Identifier]Seat
	cells       [][]*Seat
}

// BuildGrid constructs a Layout from declared dimensions and seat entries.
// It never fails: bad dimensions fall back to DefaultRows × DefaultSeatsPerRow,
// oversized ones are clamped to MaxRows × MaxSeatsPerRow and entries outside
// the grid are dropped, each reported as a Warning.
func BuildGrid(totalRows, seatsPerRow int, seats []Seat) (*Layout, []Warning) {
	var warnings []Warning
	if totalRows < 1 || seatsPerRow < 1 {
		warnings = append(warnings, Warning{
			Kind:    DegenerateLayout,
			Message: fmt.Sprintf("got %d rows x %d seats, using %dx%d", totalRows, seatsPerRow, DefaultRows, DefaultSeatsPerRow),
		})
		totalRows, seatsPerRow = DefaultRows, DefaultSeatsPerRow
	}
	if totalRows > MaxRows {
		warnings = append(warnings, Warning{
			Kind:    RowsClamped,
			Message: fmt.Sprintf("%d rows declared, only %d can be labelled", totalRows, MaxRows),
		})
		totalRows = MaxRows
	}
	if seatsPerRow > MaxSeatsPerRow {
		warnings = append(warnings, Warning{
			Kind:    SeatsClamped,
			Message: fmt.Sprintf("%d seats per row declared, using %d", seatsPerRow, MaxSeatsPerRow),
		})
		seatsPerRow = MaxSeatsPerRow
	}

	l := &Layout{
		totalRows:   totalRows,
		seatsPerRow: seatsPerRow,
		entries:     make(map[Identifier]Seat, len(seats)),
		cells:       make([][]*Seat, totalRows),
	}
	for r := range l.cells {
		l.cells[r] = make([]*Seat, seatsPerRow)
	}

	for _, s := range seats {
		c := s.Coordinate
		if c.Row < 0 || c.Row >= totalRows || c.Number < 1 || c.Number > seatsPerRow {
			warnings = append(warnings, Warning{
				Kind:    OutOfBoundsSeat,
				Seat:    describe(c),
				Message: fmt.Sprintf("outside %dx%d grid, dropped", totalRows, seatsPerRow),
			})
			continue
		}
		if s.Type == "" {
			s.Type = Standard
		}
		id, _ := IdentifierOf(c)
		if _, dup := l.entries[id]; dup {
			warnings = append(warnings, Warning{Kind: DuplicateSeat, Seat: string(id), Message: "later entry wins"})
		}
		l.entries[id] = s
		if s.Type == Aisle {
			l.cells[c.Row][c.Number-1] = nil
			continue
		}
		seat := s
		l.cells[c.Row][c.Number-1] = &seat
	}
	return l, warnings
}

// TotalRows returns the effective number of rows.
func (l *Layout) TotalRows() int { return l.totalRows }

// SeatsPerRow returns the effective number of seats per row.
func (l *Layout) SeatsPerRow() int { return l.seatsPerRow }

// Grid returns a copy of the grid indexed [row][number-1]. Cells without a
// seat, including aisles, are nil.
func (l *Layout) Grid() [][]*Seat {
	out := make([][]*Seat, len(l.cells))
	for r, row := range l.cells {
		out[r] = make([]*Seat, len(row))
		for i, cell := range row {
			if cell != nil {
				s := *cell
				out[r][i] = &s
			}
		}
	}
	return out
}

// Lookup returns the seat at c. Aisles and empty cells report false.
func (l *Layout) Lookup(c Coordinate) (Seat, bool) {
	if c.Row < 0 || c.Row >= l.totalRows || c.Number < 1 || c.Number > l.seatsPerRow {
		return Seat{}, false
	}
	cell := l.cells[c.Row][c.Number-1]
	if cell == nil {
		return Seat{}, false
	}
	return *cell, true
}

// LookupID is Lookup by identifier. Malformed identifiers report false.
func (l *Layout) LookupID(id Identifier) (Seat, bool) {
	c, err := id.Coordinate()
	if err != nil {
		return Seat{}, false
	}
	return l.Lookup(c)
}

// Seats lists every real seat (aisles excluded) in row-major order.
func (l *Layout) Seats() []Seat {
	out := make([]Seat, 0, len(l.entries))
	for _, row := range l.cells {
		for _, cell := range row {
			if cell != nil {
				out = append(out, *cell)
			}
		}
	}
	return out
}

// Stats counts layout entries per seat type, aisles included.
func (l *Layout) Stats() map[SeatType]int {
	out := make(map[SeatType]int, 5)
	for _, s := range l.entries {
		out[s.Type]++
	}
	return out
}

func describe(c Coordinate) string {
	if c.RowLabel() == "" {
		return fmt.Sprintf("row=%d number=%d", c.Row, c.Number)
	}
	return c.String()
}
