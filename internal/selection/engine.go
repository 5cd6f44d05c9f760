// Package selection tracks the seats one user has tentatively picked for a
// showtime and derives each seat's status from the layout, the booked-seat
// snapshot and the current selection.
//
// An Engine is owned by a single request or session and is not safe for
// concurrent use.
package selection

import "github.com/iliyamo/cinema-seat-booking/internal/seatmap"

// Status is the derived state of a seat. It is computed on read and never stored.
type Status string

const (
	Available Status = "AVAILABLE"
	Selected  Status = "SELECTED"
	Booked    Status = "BOOKED"
	Disabled  Status = "DISABLED"
)

// Interactive reports whether a seat in this status responds to a toggle.
func (s Status) Interactive() bool {
	return s == Available || s == Selected
}

// Engine owns the selection state for one user and one showtime.
type Engine struct {
	layout   *seatmap.Layout
	booked   map[seatmap.Identifier]struct{}
	selected []seatmap.Identifier
}

// New builds an engine over layout with an empty selection. The booked
// snapshot is copied; malformed identifiers in it are ignored.
func New(layout *seatmap.Layout, booked []seatmap.Identifier) *Engine {
	set := make(map[seatmap.Identifier]struct{}, len(booked))
	for _, id := range booked {
		if _, err := id.Coordinate(); err != nil {
			continue
		}
		set[id] = struct{}{}
	}
	return &Engine{layout: layout, booked: set}
}

// Layout returns the layout the engine was built over.
func (e *Engine) Layout() *seatmap.Layout { return e.layout }

// Status resolves a seat's status with precedence
// DISABLED > BOOKED > SELECTED > AVAILABLE. Identifiers that do not name a
// seat (aisles, empty cells, malformed strings) report ok=false.
func (e *Engine) Status(id seatmap.Identifier) (Status, bool) {
	seat, ok := e.layout.LookupID(id)
	if !ok {
		return "", false
	}
	switch {
	case seat.Type == seatmap.Disabled:
		return Disabled, true
	case e.isBooked(id):
		return Booked, true
	case e.indexOf(id) >= 0:
		return Selected, true
	default:
		return Available, true
	}
}

// SeatStatus pairs a seat with its derived status.
type SeatStatus struct {
	Seat   seatmap.Seat
	Status Status
}

// Statuses returns every seat of the layout in row-major order with its status.
func (e *Engine) Statuses() []SeatStatus {
	seats := e.layout.Seats()
	out := make([]SeatStatus, 0, len(seats))
	for _, s := range seats {
		st, _ := e.Status(s.ID())
		out = append(out, SeatStatus{Seat: s, Status: st})
	}
	return out
}

// Toggle selects an available seat or deselects a selected one and returns
// the new selection. Disabled, booked and unknown seats leave the selection
// untouched; that is an ordinary outcome, not an error.
func (e *Engine) Toggle(id seatmap.Identifier) []seatmap.Identifier {
	st, ok := e.Status(id)
	if !ok || !st.Interactive() {
		return e.CurrentSelection()
	}
	if i := e.indexOf(id); i >= 0 {
		e.selected = append(e.selected[:i:i], e.selected[i+1:]...)
	} else {
		e.selected = append(e.selected, id)
	}
	return e.CurrentSelection()
}

// Reset clears the selection.
func (e *Engine) Reset() {
	e.selected = nil
}

// CurrentSelection returns a copy of the selection in the order seats were picked.
func (e *Engine) CurrentSelection() []seatmap.Identifier {
	out := make([]seatmap.Identifier, len(e.selected))
	copy(out, e.selected)
	return out
}

// Restore replaces the selection with ids, keeping only entries that could
// be selected now. Stale entries (since booked, disabled or removed from the
// layout) and repeats are dropped. It returns the resulting selection.
func (e *Engine) Restore(ids []seatmap.Identifier) []seatmap.Identifier {
	e.selected = nil
	for _, id := range ids {
		if st, ok := e.Status(id); ok && st == Available {
			e.selected = append(e.selected, id)
		}
	}
	return e.CurrentSelection()
}

func (e *Engine) isBooked(id seatmap.Identifier) bool {
	_, ok := e.booked[id]
	return ok
}

func (e *Engine) indexOf(id seatmap.Identifier) int {
	for i, s := range e.selected {
		if s == id {
			return i
		}
	}
	return -1
}
