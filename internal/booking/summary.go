package booking

import (
	"time"

	"github.com/iliyamo/cinema-seat-booking/internal/pricing"
	"github.com/iliyamo/cinema-seat-booking/internal/seatmap"
	"github.com/iliyamo/cinema-seat-booking/internal/selection"
	"github.com/iliyamo/cinema-seat-booking/internal/showtime"
)

// SeatView is one rendered grid cell.
type SeatView struct {
	ID     seatmap.Identifier `json:"id"`
	Row    string             `json:"row"`
	Number int                `json:"number"`
	Type   seatmap.SeatType   `json:"type"`
	Status selection.Status   `json:"status"`
	Price  int64              `json:"price"`
}

// Summary is the seat map plus the priced selection, ready to render.
// Grid cells without a seat (aisles, gaps) are null.
type Summary struct {
	ShowtimeID  uint64                   `json:"showtime_id"`
	MovieTitle  string                   `json:"movie_title"`
	RoomName    string                   `json:"room_name,omitempty"`
	StartsAt    *time.Time               `json:"starts_at,omitempty"`
	BasePrice   int64                    `json:"base_price"`
	Rows        int                      `json:"rows"`
	SeatsPerRow int                      `json:"seats_per_row"`
	Grid        [][]*SeatView            `json:"grid"`
	Stats       map[seatmap.SeatType]int `json:"stats"`
	Selected    []seatmap.Identifier     `json:"selected"`
	Lines       []pricing.Line           `json:"lines"`
	Total       int64                    `json:"total"`
}

func summarize(detail showtime.Detail, engine *selection.Engine, calc pricing.Calculator) Summary {
	layout := engine.Layout()
	grid := layout.Grid()
	views := make([][]*SeatView, len(grid))
	for r, row := range grid {
		views[r] = make([]*SeatView, len(row))
		for i, cell := range row {
			if cell == nil {
				continue
			}
			id := cell.ID()
			st, _ := engine.Status(id)
			views[r][i] = &SeatView{
				ID:     id,
				Row:    cell.Coordinate.RowLabel(),
				Number: cell.Coordinate.Number,
				Type:   cell.Type,
				Status: st,
				Price:  calc.PriceOf(id),
			}
		}
	}

	selected := engine.CurrentSelection()
	lines := calc.Breakdown(selected)
	sum := Summary{
		ShowtimeID:  detail.ID,
		MovieTitle:  detail.MovieTitle,
		RoomName:    detail.RoomName,
		BasePrice:   detail.BasePrice,
		Rows:        layout.TotalRows(),
		SeatsPerRow: layout.SeatsPerRow(),
		Grid:        views,
		Stats:       layout.Stats(),
		Selected:    selected,
		Lines:       lines,
		Total:       pricing.Sum(lines),
	}
	if !detail.StartsAt.IsZero() {
		t := detail.StartsAt
		sum.StartsAt = &t
	}
	return sum
}
