package seatmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentifierRoundTrip(t *testing.T) {
	for row := 0; row < MaxRows; row++ {
		for number := 1; number <= 40; number++ {
			c := Coordinate{Row: row, Number: number}
			id, err := IdentifierOf(c)
			require.NoError(t, err)
			back, err := CoordinateOf(string(id))
			require.NoError(t, err)
			assert.Equal(t, c, back)
		}
	}
}

func TestCoordinateOf(t *testing.T) {
	tests := []struct {
		raw     string
		want    Coordinate
		wantErr bool
	}{
		{raw: "A1", want: Coordinate{Row: 0, Number: 1}},
		{raw: "C7", want: Coordinate{Row: 2, Number: 7}},
		{raw: "Z120", want: Coordinate{Row: 25, Number: 120}},
		{raw: "", wantErr: true},
		{raw: "A", wantErr: true},
		{raw: "A0", wantErr: true},
		{raw: "A01", wantErr: true},
		{raw: "a1", wantErr: true},
		{raw: "AA1", wantErr: true},
		{raw: "1A", wantErr: true},
		{raw: "B-2", wantErr: true},
		{raw: "B2 ", wantErr: true},
		{raw: "B99999999999999999999999", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := CoordinateOf(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidIdentifier)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIdentifierOfRejectsUnlabelledCoordinates(t *testing.T) {
	for _, c := range []Coordinate{{Row: -1, Number: 1}, {Row: 26, Number: 1}, {Row: 0, Number: 0}} {
		_, err := IdentifierOf(c)
		assert.ErrorIs(t, err, ErrInvalidCoordinate)
	}
}

func TestParseSeatType(t *testing.T) {
	tests := []struct {
		raw  string
		want SeatType
	}{
		{"", Standard},
		{"standard", Standard},
		{" vip ", VIP},
		{"Couple", Couple},
		{"DISABLED", Disabled},
		{"aisle", Aisle},
	}
	for _, tt := range tests {
		got, err := ParseSeatType(tt.raw)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
	_, err := ParseSeatType("LOUNGE")
	assert.ErrorIs(t, err, ErrUnknownSeatType)
}

func TestRowIndex(t *testing.T) {
	idx, ok := RowIndex("c")
	assert.True(t, ok)
	assert.Equal(t, 2, idx)

	_, ok = RowIndex("AA")
	assert.False(t, ok)
	_, ok = RowIndex("")
	assert.False(t, ok)
}

func TestBuildGrid(t *testing.T) {
	seats := []Seat{
		{Coordinate: Coordinate{Row: 0, Number: 1}, Type: Standard},
		{Coordinate: Coordinate{Row: 0, Number: 2}, Type: VIP},
		{Coordinate: Coordinate{Row: 0, Number: 3}, Type: Aisle},
		{Coordinate: Coordinate{Row: 1, Number: 1}, Type: Disabled},
		{Coordinate: Coordinate{Row: 1, Number: 2}},
	}
	l, warnings := BuildGrid(2, 3, seats)
	assert.Empty(t, warnings)
	assert.Equal(t, 2, l.TotalRows())
	assert.Equal(t, 3, l.SeatsPerRow())

	grid := l.Grid()
	require.Len(t, grid, 2)
	require.Len(t, grid[0], 3)
	assert.Equal(t, VIP, grid[0][1].Type)
	assert.Nil(t, grid[0][2], "aisle cells are empty")
	assert.Nil(t, grid[1][2], "undefined cells are empty")
	assert.Equal(t, Standard, grid[1][1].Type, "missing type defaults to STANDARD")

	s, ok := l.LookupID("B1")
	require.True(t, ok)
	assert.Equal(t, Disabled, s.Type)
	assert.Equal(t, Identifier("B1"), s.ID())

	_, ok = l.LookupID("A3")
	assert.False(t, ok, "aisle is not a seat")
	_, ok = l.LookupID("C1")
	assert.False(t, ok)
	_, ok = l.LookupID("bogus")
	assert.False(t, ok)

	assert.Len(t, l.Seats(), 4)
	assert.Equal(t, map[SeatType]int{Standard: 2, VIP: 1, Aisle: 1, Disabled: 1}, l.Stats())
}

func TestBuildGridGridIsACopy(t *testing.T) {
	l, _ := BuildGrid(1, 1, []Seat{{Coordinate: Coordinate{Row: 0, Number: 1}, Type: Standard}})
	grid := l.Grid()
	grid[0][0].Type = Disabled

	s, ok := l.LookupID("A1")
	require.True(t, ok)
	assert.Equal(t, Standard, s.Type)
}

func TestBuildGridDropsOutOfBoundsSeats(t *testing.T) {
	seats := []Seat{
		{Coordinate: Coordinate{Row: 0, Number: 1}, Type: Standard},
		{Coordinate: Coordinate{Row: 0, Number: 4}, Type: Standard},
		{Coordinate: Coordinate{Row: 3, Number: 1}, Type: VIP},
		{Coordinate: Coordinate{Row: 40, Number: 1}, Type: VIP},
	}
	l, warnings := BuildGrid(2, 3, seats)
	require.Len(t, warnings, 3)
	for _, w := range warnings {
		assert.Equal(t, OutOfBoundsSeat, w.Kind)
	}
	assert.Equal(t, "row=40 number=1", warnings[2].Seat)
	assert.Len(t, l.Seats(), 1)
}

func TestBuildGridDuplicateLaterWins(t *testing.T) {
	seats := []Seat{
		{Coordinate: Coordinate{Row: 0, Number: 1}, Type: Standard},
		{Coordinate: Coordinate{Row: 0, Number: 1}, Type: Couple},
	}
	l, warnings := BuildGrid(1, 1, seats)
	require.Len(t, warnings, 1)
	assert.Equal(t, DuplicateSeat, warnings[0].Kind)
	s, _ := l.LookupID("A1")
	assert.Equal(t, Couple, s.Type)
}

func TestBuildGridDegenerateFallsBack(t *testing.T) {
	tests := []struct {
		name        string
		rows, seats int
	}{
		{"zero rows", 0, 5},
		{"zero seats", 4, 0},
		{"negative", -3, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, warnings := BuildGrid(tt.rows, tt.seats, nil)
			require.Len(t, warnings, 1)
			assert.Equal(t, DegenerateLayout, warnings[0].Kind)
			assert.Equal(t, DefaultRows, l.TotalRows())
			assert.Equal(t, DefaultSeatsPerRow, l.SeatsPerRow())

			grid := l.Grid()
			require.Len(t, grid, DefaultRows)
			for _, row := range grid {
				assert.Len(t, row, DefaultSeatsPerRow)
			}
			_, ok := l.Lookup(Coordinate{Row: DefaultRows - 1, Number: DefaultSeatsPerRow})
			assert.False(t, ok, "fallback grid is addressable but empty")
		})
	}
}

func TestBuildGridClampsRows(t *testing.T) {
	l, warnings := BuildGrid(30, 2, nil)
	require.Len(t, warnings, 1)
	assert.Equal(t, RowsClamped, warnings[0].Kind)
	assert.Equal(t, MaxRows, l.TotalRows())
}

func TestBuildGridClampsSeatsPerRow(t *testing.T) {
	seats := []Seat{
		{Coordinate: Coordinate{Row: 0, Number: MaxSeatsPerRow}, Type: VIP},
		{Coordinate: Coordinate{Row: 1, Number: MaxSeatsPerRow + 1}},
	}
	l, warnings := BuildGrid(2, 1<<50, seats)
	require.Len(t, warnings, 2)
	assert.Equal(t, SeatsClamped, warnings[0].Kind)
	assert.Equal(t, OutOfBoundsSeat, warnings[1].Kind)
	assert.Equal(t, MaxSeatsPerRow, l.SeatsPerRow())

	s, ok := l.LookupID("A99")
	require.True(t, ok)
	assert.Equal(t, VIP, s.Type)
	assert.Len(t, l.Grid()[0], MaxSeatsPerRow)
}

func TestBuildGridClampsBothDimensions(t *testing.T) {
	l, warnings := BuildGrid(2147483647, 2147483647, nil)
	require.Len(t, warnings, 2)
	assert.Equal(t, RowsClamped, warnings[0].Kind)
	assert.Equal(t, SeatsClamped, warnings[1].Kind)
	assert.Equal(t, MaxRows, l.TotalRows())
	assert.Equal(t, MaxSeatsPerRow, l.SeatsPerRow())
}
