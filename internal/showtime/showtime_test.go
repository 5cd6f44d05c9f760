package showtime

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-seat-booking/internal/seatmap"
)

func TestToDetailCamelCasePayload(t *testing.T) {
	payload := `{
		"showtimeId": 12,
		"movieTitle": "Dune",
		"roomName": "Room 1",
		"startsAt": "2025-03-01T19:30:00",
		"totalRows": 2,
		"seatsPerRow": 3,
		"basePrice": 90000.00,
		"allSeats": [
			{"rowLabel": "A", "seatNumber": 1, "type": "STANDARD"},
			{"rowLabel": "A", "seatNumber": 2, "type": "vip"},
			{"rowLabel": "B", "seatNumber": 3, "type": "COUPLE"}
		],
		"bookedSeatIds": ["A1"]
	}`
	var dto DetailDTO
	require.NoError(t, json.Unmarshal([]byte(payload), &dto))

	d, err := ToDetail(&dto)
	require.NoError(t, err)
	assert.Equal(t, uint64(12), d.ID)
	assert.Equal(t, "Dune", d.MovieTitle)
	assert.Equal(t, "Room 1", d.RoomName)
	assert.Equal(t, time.Date(2025, 3, 1, 19, 30, 0, 0, time.UTC), d.StartsAt)
	assert.Equal(t, int64(90000), d.BasePrice)
	assert.Equal(t, []seatmap.Identifier{"A1"}, d.Booked)
	assert.Empty(t, d.Warnings)

	s, ok := d.Layout.LookupID("A2")
	require.True(t, ok)
	assert.Equal(t, seatmap.VIP, s.Type)
	assert.Equal(t, 2, d.Layout.TotalRows())
}

func TestToDetailSnakeCasePayload(t *testing.T) {
	payload := `{
		"showtime_id": 5,
		"movie_title": "Alien",
		"show_date": "2025-03-01 10:00:00",
		"total_rows": 1,
		"seats_per_row": 2,
		"base_price": 70000.5,
		"seats": [
			{"row_label": "a", "seat_number": 1, "seat_type": "DISABLED"},
			{"row": "A", "number": 2}
		],
		"booked_seats": ["a2"]
	}`
	var dto DetailDTO
	require.NoError(t, json.Unmarshal([]byte(payload), &dto))

	d, err := ToDetail(&dto)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), d.ID)
	assert.Equal(t, "Alien", d.MovieTitle)
	assert.Equal(t, time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC), d.StartsAt)
	assert.Equal(t, int64(70001), d.BasePrice, "decimal prices round half-up")
	assert.Equal(t, []seatmap.Identifier{"A2"}, d.Booked)

	s, ok := d.Layout.LookupID("A1")
	require.True(t, ok)
	assert.Equal(t, seatmap.Disabled, s.Type)
	s, ok = d.Layout.LookupID("A2")
	require.True(t, ok)
	assert.Equal(t, seatmap.Standard, s.Type)
}

func TestToDetailCollectsWarnings(t *testing.T) {
	dto := &DetailDTO{
		ID:        3,
		TotalRows: 0,
		Seats: []SeatDTO{
			{RowLabel: "A", SeatNumber: 1, Type: "LOUNGE"},
			{RowLabel: "AA", SeatNumber: 1},
			{RowLabel: "B", SeatNumber: 0},
			{RowLabel: "K", SeatNumber: 1},
		},
		BookedSeatIDs: []string{"A1", "??"},
	}
	d, err := ToDetail(dto)
	require.NoError(t, err)

	kinds := map[seatmap.WarningKind]int{}
	for _, w := range d.Warnings {
		kinds[w.Kind]++
	}
	assert.Equal(t, 1, kinds[seatmap.UnknownSeatType])
	assert.Equal(t, 3, kinds[seatmap.MalformedSeat])
	assert.Equal(t, 1, kinds[seatmap.DegenerateLayout])
	assert.Equal(t, 1, kinds[seatmap.OutOfBoundsSeat], "row K is outside the 10-row fallback grid")

	assert.Equal(t, seatmap.DefaultRows, d.Layout.TotalRows())
	s, ok := d.Layout.LookupID("A1")
	require.True(t, ok)
	assert.Equal(t, seatmap.Standard, s.Type)
	assert.Equal(t, []seatmap.Identifier{"A1"}, d.Booked)
}

func TestToDetailRequiresID(t *testing.T) {
	_, err := ToDetail(&DetailDTO{MovieTitle: "x"})
	assert.ErrorIs(t, err, ErrMissingID)
	_, err = ToDetail(nil)
	assert.ErrorIs(t, err, ErrMissingID)
}

func TestToDetailClampsHugeRowWidth(t *testing.T) {
	d, err := ToDetail(&DetailDTO{ID: 1, TotalRows: 2, SeatsPerRow: 1 << 50})
	require.NoError(t, err)
	assert.Equal(t, seatmap.MaxSeatsPerRow, d.Layout.SeatsPerRow())
	require.Len(t, d.Warnings, 1)
	assert.Equal(t, seatmap.SeatsClamped, d.Warnings[0].Kind)
}

func TestParseStartsAtUnknownFormatIsZero(t *testing.T) {
	assert.True(t, parseStartsAt("next tuesday").IsZero())
	assert.Equal(t, time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC), parseStartsAt("2025-01-02T10:04:05+07:00"))
}

type countingSource struct {
	calls int
	dto   *DetailDTO
	err   error
}

func (s *countingSource) FetchDetail(_ context.Context, _ uint64) (*DetailDTO, error) {
	s.calls++
	return s.dto, s.err
}

func TestCachedSourceReadThrough(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	next := &countingSource{dto: &DetailDTO{ShowtimeID: 4, MovieTitle: "Heat", BookedSeatIDs: []string{"B2"}}}
	c := NewCachedSource(next, rdb, "showtime", time.Minute, nil)
	ctx := context.Background()

	first, err := c.FetchDetail(ctx, 4)
	require.NoError(t, err)
	second, err := c.FetchDetail(ctx, 4)
	require.NoError(t, err)

	assert.Equal(t, 1, next.calls)
	assert.Equal(t, first, second)
	assert.True(t, mr.Exists("showtime:4:detail"))

	require.NoError(t, c.Invalidate(ctx, 4))
	_, err = c.FetchDetail(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, 2, next.calls)
}

func TestCachedSourceDoesNotCacheErrors(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	next := &countingSource{err: ErrNotFound}
	c := NewCachedSource(next, rdb, "", 0, nil)

	_, err := c.FetchDetail(context.Background(), 9)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, mr.Exists("showtime:9:detail"))
}

func TestCachedSourceFallsThroughWhenRedisIsDown(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer rdb.Close()
	mr.Close()

	next := &countingSource{dto: &DetailDTO{ID: 1}}
	c := NewCachedSource(next, rdb, "", time.Minute, nil)

	dto, err := c.FetchDetail(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), dto.ID)
	assert.Equal(t, 1, next.calls)
}

func TestCachedSourceWithoutRedis(t *testing.T) {
	next := &countingSource{dto: &DetailDTO{ID: 1}}
	c := NewCachedSource(next, nil, "", 0, nil)
	_, err := c.FetchDetail(context.Background(), 1)
	require.NoError(t, err)
	_, err = c.FetchDetail(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 2, next.calls)
	assert.NoError(t, c.Invalidate(context.Background(), 1))
}
