package reservation

import (
	"context"
	"strings"

	"github.com/himakar4/movie-booking-system/internal/domain"
	"golang.org/x/sync/errgroup"
)

const seatsPerRowHint = 10

// SeatMap lays the show's seats out in lettered rows with their status. The
// show and its occupancy are fetched concurrently.
func (e *Engine) SeatMap(ctx context.Context, showID int) (*domain.SeatMap, error) {
	var (
		show     *domain.Show
		occupied domain.SeatSet
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		show, err = e.getShow(gctx, showID)
		return err
	})

	g.Go(func() error {
		var err error
		occupied, err = e.seats.OccupiedSeats(gctx, showID)
		if err != nil {
			return storeError("read occupied seats", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return buildSeatMap(show, occupied), nil
}

func buildSeatMap(show *domain.Show, occupied domain.SeatSet) *domain.SeatMap {
	seatMap := &domain.SeatMap{
		ShowID:       show.ID,
		Capacity:     show.Capacity,
		PricePerSeat: show.PricePerSeat,
		Rows:         []domain.SeatRow{},
	}

	if show.Capacity <= 0 {
		return seatMap
	}

	rows := ceilDiv(show.Capacity, seatsPerRowHint)
	perRow := ceilDiv(show.Capacity, rows)

	for seat := 1; seat <= show.Capacity; seat++ {
		idx := (seat - 1) / perRow
		if idx == len(seatMap.Rows) {
			seatMap.Rows = append(seatMap.Rows, domain.SeatRow{
				Label: rowLabel(idx),
				Seats: make([]domain.SeatMapSeat, 0, perRow),
			})
		}

		status := domain.SeatAvailable
		if occupied.Has(seat) {
			status = domain.SeatOccupied
		} else {
			seatMap.AvailableCount++
		}

		seatMap.Rows[idx].Seats = append(seatMap.Rows[idx].Seats, domain.SeatMapSeat{
			Number: seat,
			Status: status,
		})
	}

	return seatMap
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

// rowLabel maps 0, 1, ..., 25, 26 to A, B, ..., Z, AA.
func rowLabel(idx int) string {
	var sb strings.Builder
	for idx >= 0 {
		sb.WriteByte(byte('A' + idx%26))
		idx = idx/26 - 1
	}

	b := []byte(sb.String())
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}

	return string(b)
}
