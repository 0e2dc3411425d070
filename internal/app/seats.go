package app

import (
	"errors"
	"net/http"

	"github.com/himakar4/movie-booking-system/api"
	"github.com/himakar4/movie-booking-system/internal/domain"
)

var errInvalidShowID = errors.New("show ID must be greater than zero")

func (app *Application) GetOccupiedSeats(w http.ResponseWriter, r *http.Request, showID int) {
	if showID < 1 {
		app.badRequestResponse(w, r, errInvalidShowID)
		return
	}

	show, occupied, err := app.engine.OccupiedSeats(r.Context(), showID)
	if err != nil {
		app.bookingErrorResponse(w, r, err)
		return
	}

	resp := api.OccupiedSeatsResponse{
		ShowId:      show.ID,
		Capacity:    show.Capacity,
		BookedSeats: occupied.Sorted(),
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) GetSeatMap(w http.ResponseWriter, r *http.Request, showID int) {
	if showID < 1 {
		app.badRequestResponse(w, r, errInvalidShowID)
		return
	}

	seatMap, err := app.engine.SeatMap(r.Context(), showID)
	if err != nil {
		app.bookingErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, toSeatMapResponse(seatMap), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func toSeatMapResponse(seatMap *domain.SeatMap) api.SeatMapResponse {
	return api.SeatMapResponse{
		ShowId:         seatMap.ShowID,
		Capacity:       seatMap.Capacity,
		PricePerSeat:   seatMap.PricePerSeat,
		AvailableCount: seatMap.AvailableCount,
		Rows:           toSeatRows(seatMap.Rows),
	}
}

func toSeatRows(rows []domain.SeatRow) []api.SeatRow {
	seatRows := make([]api.SeatRow, len(rows))

	for i, row := range rows {
		seats := make([]api.Seat, len(row.Seats))
		for j, seat := range row.Seats {
			seats[j] = api.Seat{
				Number: seat.Number,
				Status: api.SeatStatus(seat.Status),
			}
		}

		seatRows[i] = api.SeatRow{Row: row.Label, Seats: seats}
	}

	return seatRows
}
