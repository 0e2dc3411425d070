package app

import (
	"errors"
	"net/http"

	"github.com/himakar4/movie-booking-system/api"
	"github.com/himakar4/movie-booking-system/internal/domain"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 10
)

var (
	errInvalidBookingID = errors.New("booking ID must be greater than zero")
	errInvalidUserID    = errors.New("user ID must be greater than zero")
)

func (app *Application) CreateBooking(w http.ResponseWriter, r *http.Request, params api.CreateBookingParams) {
	var input api.CreateBookingRequest

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	booking, err := app.engine.CommitBooking(r.Context(), input.ShowId, input.UserId, input.Seats)
	if err != nil {
		app.bookingErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusCreated, toBookingResponse(booking), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) GetBooking(w http.ResponseWriter, r *http.Request, bookingID int) {
	if bookingID < 1 {
		app.badRequestResponse(w, r, errInvalidBookingID)
		return
	}

	booking, err := app.engine.GetBooking(r.Context(), bookingID)
	if err != nil {
		app.bookingErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, toBookingResponse(booking), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) GetUserBookings(
	w http.ResponseWriter,
	r *http.Request,
	userID int,
	params api.GetUserBookingsParams) {

	if userID < 1 {
		app.badRequestResponse(w, r, errInvalidUserID)
		return
	}

	err := app.validator.Struct(params)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	bookings, metadata, err := app.engine.ListBookingsForUser(r.Context(), userID, toPagination(params))
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.UserBookingsResponse{
		Bookings: make([]api.BookingResponse, len(bookings)),
		Metadata: *toApiMetadata(metadata),
	}

	for i := range bookings {
		resp.Bookings[i] = toBookingResponse(&bookings[i])
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func toBookingResponse(b *domain.Booking) api.BookingResponse {
	return api.BookingResponse{
		Id:        b.ID,
		Reference: b.Reference,
		ShowId:    b.ShowID,
		Show:      toBookingShow(b.Show),
		UserId:    b.UserID,
		Seats:     b.Seats,
		Subtotal:  b.Subtotal,
		Fee:       b.Fee,
		Total:     b.Total,
		CreatedAt: b.CreatedAt,
	}
}

func toBookingShow(s domain.ShowSummary) api.BookingShow {
	return api.BookingShow{
		MovieTitle: s.MovieTitle,
		CinemaName: s.CinemaName,
		StartTime:  s.StartTime,
	}
}

func toPagination(params api.GetUserBookingsParams) domain.Pagination {
	pagination := domain.Pagination{
		Page:     DefaultPage,
		PageSize: DefaultPageSize,
	}

	if params.Page != nil {
		pagination.Page = *params.Page
	}
	if params.PageSize != nil {
		pagination.PageSize = *params.PageSize
	}

	return pagination
}

func toApiMetadata(metadata *domain.Metadata) *api.Metadata {
	if metadata == nil {
		return &api.Metadata{}
	}

	return &api.Metadata{
		CurrentPage:  metadata.CurrentPage,
		FirstPage:    metadata.FirstPage,
		LastPage:     metadata.LastPage,
		PageSize:     metadata.PageSize,
		TotalRecords: metadata.TotalRecords,
	}
}
