package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/himakar4/movie-booking-system/api"
	"github.com/himakar4/movie-booking-system/internal/domain"
	appvalidator "github.com/himakar4/movie-booking-system/internal/validator"
)

const (
	ErrInternalServer     = "The server encountered a problem and could not process your request"
	ErrNotFound           = "The requested resource not found"
	ErrShowNotFound       = "The requested show could not be found"
	ErrBookingNotFound    = "The requested booking could not be found"
	ErrFailedValidation   = "One or more fields are invalid"
	ErrServiceUnavailable = "The show is handling other bookings, please retry shortly"

	retryAfterSeconds = 1
)

func (app *Application) logError(r *http.Request, err error) {
	app.contextGetLogger(r).Error(err.Error())
}

// The errorResponse() method is a generic helper for sending JSON-formatted error
// messages to the client with a given status code.
func (app *Application) errorResponse(w http.ResponseWriter, r *http.Request, status int, message string) {
	app.writeError(w, r, status, api.ErrorResponse{Message: message}, nil)
}

// reasonResponse sends an error that clients can branch on by reason, with the
// seats that caused it when there are any.
func (app *Application) reasonResponse(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	reason api.ErrorReason,
	message string,
	seats []int,
	headers http.Header) {

	resp := api.ErrorResponse{
		Message: message,
		Reason:  &reason,
	}

	if len(seats) > 0 {
		resp.Seats = &seats
	}

	app.writeError(w, r, status, resp, headers)
}

func (app *Application) writeError(w http.ResponseWriter, r *http.Request, status int, resp api.ErrorResponse, headers http.Header) {
	resp.RequestId = middleware.GetReqID(r.Context())
	resp.Timestamp = time.Now()

	err := app.writeJSON(w, status, resp, headers)
	if err != nil {
		app.logError(r, err)
		w.WriteHeader(500)
	}
}

func (app *Application) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logError(r, err)

	app.errorResponse(w, r, http.StatusInternalServerError, ErrInternalServer)
}

func (app *Application) notFoundResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusNotFound, ErrNotFound)
}

func (app *Application) notFoundResponseWithMessage(w http.ResponseWriter, r *http.Request, message string) {
	app.errorResponse(w, r, http.StatusNotFound, message)
}

func (app *Application) methodNotAllowedResponse(w http.ResponseWriter, r *http.Request) {
	message := fmt.Sprintf("the %s method is not supported for this resource", r.Method)
	app.errorResponse(w, r, http.StatusMethodNotAllowed, message)
}

func (app *Application) badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.errorResponse(w, r, http.StatusBadRequest, err.Error())
}

// invalidParamResponse handles path, query and header values that could not
// be bound to their declared types.
func (app *Application) invalidParamResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.badRequestResponse(w, r, err)
}

// failedValidationResponse reports struct validation errors per field. Any
// other error is treated as a malformed request.
func (app *Application) failedValidationResponse(w http.ResponseWriter, r *http.Request, err error) {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		app.badRequestResponse(w, r, err)
		return
	}

	resp := api.ValidationErrorResponse{
		Message:          ErrFailedValidation,
		RequestId:        middleware.GetReqID(r.Context()),
		Timestamp:        time.Now(),
		ValidationErrors: make([]api.ValidationError, len(validationErrs)),
	}

	for i, fieldErr := range validationErrs {
		resp.ValidationErrors[i] = api.ValidationError{
			Field: fieldErr.Field(),
			Issue: appvalidator.ValidationMessage(fieldErr),
		}
	}

	err = app.writeJSON(w, http.StatusUnprocessableEntity, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) editConflictResponseWithErr(w http.ResponseWriter, r *http.Request, err error) {
	app.reasonResponse(w, r, http.StatusConflict, api.SeatConflict, err.Error(), domain.RejectedSeats(err), nil)
}

func (app *Application) rejectedSelectionResponse(w http.ResponseWriter, r *http.Request, reason api.ErrorReason, err error) {
	app.reasonResponse(w, r, http.StatusUnprocessableEntity, reason, err.Error(), domain.RejectedSeats(err), nil)
}

func (app *Application) serviceUnavailableResponse(w http.ResponseWriter, r *http.Request) {
	headers := http.Header{}
	headers.Set("Retry-After", fmt.Sprint(retryAfterSeconds))

	app.reasonResponse(w, r, http.StatusServiceUnavailable, api.ShowBusy, ErrServiceUnavailable, nil, headers)
}

// bookingErrorResponse maps errors returned by the reservation engine.
func (app *Application) bookingErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrShowNotFound):
		app.notFoundResponseWithMessage(w, r, ErrShowNotFound)
	case errors.Is(err, domain.ErrRecordNotFound):
		app.notFoundResponseWithMessage(w, r, ErrBookingNotFound)
	case errors.Is(err, domain.ErrEmptySelection):
		app.rejectedSelectionResponse(w, r, api.EmptySelection, err)
	case errors.Is(err, domain.ErrTooManySeats):
		app.rejectedSelectionResponse(w, r, api.TooManySeats, err)
	case errors.Is(err, domain.ErrDuplicateSeat):
		app.rejectedSelectionResponse(w, r, api.DuplicateSeat, err)
	case errors.Is(err, domain.ErrInvalidSeat):
		app.rejectedSelectionResponse(w, r, api.InvalidSeat, err)
	case errors.Is(err, domain.ErrSeatConflict):
		app.editConflictResponseWithErr(w, r, err)
	case errors.Is(err, domain.ErrBusy):
		app.serviceUnavailableResponse(w, r)
	case errors.Is(err, context.Canceled):
		// Nobody is left to read the response.
		app.contextGetLogger(r).Warn("request canceled by client", "error", err)
	default:
		app.serverErrorResponse(w, r, err)
	}
}
