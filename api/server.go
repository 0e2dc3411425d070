package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

type ServerInterface interface {
	// (GET /healthcheck)
	GetHealth(w http.ResponseWriter, r *http.Request)
	// (GET /shows/{showId}/seats)
	GetOccupiedSeats(w http.ResponseWriter, r *http.Request, showId int)
	// (GET /shows/{showId}/seat-map)
	GetSeatMap(w http.ResponseWriter, r *http.Request, showId int)
	// (POST /bookings)
	CreateBooking(w http.ResponseWriter, r *http.Request, params CreateBookingParams)
	// (GET /bookings/{bookingId})
	GetBooking(w http.ResponseWriter, r *http.Request, bookingId int)
	// (GET /users/{userId}/bookings)
	GetUserBookings(w http.ResponseWriter, r *http.Request, userId int, params GetUserBookingsParams)
}

type MiddlewareFunc func(http.Handler) http.Handler

type ChiServerOptions struct {
	BaseURL          string
	BaseRouter       chi.Router
	Middlewares      []MiddlewareFunc
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// ServerInterfaceWrapper binds path, query and header parameters before
// calling the handler.
type ServerInterfaceWrapper struct {
	Handler            ServerInterface
	HandlerMiddlewares []MiddlewareFunc
	ErrorHandlerFunc   func(w http.ResponseWriter, r *http.Request, err error)
}

type InvalidParamFormatError struct {
	ParamName string
	Err       error
}

func (e *InvalidParamFormatError) Error() string {
	return fmt.Sprintf("invalid format for parameter %s: %s", e.ParamName, e.Err.Error())
}

func (e *InvalidParamFormatError) Unwrap() error {
	return e.Err
}

func (siw *ServerInterfaceWrapper) GetHealth(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.GetHealth(w, r)
	})
}

func (siw *ServerInterfaceWrapper) GetOccupiedSeats(w http.ResponseWriter, r *http.Request) {
	showId, ok := siw.bindPathInt(w, r, "showId")
	if !ok {
		return
	}

	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.GetOccupiedSeats(w, r, showId)
	})
}

func (siw *ServerInterfaceWrapper) GetSeatMap(w http.ResponseWriter, r *http.Request) {
	showId, ok := siw.bindPathInt(w, r, "showId")
	if !ok {
		return
	}

	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.GetSeatMap(w, r, showId)
	})
}

func (siw *ServerInterfaceWrapper) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var params CreateBookingParams

	if values := r.Header.Values("Idempotency-Key"); len(values) > 0 {
		if len(values) > 1 {
			siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{
				ParamName: "Idempotency-Key",
				Err:       fmt.Errorf("expected one value, got %d", len(values)),
			})
			return
		}

		key := values[0]
		params.IdempotencyKey = &key
	}

	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.CreateBooking(w, r, params)
	})
}

func (siw *ServerInterfaceWrapper) GetBooking(w http.ResponseWriter, r *http.Request) {
	bookingId, ok := siw.bindPathInt(w, r, "bookingId")
	if !ok {
		return
	}

	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.GetBooking(w, r, bookingId)
	})
}

func (siw *ServerInterfaceWrapper) GetUserBookings(w http.ResponseWriter, r *http.Request) {
	userId, ok := siw.bindPathInt(w, r, "userId")
	if !ok {
		return
	}

	var params GetUserBookingsParams

	err := runtime.BindQueryParameter("form", true, false, "page", r.URL.Query(), &params.Page)
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "page", Err: err})
		return
	}

	err = runtime.BindQueryParameter("form", true, false, "pageSize", r.URL.Query(), &params.PageSize)
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "pageSize", Err: err})
		return
	}

	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.GetUserBookings(w, r, userId, params)
	})
}

func (siw *ServerInterfaceWrapper) bindPathInt(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	var value int

	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &value,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: name, Err: err})
		return 0, false
	}

	return value, true
}

func (siw *ServerInterfaceWrapper) serve(w http.ResponseWriter, r *http.Request, fn http.HandlerFunc) {
	var handler http.Handler = fn
	for _, middleware := range siw.HandlerMiddlewares {
		handler = middleware(handler)
	}

	handler.ServeHTTP(w, r)
}

// HandlerFromMux registers the routes of si on r.
func HandlerFromMux(si ServerInterface, r chi.Router) http.Handler {
	return HandlerWithOptions(si, ChiServerOptions{
		BaseRouter: r,
	})
}

func HandlerWithOptions(si ServerInterface, options ChiServerOptions) http.Handler {
	r := options.BaseRouter

	if r == nil {
		r = chi.NewRouter()
	}
	if options.ErrorHandlerFunc == nil {
		options.ErrorHandlerFunc = func(w http.ResponseWriter, r *http.Request, err error) {
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
	}

	wrapper := ServerInterfaceWrapper{
		Handler:            si,
		HandlerMiddlewares: options.Middlewares,
		ErrorHandlerFunc:   options.ErrorHandlerFunc,
	}

	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/healthcheck", wrapper.GetHealth)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/shows/{showId}/seats", wrapper.GetOccupiedSeats)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/shows/{showId}/seat-map", wrapper.GetSeatMap)
	})
	r.Group(func(r chi.Router) {
		r.Post(options.BaseURL+"/bookings", wrapper.CreateBooking)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/bookings/{bookingId}", wrapper.GetBooking)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/users/{userId}/bookings", wrapper.GetUserBookings)
	})

	return r
}
