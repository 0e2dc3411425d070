package app

import (
	"fmt"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3filter"
)

func (app *Application) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				w.Header().Set("Connection", "close")

				app.serverErrorResponse(w, r, fmt.Errorf("%s", err))
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// validateRequest checks parameters and bodies against api.yaml. Requests that
// match no documented operation are left to the router.
func (app *Application) validateRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route, pathParams, err := app.router.FindRoute(r)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		input := &openapi3filter.RequestValidationInput{
			Request:    r,
			PathParams: pathParams,
			Route:      route,
		}

		err = openapi3filter.ValidateRequest(r.Context(), input)
		if err != nil {
			app.contextGetLogger(r).Warn("request does not match api document", "error", err)
			app.badRequestResponse(w, r, err)
			return
		}

		next.ServeHTTP(w, r)
	})
}
