package app

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/himakar4/movie-booking-system/api"
	"github.com/himakar4/movie-booking-system/internal/domain"
	"github.com/himakar4/movie-booking-system/internal/repository"
	"github.com/himakar4/movie-booking-system/internal/reservation"
	"github.com/himakar4/movie-booking-system/internal/validator"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func testShows() []*domain.Show {
	start := time.Date(2026, 1, 1, 18, 0, 0, 0, time.UTC)

	return []*domain.Show{
		{ID: 1, MovieTitle: "Inception", CinemaName: "PVR Phoenix", StartTime: start, Capacity: 50, PricePerSeat: decimal.NewFromInt(150)},
		{ID: 2, MovieTitle: "Interstellar", CinemaName: "INOX Forum", StartTime: start, Capacity: 25, PricePerSeat: decimal.NewFromInt(200)},
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestApplication builds an app over a fresh in-memory store. Options run
// after the defaults, so they can swap the engine or the redis client.
func newTestApplication(t *testing.T, opts ...func(*Application)) (*Application, *repository.MemoryStore) {
	t.Helper()

	store := repository.NewMemoryStore(testShows()...)
	engine := reservation.NewEngine(reservation.Config{}, testLogger(), store, store, store.Bookings())

	app, err := NewApp(Config{Env: "test", Store: StoreMemory}, testLogger(), nil, nil, validator.NewValidator(), engine, nil)
	require.NoError(t, err)

	for _, opt := range opts {
		opt(app)
	}

	return app, store
}

func executeRequest(t *testing.T, method, url string, body any) (*httptest.ResponseRecorder, *http.Request) {
	var reader io.Reader

	switch v := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(v)
	default:
		jsonData, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(jsonData)
	}

	r := httptest.NewRequest(method, url, reader)
	if reader != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()

	return w, r
}

type errorExpectation struct {
	wantStatus     int
	wantErrMessage string
	wantReason     api.ErrorReason
	wantSeats      []int
}

func checkErrorResponse(t *testing.T, w *httptest.ResponseRecorder, tt errorExpectation) {
	t.Helper()

	if tt.wantStatus >= 200 && tt.wantStatus < 300 {
		return
	}

	if tt.wantReason == "" && tt.wantStatus == http.StatusUnprocessableEntity {
		var validationResp api.ValidationErrorResponse
		if err := json.NewDecoder(w.Body).Decode(&validationResp); err != nil {
			t.Fatalf("Failed to decode validation error response: %v", err)
		}

		errorSet := make(map[string]bool)
		for _, vErr := range validationResp.ValidationErrors {
			errorSet[vErr.Issue] = true
		}

		if !errorSet[tt.wantErrMessage] {
			t.Errorf("Expected validation error message '%s' not found in response", tt.wantErrMessage)
		}

		return
	}

	var errorResp api.ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&errorResp); err != nil {
		t.Fatalf("Failed to decode error response: %v", err)
	}

	if tt.wantErrMessage != "" && errorResp.Message != tt.wantErrMessage {
		t.Errorf("Error message = %v, want %v", errorResp.Message, tt.wantErrMessage)
	}

	if tt.wantReason != "" {
		if errorResp.Reason == nil || *errorResp.Reason != tt.wantReason {
			t.Errorf("Error reason = %v, want %v", errorResp.Reason, tt.wantReason)
		}
	}

	if tt.wantSeats != nil {
		if errorResp.Seats == nil {
			t.Fatalf("Error seats missing, want %v", tt.wantSeats)
		}
		require.Equal(t, tt.wantSeats, *errorResp.Seats)
	}
}

func ptr[T any](v T) *T {
	return &v
}
