package mocks

import (
	"context"

	"github.com/himakar4/movie-booking-system/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockSeatStore struct {
	mock.Mock
	// Tx is handed to the function passed to InShowTx.
	Tx domain.ReservationTx
}

func (m *MockSeatStore) OccupiedSeats(ctx context.Context, showID int) (domain.SeatSet, error) {
	args := m.Called(ctx, showID)
	if args.Get(0) == nil {
		return domain.SeatSet{}, args.Error(1)
	}
	return args.Get(0).(domain.SeatSet), args.Error(1)
}

// InShowTx returns the configured error without running fn, or runs fn with
// Tx when the configured error is nil.
func (m *MockSeatStore) InShowTx(ctx context.Context, showID int, fn func(tx domain.ReservationTx) error) error {
	args := m.Called(ctx, showID)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(m.Tx)
}
