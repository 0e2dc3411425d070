package mocks

import (
	"context"

	"github.com/himakar4/movie-booking-system/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockReservationTx struct {
	mock.Mock
}

func (m *MockReservationTx) OccupiedSeats(ctx context.Context) (domain.SeatSet, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return domain.SeatSet{}, args.Error(1)
	}
	return args.Get(0).(domain.SeatSet), args.Error(1)
}

func (m *MockReservationTx) TryReserve(ctx context.Context, seats []int) error {
	args := m.Called(ctx, seats)
	return args.Error(0)
}

func (m *MockReservationTx) CreateBooking(ctx context.Context, booking *domain.Booking) error {
	args := m.Called(ctx, booking)
	return args.Error(0)
}
