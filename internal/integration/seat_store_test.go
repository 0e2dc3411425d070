package integration_test

import (
	"context"
	"testing"
	"time"

	"github.com/himakar4/movie-booking-system/internal/domain"
	"github.com/himakar4/movie-booking-system/internal/repository"
	"github.com/stretchr/testify/suite"
)

type SeatStoreTestSuite struct {
	BaseSuite
	store *repository.PostgresSeatStore
}

func TestSeatStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration tests")
	}

	suite.Run(t, new(SeatStoreTestSuite))
}

func (s *SeatStoreTestSuite) SetupSuite() {
	s.BaseSuite.SetupSuite()
	s.store = repository.NewPostgresSeatStore(s.app.DB, repository.SeatStoreConfig{LockTimeout: 2 * time.Second})
}

func (s *SeatStoreTestSuite) SetupTest() {
	setupShows(s.T(), s.app)
}

func (s *SeatStoreTestSuite) TestTryReserveRejectsUnknownSeats() {
	tests := []struct {
		name      string
		seats     []int
		wantErr   error
		wantSeats []int
	}{
		{
			name:      "should reject seats outside of the show",
			seats:     []int{0, TestShowCapacity + 1, 3},
			wantErr:   domain.ErrInvalidSeat,
			wantSeats: []int{0, TestShowCapacity + 1},
		},
		{
			name:      "should reject repeated seats",
			seats:     []int{4, 4},
			wantErr:   domain.ErrDuplicateSeat,
			wantSeats: []int{4},
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			ctx := context.Background()

			err := s.store.InShowTx(ctx, TestShowId, func(tx domain.ReservationTx) error {
				if err := tx.TryReserve(ctx, tt.seats); err != nil {
					return err
				}
				return tx.CreateBooking(ctx, &domain.Booking{ShowID: TestShowId, UserID: TestUserId, Seats: tt.seats})
			})

			s.Require().ErrorIs(err, tt.wantErr)
			s.Equal(tt.wantSeats, domain.RejectedSeats(err))
			s.Equal(0, countRows(s.T(), s.app, "booking_seats"))
			s.Equal(0, countRows(s.T(), s.app, "bookings"))
		})
	}
}

func (s *SeatStoreTestSuite) TestCreateBookingCarriesShowSummary() {
	ctx := context.Background()
	booking := &domain.Booking{ShowID: TestShowId, UserID: TestUserId, Seats: []int{5}}

	err := s.store.InShowTx(ctx, TestShowId, func(tx domain.ReservationTx) error {
		if err := tx.TryReserve(ctx, booking.Seats); err != nil {
			return err
		}
		return tx.CreateBooking(ctx, booking)
	})
	s.Require().NoError(err)

	s.Equal("Inception", booking.Show.MovieTitle)
	s.Equal("PVR Phoenix", booking.Show.CinemaName)
	s.True(booking.Show.StartTime.Equal(time.Date(2026, 1, 1, 18, 0, 0, 0, time.UTC)))
}
