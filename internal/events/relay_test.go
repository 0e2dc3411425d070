package events

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/himakar4/movie-booking-system/internal/domain"
	"github.com/himakar4/movie-booking-system/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type RelayTestSuite struct {
	suite.Suite
	outbox    *mocks.MockOutboxRepo
	batch     *mocks.MockOutboxBatch
	publisher *mocks.MockPublisher
	relay     *Relay
}

func (s *RelayTestSuite) SetupTest() {
	s.batch = new(mocks.MockOutboxBatch)
	s.outbox = &mocks.MockOutboxRepo{Batch: s.batch}
	s.publisher = new(mocks.MockPublisher)

	s.relay = NewRelay(
		RelayConfig{PollInterval: 10 * time.Millisecond, BatchSize: 10, MaxAttempts: 3},
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		s.outbox,
		s.publisher,
	)
}

func TestRelaySuite(t *testing.T) {
	suite.Run(t, new(RelayTestSuite))
}

func testEvents() []domain.OutboxEvent {
	return []domain.OutboxEvent{
		{ID: 1, BookingID: 10, Type: domain.EventBookingCreated, Payload: []byte(`{"bookingId":10}`)},
		{ID: 2, BookingID: 11, Type: domain.EventBookingCreated, Payload: []byte(`{"bookingId":11}`)},
	}
}

func (s *RelayTestSuite) TestRelayOnce() {
	tests := []struct {
		name          string
		setupMocks    func()
		wantPublished int
		wantErr       bool
	}{
		{
			name: "should mark every delivered event as published",
			setupMocks: func() {
				s.outbox.On("FetchPending", mock.Anything, 10, 3).Return(testEvents(), nil)
				s.publisher.On("Publish", mock.Anything, domain.EventBookingCreated, mock.Anything).Return(nil)
				s.batch.On("MarkPublished", mock.Anything, int64(1)).Return(nil)
				s.batch.On("MarkPublished", mock.Anything, int64(2)).Return(nil)
			},
			wantPublished: 2,
		},
		{
			name: "should record failure and continue with the rest of the batch",
			setupMocks: func() {
				s.outbox.On("FetchPending", mock.Anything, 10, 3).Return(testEvents(), nil)
				s.publisher.On("Publish", mock.Anything, domain.EventBookingCreated, []byte(`{"bookingId":10}`)).
					Return(errors.New("broker down"))
				s.publisher.On("Publish", mock.Anything, domain.EventBookingCreated, []byte(`{"bookingId":11}`)).
					Return(nil)
				s.batch.On("MarkFailed", mock.Anything, int64(1), "broker down").Return(nil)
				s.batch.On("MarkPublished", mock.Anything, int64(2)).Return(nil)
			},
			wantPublished: 1,
		},
		{
			name: "should record failure when broker nacks",
			setupMocks: func() {
				s.outbox.On("FetchPending", mock.Anything, 10, 3).Return(testEvents()[:1], nil)
				s.publisher.On("Publish", mock.Anything, domain.EventBookingCreated, mock.Anything).Return(ErrNacked)
				s.batch.On("MarkFailed", mock.Anything, int64(1), ErrNacked.Error()).Return(nil)
			},
		},
		{
			name: "should record the final failed attempt",
			setupMocks: func() {
				event := testEvents()[0]
				event.Attempts = 2
				s.outbox.On("FetchPending", mock.Anything, 10, 3).Return([]domain.OutboxEvent{event}, nil)
				s.publisher.On("Publish", mock.Anything, domain.EventBookingCreated, mock.Anything).
					Return(errors.New("broker down"))
				s.batch.On("MarkFailed", mock.Anything, int64(1), "broker down").Return(nil)
			},
		},
		{
			name: "should do nothing when outbox is empty",
			setupMocks: func() {
				s.outbox.On("FetchPending", mock.Anything, 10, 3).Return([]domain.OutboxEvent{}, nil)
			},
		},
		{
			name: "should fail when outbox cannot be read",
			setupMocks: func() {
				s.outbox.On("FetchPending", mock.Anything, 10, 3).Return(nil, errors.New("db down"))
			},
			wantErr: true,
		},
		{
			name: "should abort the batch when a mark fails",
			setupMocks: func() {
				s.outbox.On("FetchPending", mock.Anything, 10, 3).Return(testEvents(), nil)
				s.publisher.On("Publish", mock.Anything, domain.EventBookingCreated, mock.Anything).Return(nil)
				s.batch.On("MarkPublished", mock.Anything, int64(1)).Return(errors.New("tx aborted"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.SetupTest()
			tt.setupMocks()

			published, err := s.relay.RelayOnce(context.Background())

			if tt.wantErr {
				s.Error(err)
				s.Zero(published)
			} else {
				s.NoError(err)
				s.Equal(tt.wantPublished, published)
			}

			s.outbox.AssertExpectations(s.T())
			s.publisher.AssertExpectations(s.T())
			s.batch.AssertExpectations(s.T())
		})
	}
}

func (s *RelayTestSuite) TestRunStopsWithContext() {
	polled := make(chan struct{}, 1)
	s.outbox.On("FetchPending", mock.Anything, 10, 3).Return([]domain.OutboxEvent{}, nil).Run(func(mock.Arguments) {
		select {
		case polled <- struct{}{}:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		s.relay.Run(ctx)
		close(done)
	}()

	select {
	case <-polled:
	case <-time.After(time.Second):
		s.Fail("relay never polled")
	}

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		s.Fail("relay did not stop")
	}
}

func TestNewRelayDefaults(t *testing.T) {
	relay := NewRelay(RelayConfig{}, slog.New(slog.NewTextHandler(io.Discard, nil)), nil, nil)

	assert.Equal(t, DefaultPollInterval, relay.config.PollInterval)
	assert.Equal(t, DefaultBatchSize, relay.config.BatchSize)
	assert.Equal(t, DefaultMaxAttempts, relay.config.MaxAttempts)
}
