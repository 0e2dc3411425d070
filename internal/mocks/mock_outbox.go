package mocks

import (
	"context"

	"github.com/himakar4/movie-booking-system/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockOutboxRepo struct {
	mock.Mock
	Batch domain.OutboxBatch
}

// FetchPending hands the configured events to fn along with Batch.
func (m *MockOutboxRepo) FetchPending(
	ctx context.Context,
	limit, maxAttempts int,
	fn func(ctx context.Context, batch domain.OutboxBatch, events []domain.OutboxEvent) error) error {

	args := m.Called(ctx, limit, maxAttempts)
	if err := args.Error(1); err != nil {
		return err
	}

	events, _ := args.Get(0).([]domain.OutboxEvent)
	if len(events) == 0 {
		return nil
	}

	return fn(ctx, m.Batch, events)
}

type MockOutboxBatch struct {
	mock.Mock
}

func (m *MockOutboxBatch) MarkPublished(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOutboxBatch) MarkFailed(ctx context.Context, id int64, reason string) error {
	args := m.Called(ctx, id, reason)
	return args.Error(0)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, eventType string, body []byte) error {
	args := m.Called(ctx, eventType, body)
	return args.Error(0)
}

func (m *MockPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}
