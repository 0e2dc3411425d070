package reservation

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/himakar4/movie-booking-system/internal/reservation"

type outcome string

const (
	outcomeCommitted outcome = "committed"
	outcomeRejected  outcome = "rejected"
	outcomeConflict  outcome = "conflict"
	outcomeBusy      outcome = "busy"
	outcomeCanceled  outcome = "canceled"
	outcomeFailed    outcome = "failed"
)

type metrics struct {
	commits  metric.Int64Counter
	seats    metric.Int64Counter
	lockWait metric.Float64Histogram
}

func newMetrics() *metrics {
	meter := otel.Meter(instrumentationName)

	commits, err := meter.Int64Counter(
		"reservation.commits",
		metric.WithDescription("Booking commit attempts by outcome"),
		metric.WithUnit("{commit}"),
	)
	if err != nil {
		otel.Handle(err)
	}

	seats, err := meter.Int64Counter(
		"reservation.seats_sold",
		metric.WithDescription("Seats sold by committed bookings"),
		metric.WithUnit("{seat}"),
	)
	if err != nil {
		otel.Handle(err)
	}

	lockWait, err := meter.Float64Histogram(
		"reservation.lock_wait",
		metric.WithDescription("Time spent waiting for the per-show commit lock"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		otel.Handle(err)
	}

	return &metrics{
		commits:  commits,
		seats:    seats,
		lockWait: lockWait,
	}
}

func (m *metrics) recordCommit(ctx context.Context, o outcome, seats int) {
	m.commits.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", string(o))))
	if o == outcomeCommitted {
		m.seats.Add(ctx, int64(seats))
	}
}

func (m *metrics) recordLockWait(ctx context.Context, d time.Duration) {
	m.lockWait.Record(ctx, float64(d)/float64(time.Millisecond))
}
