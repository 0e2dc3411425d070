package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/himakar4/movie-booking-system/internal/domain"
)

const (
	DefaultPollInterval = time.Second
	DefaultBatchSize    = 50
	DefaultMaxAttempts  = 10
)

type RelayConfig struct {
	PollInterval time.Duration
	BatchSize    int
	// MaxAttempts is the number of failed deliveries after which an event is
	// left in the outbox with its last error and no longer relayed.
	MaxAttempts int
}

// Relay moves events from the outbox to the broker. Delivery is at least
// once: an event is marked only after the broker accepted it.
type Relay struct {
	outbox    domain.OutboxRepository
	publisher Publisher
	config    RelayConfig
	logger    *slog.Logger
}

func NewRelay(cfg RelayConfig, logger *slog.Logger, outbox domain.OutboxRepository, publisher Publisher) *Relay {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}

	return &Relay{
		outbox:    outbox,
		publisher: publisher,
		config:    cfg,
		logger:    logger,
	}
}

// Run polls until ctx is done.
func (r *Relay) Run(ctx context.Context) {
	r.logger.Info("starting event relay", "interval", r.config.PollInterval.String(), "batch_size", r.config.BatchSize, "max_attempts", r.config.MaxAttempts)

	ticker := time.NewTicker(r.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("event relay stopped")
			return
		case <-ticker.C:
			_, err := r.RelayOnce(ctx)
			if err != nil && ctx.Err() == nil {
				r.logger.Error("event relay poll failed", "error", err)
			}
		}
	}
}

// RelayOnce publishes one batch and returns how many events were delivered.
func (r *Relay) RelayOnce(ctx context.Context) (int, error) {
	published := 0

	err := r.outbox.FetchPending(ctx, r.config.BatchSize, r.config.MaxAttempts,
		func(ctx context.Context, batch domain.OutboxBatch, events []domain.OutboxEvent) error {
			for _, event := range events {
				err := r.publisher.Publish(ctx, event.Type, event.Payload)
				if err != nil {
					r.logger.Warn("event publish failed",
						"event_id", event.ID,
						"booking_id", event.BookingID,
						"attempts", event.Attempts+1,
						"error", err)

					if markErr := batch.MarkFailed(ctx, event.ID, err.Error()); markErr != nil {
						return markErr
					}
					if event.Attempts+1 >= r.config.MaxAttempts {
						r.logger.Error("event relay giving up on event",
							"event_id", event.ID,
							"booking_id", event.BookingID,
							"attempts", event.Attempts+1)
					}
					continue
				}

				if err := batch.MarkPublished(ctx, event.ID); err != nil {
					return err
				}
				published++
			}

			return nil
		})
	if err != nil {
		return 0, err
	}

	if published > 0 {
		r.logger.Info("events relayed", "count", published)
	}

	return published, nil
}
