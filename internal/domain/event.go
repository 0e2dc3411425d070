package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const EventBookingCreated = "booking.created"

// BookingCreatedEvent is published once for every committed booking.
type BookingCreatedEvent struct {
	BookingID int             `json:"bookingId"`
	Reference uuid.UUID       `json:"reference"`
	ShowID    int             `json:"showId"`
	UserID    int             `json:"userId"`
	Seats     []int           `json:"seats"`
	Total     decimal.Decimal `json:"total"`
	CreatedAt time.Time       `json:"createdAt"`
}

func NewBookingCreatedEvent(b *Booking) BookingCreatedEvent {
	return BookingCreatedEvent{
		BookingID: b.ID,
		Reference: b.Reference,
		ShowID:    b.ShowID,
		UserID:    b.UserID,
		Seats:     b.Seats,
		Total:     b.Total,
		CreatedAt: b.CreatedAt,
	}
}

// OutboxEvent is a stored event waiting to be relayed to the broker.
type OutboxEvent struct {
	ID        int64
	BookingID int
	Type      string
	Payload   []byte
	Attempts  int
	CreatedAt time.Time
}

type OutboxRepository interface {
	// FetchPending locks up to limit unpublished events with fewer than
	// maxAttempts delivery attempts, oldest first, and passes them to fn.
	// maxAttempts <= 0 disables the cap. Locked rows are skipped by concurrent
	// relays. Marks recorded through batch are committed when fn returns nil.
	FetchPending(ctx context.Context, limit, maxAttempts int, fn func(ctx context.Context, batch OutboxBatch, events []OutboxEvent) error) error
}

type OutboxBatch interface {
	MarkPublished(ctx context.Context, id int64) error
	MarkFailed(ctx context.Context, id int64, reason string) error
}
