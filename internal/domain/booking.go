package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Booking is the immutable record of one successful commit.
type Booking struct {
	ID        int
	Reference uuid.UUID
	ShowID    int
	UserID    int
	Seats     []int
	Subtotal  decimal.Decimal
	Fee       decimal.Decimal
	Total     decimal.Decimal
	CreatedAt time.Time
	// Show describes the screening as it was listed when the booking was read.
	Show ShowSummary
}

// ShowSummary is the part of a show that is returned with its bookings.
type ShowSummary struct {
	MovieTitle string
	CinemaName string
	StartTime  time.Time
}

func NewBooking(show *Show, userID int, quote *Quote) *Booking {
	return &Booking{
		ShowID:   show.ID,
		Show:     show.Summary(),
		UserID:   userID,
		Seats:    quote.Seats,
		Subtotal: quote.Subtotal,
		Fee:      quote.Fee,
		Total:    quote.Total,
	}
}

type BookingRepository interface {
	GetById(ctx context.Context, id int) (*Booking, error)
	GetByUserId(ctx context.Context, userId int, pagination Pagination) ([]Booking, *Metadata, error)
}
