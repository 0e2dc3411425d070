package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Show is a scheduled screening. It is owned by the catalog and read-only
// here; Capacity defines the valid seat numbers [1, Capacity].
type Show struct {
	ID           int
	MovieTitle   string
	CinemaName   string
	StartTime    time.Time
	Capacity     int
	PricePerSeat decimal.Decimal
}

// ValidSeat reports whether seat is inside the show's seat range.
func (s *Show) ValidSeat(seat int) bool {
	return seat >= 1 && seat <= s.Capacity
}

func (s *Show) Summary() ShowSummary {
	return ShowSummary{
		MovieTitle: s.MovieTitle,
		CinemaName: s.CinemaName,
		StartTime:  s.StartTime,
	}
}

type ShowRepository interface {
	GetById(ctx context.Context, id int) (*Show, error)
}
