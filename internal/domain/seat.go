package domain

import (
	"context"
	"slices"

	"github.com/shopspring/decimal"
)

// SeatSet is an immutable set of seat numbers. The zero value is empty.
type SeatSet struct {
	seats map[int]struct{}
}

func NewSeatSet(seats ...int) SeatSet {
	m := make(map[int]struct{}, len(seats))
	for _, s := range seats {
		m[s] = struct{}{}
	}

	return SeatSet{seats: m}
}

func (s SeatSet) Has(seat int) bool {
	_, ok := s.seats[seat]
	return ok
}

func (s SeatSet) Len() int {
	return len(s.seats)
}

// Sorted returns the members in ascending order.
func (s SeatSet) Sorted() []int {
	out := make([]int, 0, len(s.seats))
	for seat := range s.seats {
		out = append(out, seat)
	}
	slices.Sort(out)

	return out
}

// With returns a new set holding the members of s plus seats. s is unchanged.
func (s SeatSet) With(seats ...int) SeatSet {
	m := make(map[int]struct{}, len(s.seats)+len(seats))
	for seat := range s.seats {
		m[seat] = struct{}{}
	}
	for _, seat := range seats {
		m[seat] = struct{}{}
	}

	return SeatSet{seats: m}
}

// Intersect returns the sorted members of seats that are also in s.
func (s SeatSet) Intersect(seats []int) []int {
	var out []int
	for _, seat := range seats {
		if s.Has(seat) && !slices.Contains(out, seat) {
			out = append(out, seat)
		}
	}
	slices.Sort(out)

	return out
}

type SeatStatus string

const (
	SeatAvailable SeatStatus = "available"
	SeatOccupied  SeatStatus = "occupied"
)

type SeatMap struct {
	ShowID         int
	Capacity       int
	PricePerSeat   decimal.Decimal
	AvailableCount int
	Rows           []SeatRow
}

type SeatRow struct {
	Label string
	Seats []SeatMapSeat
}

type SeatMapSeat struct {
	Number int
	Status SeatStatus
}

// SeatStore is the durable record of occupied seats per show. InShowTx is the
// only way to change occupancy: fn runs inside the show's atomic unit and
// everything it staged is committed together when it returns nil, or
// discarded otherwise.
type SeatStore interface {
	OccupiedSeats(ctx context.Context, showID int) (SeatSet, error)
	InShowTx(ctx context.Context, showID int, fn func(tx ReservationTx) error) error
}

type ReservationTx interface {
	// OccupiedSeats returns the occupancy visible inside the unit, including
	// commits that finished while the unit was being acquired.
	OccupiedSeats(ctx context.Context) (SeatSet, error)
	// TryReserve stages seats as occupied, or returns *SeatConflictError
	// naming every requested seat that is already taken. Repeated seats and
	// seats outside the show fail with *DuplicateSeatError and
	// *InvalidSeatError before anything is staged.
	TryReserve(ctx context.Context, seats []int) error
	// CreateBooking persists booking for the staged seats and fills its
	// ID, Reference and CreatedAt.
	CreateBooking(ctx context.Context, booking *Booking) error
}
