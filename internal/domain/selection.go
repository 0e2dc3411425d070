package domain

import (
	"slices"

	"github.com/shopspring/decimal"
)

const MaxSeatsPerBooking = 6

// FeeRate is the convenience fee charged on top of the seat subtotal.
var FeeRate = decimal.New(10, -2)

// Quote is the outcome of a successful validation.
type Quote struct {
	Seats    []int
	Subtotal decimal.Decimal
	Fee      decimal.Decimal
	Total    decimal.Decimal
}

// CheckSelection runs every check that does not depend on occupancy.
func CheckSelection(show *Show, seats []int) error {
	if len(seats) == 0 {
		return ErrEmptySelection
	}

	if len(seats) > MaxSeatsPerBooking {
		return ErrTooManySeats
	}

	return CheckSeatNumbers(show.Capacity, seats)
}

// CheckSeatNumbers rejects repeated seats and seats outside [1, capacity].
// Stores call it before staging so no caller can occupy a seat that does not
// exist.
func CheckSeatNumbers(capacity int, seats []int) error {
	seen := make(map[int]bool, len(seats))
	var duplicates []int
	for _, seat := range seats {
		if seen[seat] && !slices.Contains(duplicates, seat) {
			duplicates = append(duplicates, seat)
		}
		seen[seat] = true
	}

	if len(duplicates) > 0 {
		slices.Sort(duplicates)
		return &DuplicateSeatError{Seats: duplicates}
	}

	var invalid []int
	for _, seat := range seats {
		if seat < 1 || seat > capacity {
			invalid = append(invalid, seat)
		}
	}

	if len(invalid) > 0 {
		slices.Sort(invalid)
		return &InvalidSeatError{Seats: invalid, Capacity: capacity}
	}

	return nil
}

// ValidateSelection decides whether seats can be booked on show given the
// current occupancy and prices the booking. It performs no I/O.
func ValidateSelection(show *Show, seats []int, occupied SeatSet) (*Quote, error) {
	err := CheckSelection(show, seats)
	if err != nil {
		return nil, err
	}

	if overlap := occupied.Intersect(seats); len(overlap) > 0 {
		return nil, &SeatConflictError{Seats: overlap}
	}

	sorted := slices.Clone(seats)
	slices.Sort(sorted)

	subtotal := show.PricePerSeat.Mul(decimal.NewFromInt(int64(len(sorted))))
	fee := CalculateFee(subtotal)

	return &Quote{
		Seats:    sorted,
		Subtotal: subtotal,
		Fee:      fee,
		Total:    subtotal.Add(fee),
	}, nil
}

// CalculateFee returns FeeRate of subtotal rounded half up to a whole
// currency unit.
func CalculateFee(subtotal decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(FeeRate).Round(0)
}
