package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrShowNotFound   = errors.New("show not found")
	ErrEmptySelection = errors.New("at least one seat must be selected")
	ErrTooManySeats   = fmt.Errorf("at most %d seats can be booked at once", MaxSeatsPerBooking)
	ErrDuplicateSeat  = errors.New("a seat was selected more than once")
	ErrInvalidSeat    = errors.New("seat number is outside of the show's seat range")
	ErrSeatConflict   = errors.New("seat(s) are already reserved")
	ErrBusy           = errors.New("show is busy, please try again")
	ErrStoreFailure   = errors.New("seat store failure")
)

// SeatConflictError names every requested seat that was already occupied when
// the commit was decided.
type SeatConflictError struct {
	Seats []int
}

func (e *SeatConflictError) Error() string {
	if len(e.Seats) == 0 {
		return ErrSeatConflict.Error()
	}
	return fmt.Sprintf("%s: %s", ErrSeatConflict, joinSeats(e.Seats))
}

func (e *SeatConflictError) Is(target error) bool {
	return target == ErrSeatConflict
}

type DuplicateSeatError struct {
	Seats []int
}

func (e *DuplicateSeatError) Error() string {
	return fmt.Sprintf("%s: %s", ErrDuplicateSeat, joinSeats(e.Seats))
}

func (e *DuplicateSeatError) Is(target error) bool {
	return target == ErrDuplicateSeat
}

type InvalidSeatError struct {
	Seats    []int
	Capacity int
}

func (e *InvalidSeatError) Error() string {
	return fmt.Sprintf("%s [1, %d]: %s", ErrInvalidSeat, e.Capacity, joinSeats(e.Seats))
}

func (e *InvalidSeatError) Is(target error) bool {
	return target == ErrInvalidSeat
}

// StoreError wraps an infrastructure error raised by the seat store. Callers
// may retry the whole commit since a failed attempt leaves nothing behind.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrStoreFailure, e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func (e *StoreError) Is(target error) bool {
	return target == ErrStoreFailure
}

// IsRejection reports whether err is a deterministic rejection of the
// requested selection rather than an infrastructure failure.
func IsRejection(err error) bool {
	return errors.Is(err, ErrEmptySelection) ||
		errors.Is(err, ErrTooManySeats) ||
		errors.Is(err, ErrDuplicateSeat) ||
		errors.Is(err, ErrInvalidSeat) ||
		errors.Is(err, ErrSeatConflict)
}

// RejectedSeats returns the seats carried by a seat-level rejection, if any.
func RejectedSeats(err error) []int {
	var conflictErr *SeatConflictError
	var duplicateErr *DuplicateSeatError
	var invalidErr *InvalidSeatError

	switch {
	case errors.As(err, &conflictErr):
		return conflictErr.Seats
	case errors.As(err, &duplicateErr):
		return duplicateErr.Seats
	case errors.As(err, &invalidErr):
		return invalidErr.Seats
	default:
		return nil
	}
}

func joinSeats(seats []int) string {
	parts := make([]string, len(seats))
	for i, s := range seats {
		parts[i] = fmt.Sprint(s)
	}

	return strings.Join(parts, ", ")
}
