// Package api holds the HTTP contract described by api.yaml: request and
// response types, the chi server wiring and the embedded document.
package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ErrorReason string

const (
	EmptySelection       ErrorReason = "EMPTY_SELECTION"
	TooManySeats         ErrorReason = "TOO_MANY_SEATS"
	DuplicateSeat        ErrorReason = "DUPLICATE_SEAT"
	InvalidSeat          ErrorReason = "INVALID_SEAT"
	SeatConflict         ErrorReason = "SEAT_CONFLICT"
	ShowBusy             ErrorReason = "SHOW_BUSY"
	IdempotencyKeyReused ErrorReason = "IDEMPOTENCY_KEY_REUSED"
	RequestInProgress    ErrorReason = "REQUEST_IN_PROGRESS"
)

type SeatStatus string

const (
	Available SeatStatus = "available"
	Occupied  SeatStatus = "occupied"
)

type HealthcheckResponse struct {
	Status     string     `json:"status"`
	SystemInfo SystemInfo `json:"systemInfo"`
}

type SystemInfo struct {
	Environment string `json:"environment"`
	Version     string `json:"version"`
}

type OccupiedSeatsResponse struct {
	BookedSeats []int `json:"bookedSeats"`
	Capacity    int   `json:"capacity"`
	ShowId      int   `json:"showId"`
}

type SeatMapResponse struct {
	AvailableCount int             `json:"availableCount"`
	Capacity       int             `json:"capacity"`
	PricePerSeat   decimal.Decimal `json:"pricePerSeat"`
	Rows           []SeatRow       `json:"rows"`
	ShowId         int             `json:"showId"`
}

type SeatRow struct {
	Row   string `json:"row"`
	Seats []Seat `json:"seats"`
}

type Seat struct {
	Number int        `json:"number"`
	Status SeatStatus `json:"status"`
}

type CreateBookingRequest struct {
	Seats  []int `json:"seats" validate:"required"`
	ShowId int   `json:"showId" validate:"gt=0"`
	UserId int   `json:"userId" validate:"gt=0"`
}

type CreateBookingParams struct {
	IdempotencyKey *string `json:"Idempotency-Key,omitempty"`
}

type BookingResponse struct {
	CreatedAt time.Time       `json:"createdAt"`
	Fee       decimal.Decimal `json:"fee"`
	Id        int             `json:"id"`
	Reference uuid.UUID       `json:"reference"`
	Seats     []int           `json:"seats"`
	Show      BookingShow     `json:"show"`
	ShowId    int             `json:"showId"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Total     decimal.Decimal `json:"total"`
	UserId    int             `json:"userId"`
}

type BookingShow struct {
	CinemaName string    `json:"cinemaName"`
	MovieTitle string    `json:"movieTitle"`
	StartTime  time.Time `json:"startTime"`
}

type UserBookingsResponse struct {
	Bookings []BookingResponse `json:"bookings"`
	Metadata Metadata          `json:"metadata"`
}

type GetUserBookingsParams struct {
	Page     *int `form:"page,omitempty" json:"page,omitempty" validate:"omitempty,min=1,max=10000"`
	PageSize *int `form:"pageSize,omitempty" json:"pageSize,omitempty" validate:"omitempty,min=1,max=100"`
}

type Metadata struct {
	CurrentPage  int `json:"currentPage"`
	FirstPage    int `json:"firstPage"`
	LastPage     int `json:"lastPage"`
	PageSize     int `json:"pageSize"`
	TotalRecords int `json:"totalRecords"`
}

type ErrorResponse struct {
	Message   string       `json:"message"`
	Reason    *ErrorReason `json:"reason,omitempty"`
	RequestId string       `json:"requestId"`
	Seats     *[]int       `json:"seats,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
}

type ValidationErrorResponse struct {
	Message          string            `json:"message"`
	RequestId        string            `json:"requestId"`
	Timestamp        time.Time         `json:"timestamp"`
	ValidationErrors []ValidationError `json:"validationErrors"`
}

type ValidationError struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}
