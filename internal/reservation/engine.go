// Package reservation admits or rejects multi-seat bookings atomically and
// serves seat occupancy to readers.
//
// Commits on the same show are serialized by a FIFO lock held in-process and
// by the store's own atomic unit, so they are linearizable per show. Commits on
// different shows never wait on each other. Reads never take the commit lock.
package reservation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/himakar4/movie-booking-system/internal/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultLockTimeout   = 3 * time.Second
	DefaultCommitTimeout = 5 * time.Second
)

type Config struct {
	// LockTimeout bounds the wait for the per-show commit lock.
	LockTimeout time.Duration
	// CommitTimeout bounds the atomic section once the lock is held. The
	// section is detached from caller cancellation.
	CommitTimeout time.Duration
}

type Engine struct {
	shows    domain.ShowRepository
	seats    domain.SeatStore
	bookings domain.BookingRepository
	logger   *slog.Logger
	config   Config

	locks   *showLocks
	metrics *metrics
	tracer  trace.Tracer
}

func NewEngine(
	cfg Config,
	logger *slog.Logger,
	shows domain.ShowRepository,
	seats domain.SeatStore,
	bookings domain.BookingRepository) *Engine {

	if cfg.LockTimeout <= 0 {
		cfg.LockTimeout = DefaultLockTimeout
	}
	if cfg.CommitTimeout <= 0 {
		cfg.CommitTimeout = DefaultCommitTimeout
	}

	return &Engine{
		shows:    shows,
		seats:    seats,
		bookings: bookings,
		logger:   logger,
		config:   cfg,
		locks:    newShowLocks(),
		metrics:  newMetrics(),
		tracer:   otel.Tracer(instrumentationName),
	}
}

// CommitBooking books seats on showID for userID, or leaves every store
// untouched and returns why it could not. Rejections are never retried here.
func (e *Engine) CommitBooking(ctx context.Context, showID, userID int, seats []int) (*domain.Booking, error) {
	ctx, span := e.tracer.Start(ctx, "reservation.CommitBooking", trace.WithAttributes(
		attribute.Int("show_id", showID),
		attribute.Int("user_id", userID),
		attribute.IntSlice("seats", seats),
	))
	defer span.End()

	logger := e.logger.With("show_id", showID, "user_id", userID)

	booking, err := e.commit(ctx, showID, userID, seats)

	o := classify(err)
	e.metrics.recordCommit(ctx, o, len(seats))

	switch o {
	case outcomeCommitted:
		logger.Info("booking committed", "booking_id", booking.ID, "seats", booking.Seats, "total", booking.Total.String())
		span.SetAttributes(attribute.Int("booking_id", booking.ID))
	case outcomeRejected, outcomeConflict:
		logger.Warn("booking rejected", "seats", seats, "reason", err.Error())
		span.SetStatus(codes.Error, err.Error())
	case outcomeBusy, outcomeCanceled:
		logger.Warn("booking not attempted", "seats", seats, "reason", err.Error())
		span.SetStatus(codes.Error, err.Error())
	default:
		logger.Error("booking commit failed", "seats", seats, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	return booking, err
}

func (e *Engine) commit(ctx context.Context, showID, userID int, seats []int) (*domain.Booking, error) {
	show, err := e.getShow(ctx, showID)
	if err != nil {
		return nil, err
	}

	// Rejects that do not depend on occupancy never touch the lock.
	err = domain.CheckSelection(show, seats)
	if err != nil {
		return nil, err
	}

	release, err := e.acquire(ctx, showID)
	if err != nil {
		return nil, err
	}
	defer release()

	// Once the lock is held the section runs to completion or failure.
	commitCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.config.CommitTimeout)
	defer cancel()

	var booking *domain.Booking

	err = e.seats.InShowTx(commitCtx, showID, func(tx domain.ReservationTx) error {
		occupied, err := tx.OccupiedSeats(commitCtx)
		if err != nil {
			return err
		}

		quote, err := domain.ValidateSelection(show, seats, occupied)
		if err != nil {
			return err
		}

		err = tx.TryReserve(commitCtx, quote.Seats)
		if err != nil {
			return err
		}

		b := domain.NewBooking(show, userID, quote)

		err = tx.CreateBooking(commitCtx, b)
		if err != nil {
			return err
		}

		booking = b
		return nil
	})
	if err != nil {
		return nil, storeError("commit booking", err)
	}

	return booking, nil
}

func (e *Engine) acquire(ctx context.Context, showID int) (func(), error) {
	lockCtx, cancel := context.WithTimeout(ctx, e.config.LockTimeout)
	defer cancel()

	start := time.Now()
	release, err := e.locks.acquire(lockCtx, showID)
	e.metrics.recordLockWait(ctx, time.Since(start))

	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil, ctx.Err()
		}

		return nil, fmt.Errorf("%w: waited %s for show %d", domain.ErrBusy, time.Since(start).Round(time.Millisecond), showID)
	}

	return release, nil
}

// OccupiedSeats returns one consistent snapshot of the seats sold for showID.
func (e *Engine) OccupiedSeats(ctx context.Context, showID int) (*domain.Show, domain.SeatSet, error) {
	show, err := e.getShow(ctx, showID)
	if err != nil {
		return nil, domain.SeatSet{}, err
	}

	occupied, err := e.seats.OccupiedSeats(ctx, showID)
	if err != nil {
		return nil, domain.SeatSet{}, storeError("read occupied seats", err)
	}

	return show, occupied, nil
}

// GetBooking returns the booking with id, or domain.ErrRecordNotFound.
func (e *Engine) GetBooking(ctx context.Context, id int) (*domain.Booking, error) {
	booking, err := e.bookings.GetById(ctx, id)
	if err != nil {
		return nil, storeError("get booking", err)
	}

	return booking, nil
}

// ListBookingsForUser returns the user's bookings newest first.
func (e *Engine) ListBookingsForUser(
	ctx context.Context,
	userID int,
	pagination domain.Pagination) ([]domain.Booking, *domain.Metadata, error) {

	bookings, metadata, err := e.bookings.GetByUserId(ctx, userID, pagination)
	if err != nil {
		return nil, nil, storeError("list bookings", err)
	}

	return bookings, metadata, nil
}

func (e *Engine) getShow(ctx context.Context, showID int) (*domain.Show, error) {
	show, err := e.shows.GetById(ctx, showID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) || errors.Is(err, domain.ErrShowNotFound) {
			return nil, domain.ErrShowNotFound
		}

		return nil, storeError("get show", err)
	}

	return show, nil
}

// storeError passes domain outcomes through and wraps everything else as a
// store failure.
func storeError(op string, err error) error {
	switch {
	case domain.IsRejection(err),
		errors.Is(err, domain.ErrBusy),
		errors.Is(err, domain.ErrShowNotFound),
		errors.Is(err, domain.ErrRecordNotFound),
		errors.Is(err, domain.ErrStoreFailure):
		return err
	default:
		return &domain.StoreError{Op: op, Err: err}
	}
}

func classify(err error) outcome {
	switch {
	case err == nil:
		return outcomeCommitted
	case errors.Is(err, domain.ErrSeatConflict):
		return outcomeConflict
	case domain.IsRejection(err), errors.Is(err, domain.ErrShowNotFound):
		return outcomeRejected
	case errors.Is(err, domain.ErrBusy):
		return outcomeBusy
	case errors.Is(err, context.Canceled):
		return outcomeCanceled
	default:
		return outcomeFailed
	}
}
