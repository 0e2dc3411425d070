package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/himakar4/movie-booking-system/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SeatStoreConfig struct {
	// LockTimeout bounds the wait for the show row lock. Zero waits forever.
	LockTimeout time.Duration
	// Outbox records a booking.created event in the same transaction as the
	// booking.
	Outbox bool
}

type PostgresSeatStore struct {
	db     *pgxpool.Pool
	config SeatStoreConfig
}

func NewPostgresSeatStore(db *pgxpool.Pool, cfg SeatStoreConfig) *PostgresSeatStore {
	return &PostgresSeatStore{
		db:     db,
		config: cfg,
	}
}

// OccupiedSeats reads the show's seats in a single statement, which sees one
// committed snapshot.
func (p *PostgresSeatStore) OccupiedSeats(ctx context.Context, showID int) (domain.SeatSet, error) {
	query := `
		SELECT s.id, COALESCE(array_agg(bs.seat_number ORDER BY bs.seat_number)
			FILTER (WHERE bs.seat_number IS NOT NULL), '{}')
		FROM shows s
		LEFT JOIN booking_seats bs ON bs.show_id = s.id
		WHERE s.id = $1
		GROUP BY s.id
	`

	var id int
	var seats []int32

	err := p.db.QueryRow(ctx, query, showID).Scan(&id, &seats)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.SeatSet{}, domain.ErrShowNotFound
		}

		return domain.SeatSet{}, err
	}

	return seatSet(seats), nil
}

// InShowTx runs fn in a transaction that holds the show row lock, so units
// on the same show are serialized across every process sharing the database.
func (p *PostgresSeatStore) InShowTx(ctx context.Context, showID int, fn func(tx domain.ReservationTx) error) error {
	err := runInTx(ctx, p.db, func(tx pgx.Tx) error {
		if p.config.LockTimeout > 0 {
			_, err := tx.Exec(ctx, fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", p.config.LockTimeout.Milliseconds()))
			if err != nil {
				return err
			}
		}

		show := domain.Show{ID: showID}
		err := tx.QueryRow(ctx,
			`SELECT movie_title, cinema_name, start_time, capacity FROM shows WHERE id = $1 FOR UPDATE`,
			showID).Scan(&show.MovieTitle, &show.CinemaName, &show.StartTime, &show.Capacity)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrShowNotFound
			}

			return err
		}

		return fn(&postgresReservationTx{tx: tx, show: &show, outbox: p.config.Outbox})
	})

	return translatePgError(err)
}

type postgresReservationTx struct {
	tx     pgx.Tx
	show   *domain.Show
	outbox bool
	staged []int
}

func (t *postgresReservationTx) OccupiedSeats(ctx context.Context) (domain.SeatSet, error) {
	rows, err := t.tx.Query(ctx, `SELECT seat_number FROM booking_seats WHERE show_id = $1`, t.show.ID)
	if err != nil {
		return domain.SeatSet{}, err
	}

	seats, err := pgx.CollectRows(rows, pgx.RowTo[int32])
	if err != nil {
		return domain.SeatSet{}, err
	}

	return seatSet(seats).With(t.staged...), nil
}

func (t *postgresReservationTx) TryReserve(ctx context.Context, seats []int) error {
	if err := domain.CheckSeatNumbers(t.show.Capacity, seats); err != nil {
		return err
	}

	query := `
		SELECT seat_number
		FROM booking_seats
		WHERE show_id = $1 AND seat_number = ANY($2)
		ORDER BY seat_number
	`

	rows, err := t.tx.Query(ctx, query, t.show.ID, seats)
	if err != nil {
		return err
	}

	taken, err := pgx.CollectRows(rows, pgx.RowTo[int32])
	if err != nil {
		return err
	}

	overlap := seatSet(taken).With(t.staged...).Intersect(seats)
	if len(overlap) > 0 {
		return &domain.SeatConflictError{Seats: overlap}
	}

	t.staged = append(t.staged, seats...)
	return nil
}

func (t *postgresReservationTx) CreateBooking(ctx context.Context, booking *domain.Booking) error {
	query := `
		INSERT INTO bookings (show_id, user_id, subtotal, fee, total)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, reference, created_at
	`

	err := t.tx.QueryRow(
		ctx,
		query,
		booking.ShowID,
		booking.UserID,
		toNumeric(booking.Subtotal),
		toNumeric(booking.Fee),
		toNumeric(booking.Total),
	).Scan(&booking.ID, &booking.Reference, &booking.CreatedAt)
	if err != nil {
		return err
	}

	booking.Show = t.show.Summary()

	rows := make([][]any, 0, len(t.staged))
	for _, seat := range t.staged {
		rows = append(rows, []any{booking.ID, t.show.ID, seat})
	}

	_, err = t.tx.CopyFrom(
		ctx,
		pgx.Identifier{"booking_seats"},
		[]string{"booking_id", "show_id", "seat_number"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return err
	}

	if !t.outbox {
		return nil
	}

	payload, err := json.Marshal(domain.NewBookingCreatedEvent(booking))
	if err != nil {
		return err
	}

	_, err = t.tx.Exec(
		ctx,
		`INSERT INTO booking_events (booking_id, event_type, payload) VALUES ($1, $2, $3)`,
		booking.ID,
		domain.EventBookingCreated,
		payload,
	)

	return err
}

func seatSet(seats []int32) domain.SeatSet {
	out := make([]int, len(seats))
	for i, s := range seats {
		out[i] = int(s)
	}

	return domain.NewSeatSet(out...)
}
