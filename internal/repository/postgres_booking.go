package repository

import (
	"context"
	"errors"

	"github.com/himakar4/movie-booking-system/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresBookingRepository struct {
	db *pgxpool.Pool
}

func NewPostgresBookingRepository(db *pgxpool.Pool) *PostgresBookingRepository {
	return &PostgresBookingRepository{
		db: db,
	}
}

const bookingColumns = `
	b.id,
	b.reference,
	b.show_id,
	b.user_id,
	b.subtotal,
	b.fee,
	b.total,
	b.created_at,
	s.movie_title,
	s.cinema_name,
	s.start_time,
	(SELECT array_agg(bs.seat_number ORDER BY bs.seat_number)
		FROM booking_seats bs WHERE bs.booking_id = b.id)
`

func (p *PostgresBookingRepository) GetById(ctx context.Context, id int) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings b JOIN shows s ON s.id = b.show_id WHERE b.id = $1`

	var booking domain.Booking

	err := scanBooking(p.db.QueryRow(ctx, query, id), &booking)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	return &booking, nil
}

func (p *PostgresBookingRepository) GetByUserId(
	ctx context.Context,
	userId int,
	pagination domain.Pagination) ([]domain.Booking, *domain.Metadata, error) {

	query := `
		SELECT COUNT(*) OVER(), ` + bookingColumns + `
		FROM bookings b
		JOIN shows s ON s.id = b.show_id
		WHERE b.user_id = $1
		ORDER BY b.created_at DESC, b.id DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := p.db.Query(ctx, query, userId, pagination.Limit(), pagination.Offset())
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	bookings := make([]domain.Booking, 0)
	totalRecords := 0

	for rows.Next() {
		var booking domain.Booking

		err := scanBooking(rows, &booking, &totalRecords)
		if err != nil {
			return nil, nil, err
		}

		bookings = append(bookings, booking)
	}

	if err = rows.Err(); err != nil {
		return nil, nil, err
	}

	metadata := pagination.Metadata(totalRecords)

	return bookings, metadata, nil
}

// scanBooking reads bookingColumns, preceded by any leading destinations.
func scanBooking(row pgx.Row, booking *domain.Booking, leading ...any) error {
	var subtotal, fee, total pgtype.Numeric
	var seats []int32

	dest := append(leading,
		&booking.ID,
		&booking.Reference,
		&booking.ShowID,
		&booking.UserID,
		&subtotal,
		&fee,
		&total,
		&booking.CreatedAt,
		&booking.Show.MovieTitle,
		&booking.Show.CinemaName,
		&booking.Show.StartTime,
		&seats,
	)

	err := row.Scan(dest...)
	if err != nil {
		return err
	}

	booking.Subtotal = toDecimal(subtotal)
	booking.Fee = toDecimal(fee)
	booking.Total = toDecimal(total)
	booking.Seats = seatSet(seats).Sorted()

	return nil
}
