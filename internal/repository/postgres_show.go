package repository

import (
	"context"
	"errors"

	"github.com/himakar4/movie-booking-system/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresShowRepository struct {
	db *pgxpool.Pool
}

func NewPostgresShowRepository(db *pgxpool.Pool) *PostgresShowRepository {
	return &PostgresShowRepository{
		db: db,
	}
}

func (p *PostgresShowRepository) GetById(ctx context.Context, id int) (*domain.Show, error) {
	query := `
		SELECT id, movie_title, cinema_name, start_time, capacity, price_per_seat
		FROM shows
		WHERE id = $1
	`

	var show domain.Show
	var price pgtype.Numeric

	err := p.db.QueryRow(ctx, query, id).Scan(
		&show.ID,
		&show.MovieTitle,
		&show.CinemaName,
		&show.StartTime,
		&show.Capacity,
		&price,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrShowNotFound
		}

		return nil, err
	}

	show.PricePerSeat = toDecimal(price)

	return &show, nil
}
