package repository

import (
	"context"
	"unicode/utf8"

	"github.com/himakar4/movie-booking-system/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const maxOutboxErrorLength = 500

type PostgresOutboxRepository struct {
	db *pgxpool.Pool
}

func NewPostgresOutboxRepository(db *pgxpool.Pool) *PostgresOutboxRepository {
	return &PostgresOutboxRepository{
		db: db,
	}
}

func (p *PostgresOutboxRepository) FetchPending(
	ctx context.Context,
	limit, maxAttempts int,
	fn func(ctx context.Context, batch domain.OutboxBatch, events []domain.OutboxEvent) error) error {

	return runInTx(ctx, p.db, func(tx pgx.Tx) error {
		query := `
			SELECT id, booking_id, event_type, payload, attempts, created_at
			FROM booking_events
			WHERE published_at IS NULL AND ($2 <= 0 OR attempts < $2)
			ORDER BY id
			LIMIT $1
			FOR UPDATE SKIP LOCKED
		`

		rows, err := tx.Query(ctx, query, limit, maxAttempts)
		if err != nil {
			return err
		}

		events, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.OutboxEvent, error) {
			var e domain.OutboxEvent
			err := row.Scan(&e.ID, &e.BookingID, &e.Type, &e.Payload, &e.Attempts, &e.CreatedAt)
			return e, err
		})
		if err != nil {
			return err
		}

		if len(events) == 0 {
			return nil
		}

		return fn(ctx, postgresOutboxBatch{tx: tx}, events)
	})
}

type postgresOutboxBatch struct {
	tx pgx.Tx
}

func (b postgresOutboxBatch) MarkPublished(ctx context.Context, id int64) error {
	_, err := b.tx.Exec(ctx,
		`UPDATE booking_events SET published_at = NOW(), attempts = attempts + 1, last_error = NULL WHERE id = $1`,
		id)

	return err
}

func (b postgresOutboxBatch) MarkFailed(ctx context.Context, id int64, reason string) error {
	_, err := b.tx.Exec(ctx,
		`UPDATE booking_events SET attempts = attempts + 1, last_error = $2 WHERE id = $1`,
		id, truncateUTF8(reason, maxOutboxErrorLength))

	return err
}

// truncateUTF8 cuts s to at most n bytes without splitting a rune.
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
