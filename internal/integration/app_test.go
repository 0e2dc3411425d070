package integration_test

import (
	"log/slog"
	"os"

	"github.com/himakar4/movie-booking-system/internal/app"
	"github.com/himakar4/movie-booking-system/internal/repository"
	"github.com/himakar4/movie-booking-system/internal/reservation"
	appvalidator "github.com/himakar4/movie-booking-system/internal/validator"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type TestApp struct {
	App         *app.Application
	DB          *pgxpool.Pool
	RedisClient *redis.Client
	Engine      *reservation.Engine
}

func newTestApp(cfg app.Config) (*TestApp, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	validator := appvalidator.NewValidator()

	db, err := app.NewDatabasePool(cfg)
	if err != nil {
		return nil, err
	}

	redisClient, err := app.NewRedisClient(cfg)
	if err != nil {
		db.Close()
		return nil, err
	}

	seatStore := repository.NewPostgresSeatStore(db, repository.SeatStoreConfig{
		LockTimeout: cfg.DB.LockTimeout,
		Outbox:      true,
	})

	engine := reservation.NewEngine(
		reservation.Config{
			LockTimeout:   cfg.Reservation.LockTimeout,
			CommitTimeout: cfg.Reservation.CommitTimeout,
		},
		logger,
		repository.NewPostgresShowRepository(db),
		seatStore,
		repository.NewPostgresBookingRepository(db),
	)

	application, err := app.NewApp(cfg, logger, db, redisClient, validator, engine, nil)
	if err != nil {
		redisClient.Close()
		db.Close()
		return nil, err
	}

	return &TestApp{
		App:         application,
		DB:          db,
		RedisClient: redisClient,
		Engine:      engine,
	}, nil
}

func (a *TestApp) Close() {
	a.RedisClient.Close()
	a.DB.Close()
}
