package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/exaring/otelpgx"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/legacy"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/himakar4/movie-booking-system/api"
	"github.com/himakar4/movie-booking-system/internal/events"
	"github.com/himakar4/movie-booking-system/internal/repository"
	"github.com/himakar4/movie-booking-system/internal/reservation"
	appvalidator "github.com/himakar4/movie-booking-system/internal/validator"
	"github.com/himakar4/movie-booking-system/internal/vcs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"github.com/riandyrn/otelchi"
	"go.opentelemetry.io/contrib/bridges/otelslog"
)

const serviceName = "movie-booking-api"

var (
	version = vcs.Version()
)

type Application struct {
	config    Config
	logger    *slog.Logger
	db        *pgxpool.Pool
	redis     redis.UniversalClient
	validator *validator.Validate
	engine    *reservation.Engine
	relay     *events.Relay
	router    routers.Router
}

// NewApp wires an Application. redisClient and relay may be nil, which
// disables idempotency keys and booking events.
func NewApp(
	cfg Config,
	logger *slog.Logger,
	db *pgxpool.Pool,
	redisClient redis.UniversalClient,
	validator *validator.Validate,
	engine *reservation.Engine,
	relay *events.Relay) (*Application, error) {

	doc, err := api.GetSwagger()
	if err != nil {
		return nil, err
	}

	// Match requests on any host.
	doc.Servers = nil

	// Validation errors are sent to clients without the schema dump.
	openapi3.SchemaErrorDetailsDisabled = true

	router, err := legacy.NewRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("error building openapi router: %w", err)
	}

	return &Application{
		config:    cfg,
		logger:    logger,
		db:        db,
		redis:     redisClient,
		validator: validator,
		engine:    engine,
		relay:     relay,
		router:    router,
	}, nil
}

func Run() error {
	cfg, displayVersion, err := parseConfig(os.Args[1:])
	if err != nil {
		return err
	}

	if displayVersion {
		fmt.Printf("Version:\t%s\n", version)
		os.Exit(0)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	shutdownTelemetry, err := InitTelemetry(cfg, logger)
	if err != nil {
		return err
	}
	defer shutdownTelemetry(context.Background())

	if cfg.OtelCollectorUrl != "" {
		logger = slog.New(newFanoutHandler(logger.Handler(), otelslog.NewHandler(serviceName)))
	}

	reservationCfg := reservation.Config{
		LockTimeout:   cfg.Reservation.LockTimeout,
		CommitTimeout: cfg.Reservation.CommitTimeout,
	}

	var (
		db     *pgxpool.Pool
		engine *reservation.Engine
		relay  *events.Relay
	)

	switch cfg.Store {
	case StoreMemory:
		store := repository.NewMemoryStore(repository.DemoShows(time.Now())...)
		engine = reservation.NewEngine(reservationCfg, logger, store, store, store.Bookings())

		logger.Info("using in-memory seat store, bookings are lost on restart")

	case StorePostgres:
		db, err = NewDatabasePool(cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		seatStore := repository.NewPostgresSeatStore(db, repository.SeatStoreConfig{
			LockTimeout: cfg.DB.LockTimeout,
			Outbox:      cfg.AMQP.URL != "",
		})

		engine = reservation.NewEngine(
			reservationCfg,
			logger,
			repository.NewPostgresShowRepository(db),
			seatStore,
			repository.NewPostgresBookingRepository(db),
		)

		if cfg.AMQP.URL != "" {
			publisher := events.NewRabbitPublisher(cfg.AMQP.URL, cfg.AMQP.Queue)
			defer publisher.Close()

			relay = events.NewRelay(events.RelayConfig{
				PollInterval: cfg.AMQP.PollInterval,
				BatchSize:    cfg.AMQP.BatchSize,
				MaxAttempts:  cfg.AMQP.MaxAttempts,
			}, logger, repository.NewPostgresOutboxRepository(db), publisher)
		}

	default:
		return fmt.Errorf("unknown store %q", cfg.Store)
	}

	var redisClient redis.UniversalClient
	if cfg.Redis.URL != "" {
		client, err := NewRedisClient(cfg)
		if err != nil {
			return err
		}
		defer client.Close()

		redisClient = client
	} else {
		logger.Info("redis URL not set, idempotency keys are disabled")
	}

	app, err := NewApp(cfg, logger, db, redisClient, appvalidator.NewValidator(), engine, relay)
	if err != nil {
		return err
	}

	return app.run()
}

func NewRedisClient(cfg Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:            cfg.Redis.URL,
		MaxIdleConns:    cfg.Redis.MaxIdleConns,
		MaxActiveConns:  cfg.Redis.MaxOpenConns,
		ConnMaxIdleTime: cfg.Redis.MaxIdleTime,
	})

	err := errors.Join(redisotel.InstrumentTracing(rdb), redisotel.InstrumentMetrics(rdb))
	if err != nil {
		rdb.Close()
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err = rdb.Ping(ctx).Err()
	if err != nil {
		rdb.Close()
		return nil, err
	}

	return rdb, nil
}

func NewDatabasePool(cfg Config) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(cfg.DB.DSN)
	if err != nil {
		return nil, err
	}

	config.MaxConnIdleTime = cfg.DB.MaxIdleTime
	config.MaxConns = int32(cfg.DB.MaxOpenConns)
	config.ConnConfig.Tracer = otelpgx.NewTracer()

	db, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err = db.Ping(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}

	err = otelpgx.RecordStats(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("unable to record database stats: %w", err)
	}

	return db, nil
}

func (app *Application) run() error {
	srv := &http.Server{
		Addr:         fmt.Sprintf("0.0.0.0:%d", app.config.Port),
		Handler:      app.Routes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorLog:     slog.NewLogLogger(app.logger.Handler(), slog.LevelDebug),
	}

	relayCtx, stopRelay := context.WithCancel(context.Background())
	defer stopRelay()

	var wg sync.WaitGroup

	if app.relay != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.relay.Run(relayCtx)
		}()
	}

	shutdownError := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		app.logger.Info("shutting down server", "signal", s.String())

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		err := srv.Shutdown(ctx)

		stopRelay()
		wg.Wait()

		shutdownError <- err
	}()

	app.logger.Info("starting server", "addr", srv.Addr, "env", app.config.Env, "store", app.config.Store)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdownError
	if err != nil {
		return err
	}

	app.logger.Info("stopped server", "addr", srv.Addr)

	return nil
}

func (app *Application) Routes() http.Handler {
	r := chi.NewRouter()

	r.NotFound(app.notFoundResponse)
	r.MethodNotAllowed(app.methodNotAllowedResponse)

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(app.recoverPanic)
	r.Use(otelchi.Middleware(serviceName, otelchi.WithChiRoutes(r)))
	r.Use(app.validateRequest)

	return api.HandlerWithOptions(app, api.ChiServerOptions{
		BaseRouter:       r,
		Middlewares:      []api.MiddlewareFunc{app.idempotent},
		ErrorHandlerFunc: app.invalidParamResponse,
	})
}
