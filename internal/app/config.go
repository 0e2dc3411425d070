package app

import (
	"flag"
	"os"
	"strconv"
	"time"

	"github.com/himakar4/movie-booking-system/internal/events"
	"github.com/himakar4/movie-booking-system/internal/reservation"
	"github.com/joho/godotenv"
)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type Config struct {
	Port             int
	Env              string
	Store            string
	DB               DBConfig
	Redis            RedisConfig
	Reservation      ReservationConfig
	AMQP             AMQPConfig
	OtelCollectorUrl string
}

type DBConfig struct {
	DSN          string
	MaxOpenConns int
	MaxIdleTime  time.Duration
	// LockTimeout is the Postgres lock_timeout for the show row lock.
	LockTimeout time.Duration
}

type RedisConfig struct {
	URL            string
	MaxOpenConns   int
	MaxIdleConns   int
	MaxIdleTime    time.Duration
	IdempotencyTTL time.Duration
}

type ReservationConfig struct {
	LockTimeout   time.Duration
	CommitTimeout time.Duration
}

type AMQPConfig struct {
	URL          string
	Queue        string
	PollInterval time.Duration
	BatchSize    int
	MaxAttempts  int
}

// parseConfig reads flags from args. Every flag defaults to an environment
// variable, which an optional .env file in the working directory may set.
func parseConfig(args []string) (Config, bool, error) {
	// A missing .env is fine.
	_ = godotenv.Load()

	var cfg Config

	fs := flag.NewFlagSet("api", flag.ContinueOnError)

	fs.IntVar(&cfg.Port, "port", envInt("PORT", 3000), "server port")
	fs.StringVar(&cfg.Env, "env", envString("ENV", "dev"), "Environment (dev|staging|prod)")
	fs.StringVar(&cfg.Store, "store", envString("STORE", StorePostgres), "Seat store (postgres|memory)")

	fs.StringVar(&cfg.DB.DSN, "db-dsn", envString("DB_DSN", ""), "PostgreSQL DSN")
	fs.IntVar(&cfg.DB.MaxOpenConns, "db-max-open-conns", envInt("DB_MAX_OPEN_CONNS", 25), "PostgreSQL max open connections")
	fs.DurationVar(&cfg.DB.MaxIdleTime, "db-max-idle-time", envDuration("DB_MAX_IDLE_TIME", 15*time.Minute), "PostgreSQL max idle time for connections")
	fs.DurationVar(&cfg.DB.LockTimeout, "db-lock-timeout", envDuration("DB_LOCK_TIMEOUT", 2*time.Second), "PostgreSQL lock timeout for a show")

	fs.StringVar(&cfg.Redis.URL, "redis-url", envString("REDIS_URL", ""), "Redis URL, empty disables idempotency keys")
	fs.IntVar(&cfg.Redis.MaxOpenConns, "redis-max-open-conns", envInt("REDIS_MAX_OPEN_CONNS", 25), "Redis max open connections")
	fs.IntVar(&cfg.Redis.MaxIdleConns, "redis-max-idle-conns", envInt("REDIS_MAX_IDLE_CONNS", 10), "Redis max idle connections")
	fs.DurationVar(&cfg.Redis.MaxIdleTime, "redis-max-idle-time", envDuration("REDIS_MAX_IDLE_TIME", 2*time.Minute), "Redis max idle time for connections")
	fs.DurationVar(&cfg.Redis.IdempotencyTTL, "idempotency-ttl", envDuration("IDEMPOTENCY_TTL", DefaultIdempotencyTTL), "How long booking responses are kept for replay")

	fs.DurationVar(&cfg.Reservation.LockTimeout, "lock-timeout", envDuration("LOCK_TIMEOUT", reservation.DefaultLockTimeout), "Max wait for a show's commit lock")
	fs.DurationVar(&cfg.Reservation.CommitTimeout, "commit-timeout", envDuration("COMMIT_TIMEOUT", reservation.DefaultCommitTimeout), "Max duration of a booking commit")

	fs.StringVar(&cfg.AMQP.URL, "amqp-url", envString("AMQP_URL", ""), "RabbitMQ URL, empty disables booking events")
	fs.StringVar(&cfg.AMQP.Queue, "amqp-queue", envString("AMQP_QUEUE", "booking_events"), "RabbitMQ queue for booking events")
	fs.DurationVar(&cfg.AMQP.PollInterval, "events-poll-interval", envDuration("EVENTS_POLL_INTERVAL", events.DefaultPollInterval), "Outbox poll interval")
	fs.IntVar(&cfg.AMQP.BatchSize, "events-batch-size", envInt("EVENTS_BATCH_SIZE", events.DefaultBatchSize), "Outbox events relayed per poll")
	fs.IntVar(&cfg.AMQP.MaxAttempts, "events-max-attempts", envInt("EVENTS_MAX_ATTEMPTS", events.DefaultMaxAttempts), "Failed deliveries after which an outbox event is no longer relayed")

	fs.StringVar(&cfg.OtelCollectorUrl, "otel-collector-url", envString("OTEL_COLLECTOR_URL", ""), "OpenTelemetry collector gRPC endpoint")

	displayVersion := fs.Bool("version", false, "Display version and exit")

	err := fs.Parse(args)
	if err != nil {
		return Config{}, false, err
	}

	return cfg, *displayVersion, nil
}

func envString(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}
