package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/hackgods/spa-booking/internal/api"
	"github.com/hackgods/spa-booking/internal/appointment"
	"github.com/hackgods/spa-booking/internal/auth"
	"github.com/hackgods/spa-booking/internal/catalog"
	"github.com/hackgods/spa-booking/internal/config"
	"github.com/hackgods/spa-booking/internal/db"
	"github.com/hackgods/spa-booking/internal/logging"
	"github.com/hackgods/spa-booking/internal/notify"
	redisclient "github.com/hackgods/spa-booking/internal/redis"
	"github.com/hackgods/spa-booking/internal/tracing"
)

const version = "0.1.0"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "api-server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config load: %w", err)
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("api-server starting up",
		zap.String("env", cfg.Env),
		zap.String("http_port", cfg.HTTPPort),
		zap.String("timezone", cfg.Timezone),
	)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Setup(rootCtx, tracing.Config{
		Enabled:      cfg.OTelEnabled,
		ServiceName:  "spa-booking-api",
		Environment:  cfg.Env,
		OTLPEndpoint: cfg.OTelEndpoint,
		SampleRatio:  cfg.OTelSampleRatio,
	})
	if err != nil {
		return fmt.Errorf("tracing setup: %w", err)
	}

	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN, db.PoolOptions{TimeZone: cfg.Timezone})
	cancelPg()
	if err != nil {
		return fmt.Errorf("postgres connection: %w", err)
	}
	defer pgPool.Close()
	logger.Info("connected to postgres")

	if cfg.RunMigrations {
		if err := migrate(rootCtx, pgPool, logger); err != nil {
			return err
		}
	}

	critical := map[string]api.Check{"postgres": pgPool.Ping}
	optional := map[string]api.Check{}

	var locker redisclient.Locker = redisclient.NoopLocker{}
	if cfg.RedisAddr != "" {
		rdb, err := redisclient.NewRedisClient(rootCtx, cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
		if err != nil {
			return fmt.Errorf("redis connection: %w", err)
		}
		defer func() {
			if err := rdb.Close(); err != nil {
				logger.Warn("error closing redis", zap.Error(err))
			}
		}()
		locker = redisclient.NewRedisSlotLocker(rdb, cfg.LockTTL)
		optional["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		logger.Info("connected to redis", zap.Duration("lock_ttl", cfg.LockTTL))
	} else {
		logger.Warn("REDIS_ADDR not set, slot uniqueness relies on the database alone")
	}

	var notifier notify.Notifier = notify.NewLogNotifier(logger)
	if cfg.KafkaBrokers != "" {
		kn := notify.NewKafkaNotifier(notify.NewKafkaWriter(cfg.KafkaBrokers), cfg.KafkaTopic)
		defer func() {
			if err := kn.Close(); err != nil {
				logger.Warn("error closing kafka writer", zap.Error(err))
			}
		}()
		notifier = kn
		optional["kafka"] = notify.ReadyCheck(cfg.KafkaBrokers)
		logger.Info("publishing notifications to kafka", zap.String("topic", cfg.KafkaTopic))
	}

	grid, err := catalog.NewSlotGrid(cfg.SlotMinutes, cfg.OpeningTime, cfg.ClosingTime)
	if err != nil {
		return fmt.Errorf("slot grid: %w", err)
	}

	lookup := catalog.NewLookup(catalog.NewPgRepository(pgPool))
	svc := appointment.NewService(
		appointment.NewPgRepository(pgPool),
		lookup,
		locker,
		notifier,
		logger,
		appointment.Options{
			Grid:          grid,
			Location:      cfg.Location(),
			NotifyTimeout: cfg.NotifyTimeout,
		},
	)

	var limiter *api.IPRateLimiter
	if cfg.RateLimitRPS > 0 {
		limiter = api.NewIPRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	}

	router := api.NewRouter(api.RouterConfig{
		Service:     svc,
		Catalog:     lookup,
		Verifier:    auth.NewVerifier(cfg.JWTSecret),
		Health:      api.NewHealthHandler(critical, optional, cfg.Env, version),
		RateLimiter: limiter,
		Logger:      logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-rootCtx.Done():
	}

	logger.Info("shutting down api-server", zap.Duration("timeout", cfg.ShutdownTimeout))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", zap.Error(err))
	}
	if err := svc.Wait(shutdownCtx); err != nil {
		logger.Warn("pending notifications abandoned", zap.Error(err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Warn("tracer shutdown", zap.Error(err))
	}

	logger.Info("api-server stopped")
	return nil
}

func migrate(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) error {
	m, err := db.NewMigrator(pool, logger)
	if err != nil {
		return fmt.Errorf("init migrator: %w", err)
	}
	defer func() {
		if err := m.Close(); err != nil {
			logger.Warn("close migrator", zap.Error(err))
		}
	}()

	if err := m.Up(ctx); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}
