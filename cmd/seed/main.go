package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/hackgods/spa-booking/internal/catalog"
	"github.com/hackgods/spa-booking/internal/config"
	"github.com/hackgods/spa-booking/internal/db"
	"github.com/hackgods/spa-booking/internal/logging"
)

type serviceSeed struct {
	Name     string
	Category catalog.Category
	Type     catalog.ServiceType
	// minutes -> price in minor units
	Prices map[int]int64
}

var services = []serviceSeed{
	{"Swedish Massage", catalog.CategoryMassage, catalog.ServiceSingle, map[int]int64{30: 1500, 60: 2500, 90: 3400}},
	{"Deep Tissue Massage", catalog.CategoryMassage, catalog.ServiceSingle, map[int]int64{60: 3000, 90: 4000}},
	{"Hot Stone Massage", catalog.CategoryMassage, catalog.ServiceSingle, map[int]int64{60: 3200, 90: 4300}},
	{"Thai Massage", catalog.CategoryMassage, catalog.ServiceSingle, map[int]int64{60: 2800, 90: 3800}},
	{"Facial Care", catalog.CategoryCare, catalog.ServiceSingle, map[int]int64{30: 1800, 60: 3000}},
	{"Foot Care", catalog.CategoryCare, catalog.ServiceSingle, map[int]int64{30: 1200, 60: 2000}},
	{"Body Scrub", catalog.CategoryTreatment, catalog.ServiceSingle, map[int]int64{30: 1600, 60: 2600}},
	{"Hammam Ritual", catalog.CategoryTreatment, catalog.ServiceCombo, map[int]int64{60: 3500, 90: 4800}},
	{"Massage and Facial", catalog.CategoryMassage, catalog.ServiceCombo, map[int]int64{90: 5200}},
}

func main() {
	logger, err := logging.New(os.Getenv("APP_ENV"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("config load", zap.Error(err))
	}

	masseurCount := 12
	if v := os.Getenv("SEED_MASSEURS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			masseurCount = n
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, cfg.PostgresDSN, db.PoolOptions{TimeZone: cfg.Timezone})
	if err != nil {
		logger.Fatal("connect postgres", zap.Error(err))
	}
	defer pool.Close()

	if cfg.RunMigrations {
		m, err := db.NewMigrator(pool, logger)
		if err != nil {
			logger.Fatal("init migrator", zap.Error(err))
		}
		err = m.Up(ctx)
		_ = m.Close()
		if err != nil {
			logger.Fatal("apply migrations", zap.Error(err))
		}
	}

	gofakeit.Seed(time.Now().UnixNano())

	if err := seedMasseurs(ctx, pool, logger, masseurCount); err != nil {
		logger.Fatal("seed masseurs", zap.Error(err))
	}
	if err := seedServices(ctx, pool, logger); err != nil {
		logger.Fatal("seed services", zap.Error(err))
	}

	logger.Info("seed complete")
}

func seedMasseurs(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger, count int) error {
	logger.Info("seeding masseurs", zap.Int("count", count))

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for i := 0; i < count; i++ {
		// every tenth masseur is retired so inactive filtering has data to act on
		active := i%10 != 9
		_, err := tx.Exec(ctx, `
			INSERT INTO masseurs (id, name, active, created_at, updated_at)
			VALUES ($1, $2, $3, now(), now())
		`, uuid.New(), gofakeit.Name(), active)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// seedServices inserts the fixed spa menu. Names already present are skipped
// so the command can be re-run.
func seedServices(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) error {
	return pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		inserted := 0
		for _, s := range services {
			var exists bool
			if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM services WHERE name = $1)`, s.Name).Scan(&exists); err != nil {
				return err
			}
			if exists {
				continue
			}

			serviceID := uuid.New()
			_, err := tx.Exec(ctx, `
				INSERT INTO services (id, name, category, type, active, created_at, updated_at)
				VALUES ($1, $2, $3, $4, TRUE, now(), now())
			`, serviceID, s.Name, string(s.Category), string(s.Type))
			if err != nil {
				return fmt.Errorf("insert service %q: %w", s.Name, err)
			}

			for minutes, price := range s.Prices {
				_, err := tx.Exec(ctx, `
					INSERT INTO service_durations (id, service_id, duration_minutes, price)
					VALUES ($1, $2, $3, $4)
				`, uuid.New(), serviceID, minutes, price)
				if err != nil {
					return fmt.Errorf("insert duration %d for %q: %w", minutes, s.Name, err)
				}
			}
			inserted++
		}

		logger.Info("services seeded", zap.Int("inserted", inserted), zap.Int("skipped", len(services)-inserted))
		return nil
	})
}
