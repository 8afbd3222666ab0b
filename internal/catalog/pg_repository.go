package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func scanService(row pgx.Row) (*Service, error) {
	var s Service
	err := row.Scan(&s.ID, &s.Name, &s.Category, &s.Type, &s.Active, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrServiceNotFound
		}
		return nil, err
	}
	return &s, nil
}

func scanDuration(row pgx.Row) (*ServiceDuration, error) {
	var d ServiceDuration
	err := row.Scan(&d.ID, &d.ServiceID, &d.Minutes, &d.Price)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDurationNotFound
		}
		return nil, err
	}
	return &d, nil
}

func scanMasseur(row pgx.Row) (*Masseur, error) {
	var m Masseur
	err := row.Scan(&m.ID, &m.Name, &m.Active, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMasseurNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *PgRepository) GetService(ctx context.Context, id uuid.UUID) (*Service, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, category, type, active, created_at, updated_at
		FROM services
		WHERE id = $1
	`, id)
	return scanService(row)
}

func (r *PgRepository) GetServiceDuration(ctx context.Context, id uuid.UUID) (*ServiceDuration, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, service_id, duration_minutes, price
		FROM service_durations
		WHERE id = $1
	`, id)
	return scanDuration(row)
}

func (r *PgRepository) GetMasseur(ctx context.Context, id uuid.UUID) (*Masseur, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, active, created_at, updated_at
		FROM masseurs
		WHERE id = $1
	`, id)
	return scanMasseur(row)
}

func (r *PgRepository) ListActiveServices(ctx context.Context) ([]ServiceWithDurations, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, category, type, active, created_at, updated_at
		FROM services
		WHERE active
		ORDER BY category, name
	`)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	defer rows.Close()

	var result []ServiceWithDurations
	index := make(map[uuid.UUID]int)
	ids := make([]uuid.UUID, 0)
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, err
		}
		index[s.ID] = len(result)
		ids = append(ids, s.ID)
		result = append(result, ServiceWithDurations{Service: *s})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return result, nil
	}

	drows, err := r.pool.Query(ctx, `
		SELECT id, service_id, duration_minutes, price
		FROM service_durations
		WHERE service_id = ANY($1)
		ORDER BY duration_minutes
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("list service durations: %w", err)
	}
	defer drows.Close()

	for drows.Next() {
		d, err := scanDuration(drows)
		if err != nil {
			return nil, err
		}
		i := index[d.ServiceID]
		result[i].Durations = append(result[i].Durations, *d)
	}
	if err := drows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PgRepository) ListActiveMasseurs(ctx context.Context) ([]Masseur, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, active, created_at, updated_at
		FROM masseurs
		WHERE active
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("list masseurs: %w", err)
	}
	defer rows.Close()

	var result []Masseur
	for rows.Next() {
		m, err := scanMasseur(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
