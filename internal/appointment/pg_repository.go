package appointment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hackgods/spa-booking/internal/catalog"
)

const (
	uniqueViolation  = "23505"
	activeSlotIndex  = "appointments_active_slot_uniq"
	defaultListLimit = 50
)

const appointmentCols = `id, user_id, masseur_id, service_id, service_duration_id,
	to_char(appointment_date, 'YYYY-MM-DD'), to_char(appointment_time, 'HH24:MI'),
	status, price, duration_minutes, created_at, updated_at`

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

// Helpers

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	var clock string

	err := row.Scan(
		&a.ID,
		&a.UserID,
		&a.MasseurID,
		&a.ServiceID,
		&a.ServiceDurationID,
		&a.Date,
		&clock,
		&a.Status,
		&a.Price,
		&a.Duration,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	a.Time, err = catalog.ParseClock(clock)
	if err != nil {
		return nil, fmt.Errorf("scan appointment %s: %w", a.ID, err)
	}
	return &a, nil
}

func isActiveSlotViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == activeSlotIndex
}

// Interface methods

func (r *PgRepository) GetAppointmentByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+appointmentCols+`
		FROM appointments
		WHERE id = $1
	`, id)
	return scanAppointment(row)
}

func (r *PgRepository) FindAppointments(ctx context.Context, f Filter) ([]Appointment, error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}

	if f.UserID != "" {
		add("user_id = $%d", f.UserID)
	}
	if f.MasseurID != uuid.Nil {
		add("masseur_id = $%d", f.MasseurID)
	}
	if f.Date != "" {
		add("appointment_date = $%d::date", f.Date)
	}
	if f.Time != nil {
		add("appointment_time = $%d::time", f.Time.String())
	}
	if len(f.Statuses) > 0 {
		statuses := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			statuses[i] = string(s)
		}
		add("status = ANY($%d)", statuses)
	}
	if f.ExcludeID != uuid.Nil {
		add("id <> $%d", f.ExcludeID)
	}

	query := `SELECT ` + appointmentCols + ` FROM appointments`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC, id DESC`

	limit := f.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	args = append(args, limit, max(f.Offset, 0))
	query += fmt.Sprintf(` LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PgRepository) CreateAppointment(ctx context.Context, a *Appointment) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO appointments (id, user_id, masseur_id, service_id, service_duration_id,
			appointment_date, appointment_time, status, price, duration_minutes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6::date, $7::time, $8, $9, $10, $11, $11)
		RETURNING `+appointmentCols,
		a.ID, a.UserID, a.MasseurID, a.ServiceID, a.ServiceDurationID,
		a.Date, a.Time.String(), a.Status, a.Price, a.Duration, a.CreatedAt)

	created, err := scanAppointment(row)
	if err != nil {
		if isActiveSlotViolation(err) {
			return nil, ErrSlotOccupied
		}
		return nil, err
	}
	return created, nil
}

func (r *PgRepository) UpdateAppointment(ctx context.Context, next *Appointment, expected Status) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE appointments
		SET masseur_id = $3,
		    service_id = $4,
		    service_duration_id = $5,
		    appointment_date = $6::date,
		    appointment_time = $7::time,
		    status = $8,
		    price = $9,
		    duration_minutes = $10,
		    updated_at = $11
		WHERE id = $1
		  AND status = $2
		RETURNING `+appointmentCols,
		next.ID, expected, next.MasseurID, next.ServiceID, next.ServiceDurationID,
		next.Date, next.Time.String(), next.Status, next.Price, next.Duration, next.UpdatedAt)

	updated, err := scanAppointment(row)
	if err != nil {
		switch {
		case errors.Is(err, ErrAppointmentNotFound):
			return nil, ErrStaleWrite
		case isActiveSlotViolation(err):
			return nil, ErrSlotOccupied
		}
		return nil, err
	}
	return updated, nil
}

func (r *PgRepository) InsertEvent(ctx context.Context, ev EventLog) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO event_logs (event_type, appointment_id, payload, created_at)
		VALUES ($1, $2, $3, COALESCE($4, now()))
	`, ev.EventType, ev.AppointmentID, ev.Payload, nullableTime(ev.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert event log: %w", err)
	}

	return nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
