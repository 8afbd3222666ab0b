package appointment

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/hackgods/spa-booking/internal/apperr"
)

var (
	ErrAppointmentNotFound = fmt.Errorf("%w: appointment", apperr.ErrNotFound)
	ErrSlotOccupied        = fmt.Errorf("%w: slot already has an active appointment", apperr.ErrSlotTaken)

	// ErrStaleWrite means a conditional update matched no row because the
	// stored status differs from the one the caller loaded.
	ErrStaleWrite = errors.New("appointment changed since it was loaded")
)

// Repository contains all DB interactions needed by the service.
// Appointments are never deleted.
type Repository interface {
	GetAppointmentByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	FindAppointments(ctx context.Context, f Filter) ([]Appointment, error)

	// CreateAppointment returns ErrSlotOccupied when the store's uniqueness
	// rule for active slots rejects the row.
	CreateAppointment(ctx context.Context, a *Appointment) (*Appointment, error)

	// UpdateAppointment persists next only if the stored status still equals
	// expected; otherwise it returns ErrStaleWrite.
	UpdateAppointment(ctx context.Context, next *Appointment, expected Status) (*Appointment, error)

	InsertEvent(ctx context.Context, ev EventLog) error
}
