package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/hackgods/spa-booking/internal/apperr"
)

var (
	ErrServiceNotFound  = fmt.Errorf("%w: service", apperr.ErrNotFound)
	ErrDurationNotFound = fmt.Errorf("%w: service duration", apperr.ErrNotFound)
	ErrMasseurNotFound  = fmt.Errorf("%w: masseur", apperr.ErrNotFound)
)

// Repository is the read-only catalog store.
type Repository interface {
	GetService(ctx context.Context, id uuid.UUID) (*Service, error)
	GetServiceDuration(ctx context.Context, id uuid.UUID) (*ServiceDuration, error)
	GetMasseur(ctx context.Context, id uuid.UUID) (*Masseur, error)

	ListActiveServices(ctx context.Context) ([]ServiceWithDurations, error)
	ListActiveMasseurs(ctx context.Context) ([]Masseur, error)
}
