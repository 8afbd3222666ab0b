package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/hackgods/spa-booking/internal/apperr"
)

// BookingInputs are the catalog entities a booking pins.
type BookingInputs struct {
	Service  *Service
	Duration *ServiceDuration
	Masseur  *Masseur
}

// Lookup resolves the catalog references of a booking request. It never writes.
type Lookup struct {
	repo Repository
}

func NewLookup(repo Repository) *Lookup {
	return &Lookup{repo: repo}
}

// ResolveBookingInputs loads the service, duration and masseur and checks that
// the duration belongs to the service and that nothing is retired.
func (l *Lookup) ResolveBookingInputs(ctx context.Context, serviceID, durationID, masseurID uuid.UUID) (*BookingInputs, error) {
	service, err := l.repo.GetService(ctx, serviceID)
	if err != nil {
		return nil, notFound(err, "load service", serviceID)
	}
	duration, err := l.repo.GetServiceDuration(ctx, durationID)
	if err != nil {
		return nil, notFound(err, "load service duration", durationID)
	}
	masseur, err := l.repo.GetMasseur(ctx, masseurID)
	if err != nil {
		return nil, notFound(err, "load masseur", masseurID)
	}

	if duration.ServiceID != service.ID {
		return nil, fmt.Errorf("%w: duration %s does not belong to service %s",
			apperr.ErrInvalidReference, duration.ID, service.ID)
	}
	if !service.Active {
		return nil, fmt.Errorf("%w: service %s is not active", apperr.ErrInvalidReference, service.ID)
	}
	if !masseur.Active {
		return nil, fmt.Errorf("%w: masseur %s is not active", apperr.ErrInvalidReference, masseur.ID)
	}

	return &BookingInputs{Service: service, Duration: duration, Masseur: masseur}, nil
}

func notFound(err error, op string, id uuid.UUID) error {
	if errors.Is(err, apperr.ErrNotFound) {
		return fmt.Errorf("%w %s", err, id)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (l *Lookup) Services(ctx context.Context) ([]ServiceWithDurations, error) {
	return l.repo.ListActiveServices(ctx)
}

func (l *Lookup) Masseurs(ctx context.Context) ([]Masseur, error) {
	return l.repo.ListActiveMasseurs(ctx)
}

func (l *Lookup) Masseur(ctx context.Context, id uuid.UUID) (*Masseur, error) {
	m, err := l.repo.GetMasseur(ctx, id)
	if err != nil {
		return nil, notFound(err, "load masseur", id)
	}
	return m, nil
}
