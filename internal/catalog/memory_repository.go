package catalog

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryRepository is an in-process catalog used by tests and local tooling.
type MemoryRepository struct {
	mu        sync.RWMutex
	services  map[uuid.UUID]Service
	durations map[uuid.UUID]ServiceDuration
	masseurs  map[uuid.UUID]Masseur
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		services:  make(map[uuid.UUID]Service),
		durations: make(map[uuid.UUID]ServiceDuration),
		masseurs:  make(map[uuid.UUID]Masseur),
	}
}

func (r *MemoryRepository) PutService(s Service) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.services[s.ID] = s
}

func (r *MemoryRepository) PutDuration(d ServiceDuration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.durations[d.ID] = d
}

func (r *MemoryRepository) PutMasseur(m Masseur) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.masseurs[m.ID] = m
}

func (r *MemoryRepository) GetService(_ context.Context, id uuid.UUID) (*Service, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.services[id]
	if !ok {
		return nil, ErrServiceNotFound
	}
	return &s, nil
}

func (r *MemoryRepository) GetServiceDuration(_ context.Context, id uuid.UUID) (*ServiceDuration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.durations[id]
	if !ok {
		return nil, ErrDurationNotFound
	}
	return &d, nil
}

func (r *MemoryRepository) GetMasseur(_ context.Context, id uuid.UUID) (*Masseur, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.masseurs[id]
	if !ok {
		return nil, ErrMasseurNotFound
	}
	return &m, nil
}

func (r *MemoryRepository) ListActiveServices(_ context.Context) ([]ServiceWithDurations, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []ServiceWithDurations
	for _, s := range r.services {
		if !s.Active {
			continue
		}
		item := ServiceWithDurations{Service: s}
		for _, d := range r.durations {
			if d.ServiceID == s.ID {
				item.Durations = append(item.Durations, d)
			}
		}
		sort.Slice(item.Durations, func(i, j int) bool {
			return item.Durations[i].Minutes < item.Durations[j].Minutes
		})
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (r *MemoryRepository) ListActiveMasseurs(_ context.Context) ([]Masseur, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Masseur
	for _, m := range r.masseurs {
		if m.Active {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
