package appointment

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryRepository keeps appointments in process. It enforces the same
// one-active-appointment-per-slot rule as the appointments_active_slot_uniq
// index so it can stand in for Postgres in tests.
type MemoryRepository struct {
	mu           sync.Mutex
	appointments map[uuid.UUID]Appointment
	events       []EventLog
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{appointments: make(map[uuid.UUID]Appointment)}
}

func (r *MemoryRepository) GetAppointmentByID(_ context.Context, id uuid.UUID) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.appointments[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	return &a, nil
}

func (r *MemoryRepository) FindAppointments(_ context.Context, f Filter) ([]Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Appointment
	for _, a := range r.appointments {
		if matches(a, f) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.String() > out[j].ID.String()
	})

	limit := f.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	offset := max(f.Offset, 0)
	if offset >= len(out) {
		return nil, nil
	}
	return out[offset:min(offset+limit, len(out))], nil
}

func matches(a Appointment, f Filter) bool {
	switch {
	case f.UserID != "" && a.UserID != f.UserID:
		return false
	case f.MasseurID != uuid.Nil && a.MasseurID != f.MasseurID:
		return false
	case f.Date != "" && a.Date != f.Date:
		return false
	case f.Time != nil && a.Time != *f.Time:
		return false
	case len(f.Statuses) > 0 && !slices.Contains(f.Statuses, a.Status):
		return false
	case f.ExcludeID != uuid.Nil && a.ID == f.ExcludeID:
		return false
	}
	return true
}

func (r *MemoryRepository) occupiedLocked(a Appointment) bool {
	if !a.Status.Active() {
		return false
	}
	for _, other := range r.appointments {
		if other.ID != a.ID && other.Status.Active() && other.Slot() == a.Slot() {
			return true
		}
	}
	return false
}

func (r *MemoryRepository) CreateAppointment(_ context.Context, a *Appointment) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.occupiedLocked(*a) {
		return nil, ErrSlotOccupied
	}
	created := *a
	created.UpdatedAt = created.CreatedAt
	r.appointments[created.ID] = created
	return &created, nil
}

func (r *MemoryRepository) UpdateAppointment(_ context.Context, next *Appointment, expected Status) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.appointments[next.ID]
	if !ok || current.Status != expected {
		return nil, ErrStaleWrite
	}
	if r.occupiedLocked(*next) {
		return nil, ErrSlotOccupied
	}

	updated := *next
	updated.UserID = current.UserID
	updated.CreatedAt = current.CreatedAt
	r.appointments[updated.ID] = updated
	return &updated, nil
}

func (r *MemoryRepository) InsertEvent(_ context.Context, ev EventLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ev.ID = int64(len(r.events) + 1)
	r.events = append(r.events, ev)
	return nil
}

// Events returns a copy of the recorded event log.
func (r *MemoryRepository) Events() []EventLog {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.events)
}
