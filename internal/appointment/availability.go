package appointment

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/hackgods/spa-booking/internal/catalog"
)

// AvailabilityChecker answers point queries against a slot. A booking of any
// duration occupies exactly its start slot, so two services starting at the
// same (masseur, date, time) always conflict. It is a fast path only: the
// store's unique index is what actually guarantees a single active booking.
type AvailabilityChecker struct {
	repo Repository
}

func NewAvailabilityChecker(repo Repository) *AvailabilityChecker {
	return &AvailabilityChecker{repo: repo}
}

// IsSlotTaken reports whether a PENDING or CONFIRMED appointment holds slot.
func (c *AvailabilityChecker) IsSlotTaken(ctx context.Context, slot Slot) (bool, error) {
	return c.takenExcept(ctx, slot, uuid.Nil)
}

// IsSlotTakenByOther is IsSlotTaken ignoring the appointment self, which may
// always keep its own slot.
func (c *AvailabilityChecker) IsSlotTakenByOther(ctx context.Context, slot Slot, self uuid.UUID) (bool, error) {
	return c.takenExcept(ctx, slot, self)
}

func (c *AvailabilityChecker) takenExcept(ctx context.Context, slot Slot, exclude uuid.UUID) (bool, error) {
	t := slot.Time
	found, err := c.repo.FindAppointments(ctx, Filter{
		MasseurID: slot.MasseurID,
		Date:      slot.Date,
		Time:      &t,
		Statuses:  ActiveStatuses,
		ExcludeID: exclude,
		Limit:     1,
	})
	if err != nil {
		return false, fmt.Errorf("check slot %s: %w", slot.Key(), err)
	}
	return len(found) > 0, nil
}

type SlotAvailability struct {
	Time  catalog.Clock `json:"time"`
	Taken bool          `json:"taken"`
}

// DaySlots marks every grid slot of a masseur's day as taken or free.
func (c *AvailabilityChecker) DaySlots(ctx context.Context, masseurID uuid.UUID, date string, grid catalog.SlotGrid) ([]SlotAvailability, error) {
	slots := grid.Slots()
	booked, err := c.repo.FindAppointments(ctx, Filter{
		MasseurID: masseurID,
		Date:      date,
		Statuses:  ActiveStatuses,
		Limit:     len(slots) + 1,
	})
	if err != nil {
		return nil, fmt.Errorf("load day bookings: %w", err)
	}

	taken := make(map[catalog.Clock]bool, len(booked))
	for _, a := range booked {
		taken[a.Time] = true
	}

	out := make([]SlotAvailability, 0, len(slots))
	for _, s := range slots {
		out = append(out, SlotAvailability{Time: s, Taken: taken[s]})
	}
	return out, nil
}
