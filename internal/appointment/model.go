package appointment

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/spa-booking/internal/apperr"
	"github.com/hackgods/spa-booking/internal/catalog"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusCancelled Status = "CANCELLED"
)

// ParseStatus normalizes any casing to the canonical upper-case status.
func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.ToUpper(strings.TrimSpace(s))); st {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return st, nil
	}
	return "", fmt.Errorf("%w: unknown status %q", apperr.ErrValidation, s)
}

// Active statuses hold their slot.
func (s Status) Active() bool {
	return s == StatusPending || s == StatusConfirmed
}

func (s Status) Terminal() bool {
	return s == StatusCancelled
}

// ActiveStatuses are the statuses covered by the one-booking-per-slot rule.
var ActiveStatuses = []Status{StatusPending, StatusConfirmed}

// Slot is the unit of conflict detection.
type Slot struct {
	MasseurID uuid.UUID
	Date      string // YYYY-MM-DD
	Time      catalog.Clock
}

// Key identifies the slot for locking.
func (s Slot) Key() string {
	return fmt.Sprintf("%s:%s:%s", s.MasseurID, s.Date, s.Time)
}

// Appointment is a booking. Price and Duration are copied from the catalog at
// booking time and only change when an admin re-pins a different duration.
type Appointment struct {
	ID                uuid.UUID     `json:"id"`
	UserID            string        `json:"userId"`
	MasseurID         uuid.UUID     `json:"masseurId"`
	ServiceID         uuid.UUID     `json:"serviceId"`
	ServiceDurationID uuid.UUID     `json:"serviceDurationId"`
	Date              string        `json:"date"`
	Time              catalog.Clock `json:"time"`
	Status            Status        `json:"status"`
	Price             int64         `json:"price"`
	Duration          int           `json:"duration"`
	CreatedAt         time.Time     `json:"createdAt"`
	UpdatedAt         time.Time     `json:"updatedAt"`
}

func (a *Appointment) Slot() Slot {
	return Slot{MasseurID: a.MasseurID, Date: a.Date, Time: a.Time}
}

// StartsAt is the appointment's date and time in loc.
func (a *Appointment) StartsAt(loc *time.Location) (time.Time, error) {
	d, err := time.ParseInLocation(catalog.DateLayout, a.Date, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse appointment date %q: %w", a.Date, err)
	}
	return a.Time.On(d, loc), nil
}

// Filter selects appointments. Zero-valued fields do not constrain.
type Filter struct {
	UserID    string
	MasseurID uuid.UUID
	Date      string
	Time      *catalog.Clock
	Statuses  []Status
	ExcludeID uuid.UUID
	Limit     int
	Offset    int
}

type EventLog struct {
	ID            int64
	EventType     string
	AppointmentID *uuid.UUID
	Payload       []byte
	CreatedAt     time.Time
}
