// Package notify tells the outside world that an appointment was booked.
// Delivery is best effort; a failed notification never undoes a booking.
package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const EventAppointmentCreated = "APPOINTMENT_CREATED"

// Event is the payload of an appointment-created notification.
type Event struct {
	EventID       uuid.UUID `json:"eventId"`
	AppointmentID uuid.UUID `json:"appointmentId"`
	UserID        string    `json:"userId"`
	MasseurID     uuid.UUID `json:"masseurId"`
	MasseurName   string    `json:"masseurName"`
	ServiceID     uuid.UUID `json:"serviceId"`
	ServiceName   string    `json:"serviceName"`
	Date          string    `json:"date"`
	Time          string    `json:"time"`
	Duration      int       `json:"duration"`
	Price         int64     `json:"price"`
	OccurredAt    time.Time `json:"occurredAt"`
}

type Notifier interface {
	AppointmentCreated(ctx context.Context, ev Event) error
}

// LogNotifier writes the event to the log. It is the default when no broker
// is configured.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) AppointmentCreated(_ context.Context, ev Event) error {
	n.logger.Info("appointment created",
		zap.Stringer("event_id", ev.EventID),
		zap.Stringer("appointment_id", ev.AppointmentID),
		zap.String("user_id", ev.UserID),
		zap.String("masseur", ev.MasseurName),
		zap.String("service", ev.ServiceName),
		zap.String("date", ev.Date),
		zap.String("time", ev.Time),
	)
	return nil
}
