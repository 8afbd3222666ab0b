package api

import (
	"github.com/hackgods/spa-booking/internal/appointment"
)

type CreateAppointmentRequest struct {
	ServiceID         string `json:"serviceId" validate:"required,uuid"`
	ServiceDurationID string `json:"serviceDurationId" validate:"required,uuid"`
	MasseurID         string `json:"masseurId" validate:"required,uuid"`
	Date              string `json:"date" validate:"required,datetime=2006-01-02"`
	Time              string `json:"time" validate:"required,datetime=15:04"`
}

// UpdateAppointmentRequest is a partial update; absent fields stay as they are.
type UpdateAppointmentRequest struct {
	Status            *string `json:"status" validate:"omitempty,oneofci=PENDING CONFIRMED CANCELLED"`
	MasseurID         *string `json:"masseurId" validate:"omitempty,uuid"`
	ServiceID         *string `json:"serviceId" validate:"omitempty,uuid"`
	ServiceDurationID *string `json:"serviceDurationId" validate:"omitempty,uuid"`
	Date              *string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Time              *string `json:"time" validate:"omitempty,datetime=15:04"`
}

type AppointmentListResponse struct {
	Items  []appointment.Appointment `json:"items"`
	Limit  int                       `json:"limit"`
	Offset int                       `json:"offset"`
}

type SlotsResponse struct {
	MasseurID string                         `json:"masseurId"`
	Date      string                         `json:"date"`
	Slots     []appointment.SlotAvailability `json:"slots"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
