package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hackgods/spa-booking/internal/appointment"
	"github.com/hackgods/spa-booking/internal/apperr"
	"github.com/hackgods/spa-booking/internal/auth"
	"github.com/hackgods/spa-booking/internal/catalog"
)

type AppointmentService interface {
	CreateAppointment(ctx context.Context, p auth.Principal, req appointment.CreateRequest) (*appointment.Appointment, error)
	ListAppointments(ctx context.Context, p auth.Principal, req appointment.ListRequest) ([]appointment.Appointment, error)
	GetAppointment(ctx context.Context, p auth.Principal, id uuid.UUID) (*appointment.Appointment, error)
	UpdateAppointment(ctx context.Context, p auth.Principal, id uuid.UUID, patch appointment.Patch) (*appointment.Appointment, error)
	CancelAppointment(ctx context.Context, p auth.Principal, id uuid.UUID) (*appointment.Appointment, error)
	Availability(ctx context.Context, masseurID uuid.UUID, date string) ([]appointment.SlotAvailability, error)
}

type CatalogReader interface {
	Services(ctx context.Context) ([]catalog.ServiceWithDurations, error)
	Masseurs(ctx context.Context) ([]catalog.Masseur, error)
}

func createAppointmentHandler(svc AppointmentService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := auth.FromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized", "missing principal")
			return
		}

		var req CreateAppointmentRequest
		if err := decodeAndValidate(r, &req); err != nil {
			writeServiceError(w, r, logger, err)
			return
		}

		appt, err := svc.CreateAppointment(r.Context(), p, appointment.CreateRequest{
			ServiceID:         uuid.MustParse(req.ServiceID),
			ServiceDurationID: uuid.MustParse(req.ServiceDurationID),
			MasseurID:         uuid.MustParse(req.MasseurID),
			Date:              req.Date,
			Time:              req.Time,
		})
		if err != nil {
			writeServiceError(w, r, logger, err)
			return
		}

		writeJSON(w, http.StatusCreated, appt)
	}
}

func listAppointmentsHandler(svc AppointmentService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := auth.FromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized", "missing principal")
			return
		}

		q := r.URL.Query()
		var req appointment.ListRequest
		if raw := q.Get("status"); raw != "" {
			st, err := appointment.ParseStatus(raw)
			if err != nil {
				writeServiceError(w, r, logger, err)
				return
			}
			req.Status = &st
		}
		req.Date = q.Get("date")

		var err error
		if req.Limit, err = queryInt(q.Get("limit")); err != nil {
			writeServiceError(w, r, logger, fmt.Errorf("%w: limit: %v", apperr.ErrValidation, err))
			return
		}
		if req.Offset, err = queryInt(q.Get("offset")); err != nil {
			writeServiceError(w, r, logger, fmt.Errorf("%w: offset: %v", apperr.ErrValidation, err))
			return
		}

		items, err := svc.ListAppointments(r.Context(), p, req)
		if err != nil {
			writeServiceError(w, r, logger, err)
			return
		}

		writeJSON(w, http.StatusOK, AppointmentListResponse{
			Items:  items,
			Limit:  appointment.EffectiveLimit(req.Limit),
			Offset: req.Offset,
		})
	}
}

func getAppointmentHandler(svc AppointmentService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, id, ok := principalAndID(w, r)
		if !ok {
			return
		}

		appt, err := svc.GetAppointment(r.Context(), p, id)
		if err != nil {
			writeServiceError(w, r, logger, err)
			return
		}

		writeJSON(w, http.StatusOK, appt)
	}
}

func updateAppointmentHandler(svc AppointmentService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, id, ok := principalAndID(w, r)
		if !ok {
			return
		}

		var req UpdateAppointmentRequest
		if err := decodeAndValidate(r, &req); err != nil {
			writeServiceError(w, r, logger, err)
			return
		}

		patch := appointment.Patch{
			MasseurID:         parseOptionalUUID(req.MasseurID),
			ServiceID:         parseOptionalUUID(req.ServiceID),
			ServiceDurationID: parseOptionalUUID(req.ServiceDurationID),
			Date:              req.Date,
			Time:              req.Time,
		}
		if req.Status != nil {
			st, err := appointment.ParseStatus(*req.Status)
			if err != nil {
				writeServiceError(w, r, logger, err)
				return
			}
			patch.Status = &st
		}

		appt, err := svc.UpdateAppointment(r.Context(), p, id, patch)
		if err != nil {
			writeServiceError(w, r, logger, err)
			return
		}

		writeJSON(w, http.StatusOK, appt)
	}
}

func cancelAppointmentHandler(svc AppointmentService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, id, ok := principalAndID(w, r)
		if !ok {
			return
		}

		appt, err := svc.CancelAppointment(r.Context(), p, id)
		if err != nil {
			writeServiceError(w, r, logger, err)
			return
		}

		writeJSON(w, http.StatusOK, appt)
	}
}

func listServicesHandler(cat CatalogReader, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		services, err := cat.Services(r.Context())
		if err != nil {
			writeServiceError(w, r, logger, err)
			return
		}
		if services == nil {
			services = []catalog.ServiceWithDurations{}
		}
		writeJSON(w, http.StatusOK, services)
	}
}

func listMasseursHandler(cat CatalogReader, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		masseurs, err := cat.Masseurs(r.Context())
		if err != nil {
			writeServiceError(w, r, logger, err)
			return
		}
		if masseurs == nil {
			masseurs = []catalog.Masseur{}
		}
		writeJSON(w, http.StatusOK, masseurs)
	}
}

func slotsHandler(svc AppointmentService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		masseurID, err := uuid.Parse(q.Get("masseurId"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "validation_error", "masseurId must be a valid UUID")
			return
		}
		date := q.Get("date")

		slots, err := svc.Availability(r.Context(), masseurID, date)
		if err != nil {
			writeServiceError(w, r, logger, err)
			return
		}

		writeJSON(w, http.StatusOK, SlotsResponse{MasseurID: masseurID.String(), Date: date, Slots: slots})
	}
}

func principalAndID(w http.ResponseWriter, r *http.Request) (auth.Principal, uuid.UUID, bool) {
	p, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing principal")
		return auth.Principal{}, uuid.Nil, false
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "id must be a valid UUID")
		return auth.Principal{}, uuid.Nil, false
	}
	return p, id, true
}

// parseOptionalUUID expects s to have passed the uuid validator already.
func parseOptionalUUID(s *string) *uuid.UUID {
	if s == nil {
		return nil
	}
	id := uuid.MustParse(*s)
	return &id
}

func queryInt(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("must be a non-negative integer, got %q", raw)
	}
	return n, nil
}
