package appointment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/hackgods/spa-booking/internal/apperr"
	"github.com/hackgods/spa-booking/internal/auth"
	"github.com/hackgods/spa-booking/internal/catalog"
	"github.com/hackgods/spa-booking/internal/notify"
	redisclient "github.com/hackgods/spa-booking/internal/redis"
)

const (
	EventAppointmentCreated   = "APPOINTMENT_CREATED"
	EventAppointmentUpdated   = "APPOINTMENT_UPDATED"
	EventAppointmentCancelled = "APPOINTMENT_CANCELLED"

	MaxListLimit = 200
)

var tracer = otel.Tracer("github.com/hackgods/spa-booking/internal/appointment")

// Options carries the scheduling rules the service enforces.
type Options struct {
	Grid     catalog.SlotGrid
	Location *time.Location
	// NotifyTimeout bounds one notification attempt.
	NotifyTimeout time.Duration
	// Now defaults to time.Now.
	Now func() time.Time
}

type Service struct {
	repo         Repository
	lookup       *catalog.Lookup
	availability *AvailabilityChecker
	locker       redisclient.Locker
	notifier     notify.Notifier
	logger       *zap.Logger

	grid          catalog.SlotGrid
	loc           *time.Location
	notifyTimeout time.Duration
	now           func() time.Time

	inflight sync.WaitGroup
}

func NewService(
	repo Repository,
	lookup *catalog.Lookup,
	locker redisclient.Locker,
	notifier notify.Notifier,
	logger *zap.Logger,
	opts Options,
) *Service {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NotifyTimeout <= 0 {
		opts.NotifyTimeout = 5 * time.Second
	}
	return &Service{
		repo:          repo,
		lookup:        lookup,
		availability:  NewAvailabilityChecker(repo),
		locker:        locker,
		notifier:      notifier,
		logger:        logger,
		grid:          opts.Grid,
		loc:           opts.Location,
		notifyTimeout: opts.NotifyTimeout,
		now:           opts.Now,
	}
}

// CreateRequest identifies the slot and service a user wants to book.
type CreateRequest struct {
	ServiceID         uuid.UUID
	ServiceDurationID uuid.UUID
	MasseurID         uuid.UUID
	Date              string
	Time              string
}

// CreateAppointment books a slot for the principal. The slot lock narrows the
// race window between replicas; the store's unique index closes it.
func (s *Service) CreateAppointment(ctx context.Context, p auth.Principal, req CreateRequest) (_ *Appointment, err error) {
	ctx, span := tracer.Start(ctx, "appointment.create", trace.WithAttributes(
		attribute.String("masseur.id", req.MasseurID.String()),
		attribute.String("appointment.date", req.Date),
		attribute.String("appointment.time", req.Time),
	))
	defer func() { endSpan(span, err) }()

	if p.ID == "" {
		return nil, fmt.Errorf("%w: principal id is required", apperr.ErrValidation)
	}
	if req.ServiceID == uuid.Nil || req.ServiceDurationID == uuid.Nil || req.MasseurID == uuid.Nil {
		return nil, fmt.Errorf("%w: serviceId, serviceDurationId and masseurId are required", apperr.ErrValidation)
	}
	date, clock, err := s.validateSlot(req.Date, req.Time)
	if err != nil {
		return nil, err
	}

	inputs, err := s.lookup.ResolveBookingInputs(ctx, req.ServiceID, req.ServiceDurationID, req.MasseurID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	appt := &Appointment{
		ID:                uuid.New(),
		UserID:            p.ID,
		MasseurID:         inputs.Masseur.ID,
		ServiceID:         inputs.Service.ID,
		ServiceDurationID: inputs.Duration.ID,
		Date:              date,
		Time:              clock,
		Status:            StatusPending,
		Price:             inputs.Duration.Price,
		Duration:          inputs.Duration.Minutes,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	var created *Appointment
	err = s.locker.WithSlotLock(ctx, appt.Slot().Key(), func(lockCtx context.Context) error {
		taken, err := s.availability.IsSlotTaken(lockCtx, appt.Slot())
		if err != nil {
			return err
		}
		if taken {
			return ErrSlotOccupied
		}

		created, err = s.repo.CreateAppointment(lockCtx, appt)
		if err != nil {
			if errors.Is(err, ErrSlotOccupied) {
				return err
			}
			return fmt.Errorf("create appointment: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return nil, fmt.Errorf("%w: slot is being booked, please retry", apperr.ErrSlotTaken)
		}
		return nil, err
	}

	s.logEvent(ctx, created.ID, EventAppointmentCreated, map[string]any{
		"user_id":    created.UserID,
		"masseur_id": created.MasseurID.String(),
		"date":       created.Date,
		"time":       created.Time.String(),
		"price":      created.Price,
		"duration":   created.Duration,
	})
	s.notifyCreated(ctx, created, inputs)

	s.logger.Info("appointment created",
		zap.Stringer("appointment_id", created.ID),
		zap.String("user_id", created.UserID),
		zap.String("slot", created.Slot().Key()),
	)
	return created, nil
}

// ListRequest filters a listing. Zero values do not constrain.
type ListRequest struct {
	Status *Status
	Date   string
	Limit  int
	Offset int
}

// ListAppointments returns the newest appointments first. Non-admins only ever
// see their own.
func (s *Service) ListAppointments(ctx context.Context, p auth.Principal, req ListRequest) ([]Appointment, error) {
	f := Filter{
		Limit:  req.Limit,
		Offset: max(req.Offset, 0),
	}
	if !p.IsAdmin() {
		if p.ID == "" {
			return nil, fmt.Errorf("%w: principal id is required", apperr.ErrValidation)
		}
		f.UserID = p.ID
	}
	if req.Status != nil {
		f.Statuses = []Status{*req.Status}
	}
	if req.Date != "" {
		if _, err := parseDate(req.Date, s.loc); err != nil {
			return nil, err
		}
		f.Date = req.Date
	}
	f.Limit = EffectiveLimit(f.Limit)

	out, err := s.repo.FindAppointments(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	if out == nil {
		out = []Appointment{}
	}
	return out, nil
}

// EffectiveLimit clamps a requested page size to (0, MaxListLimit].
func EffectiveLimit(limit int) int {
	switch {
	case limit <= 0:
		return defaultListLimit
	case limit > MaxListLimit:
		return MaxListLimit
	}
	return limit
}

func (s *Service) GetAppointment(ctx context.Context, p auth.Principal, id uuid.UUID) (*Appointment, error) {
	appt, err := s.repo.GetAppointmentByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	if !p.CanAccess(appt.UserID) {
		return nil, fmt.Errorf("%w: not the owner of this appointment", apperr.ErrForbidden)
	}
	return appt, nil
}

// Patch is a partial update. Nil fields are left unchanged.
type Patch struct {
	Status            *Status
	MasseurID         *uuid.UUID
	ServiceID         *uuid.UUID
	ServiceDurationID *uuid.UUID
	Date              *string
	Time              *string
}

func (p Patch) editsFields() bool {
	return p.MasseurID != nil || p.ServiceID != nil || p.ServiceDurationID != nil || p.Date != nil || p.Time != nil
}

func (p Patch) editsReferences() bool {
	return p.MasseurID != nil || p.ServiceID != nil || p.ServiceDurationID != nil
}

// UpdateAppointment applies patch to the stored appointment. The write is
// conditional on the status it was loaded with, so a concurrent cancel can
// never be overwritten.
func (s *Service) UpdateAppointment(ctx context.Context, p auth.Principal, id uuid.UUID, patch Patch) (_ *Appointment, err error) {
	ctx, span := tracer.Start(ctx, "appointment.update", trace.WithAttributes(
		attribute.String("appointment.id", id.String()),
	))
	defer func() { endSpan(span, err) }()

	current, err := s.repo.GetAppointmentByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load appointment: %w", err)
	}
	if !p.CanAccess(current.UserID) {
		return nil, fmt.Errorf("%w: not the owner of this appointment", apperr.ErrForbidden)
	}

	if patch.Status == nil && !patch.editsFields() {
		return nil, fmt.Errorf("%w: nothing to update", apperr.ErrValidation)
	}
	var target Status
	if patch.Status != nil {
		target = *patch.Status
	}
	if target == StatusCancelled && patch.editsFields() {
		return nil, fmt.Errorf("%w: cancel cannot be combined with field changes", apperr.ErrValidation)
	}

	if err := CheckTransition(Change{
		Principal:   p,
		Current:     current,
		Target:      target,
		EditsFields: patch.editsFields(),
		Now:         s.now(),
		Location:    s.loc,
	}); err != nil {
		return nil, err
	}

	next := *current
	if target != "" {
		next.Status = target
	}
	if patch.editsFields() {
		if err := s.applyFieldEdits(ctx, &next, patch); err != nil {
			return nil, err
		}
	}

	if next == *current {
		return current, nil
	}
	next.UpdatedAt = s.now()

	var updated *Appointment
	write := func(ctx context.Context) error {
		var err error
		updated, err = s.repo.UpdateAppointment(ctx, &next, current.Status)
		return err
	}

	if next.Slot() != current.Slot() {
		err = s.locker.WithSlotLock(ctx, next.Slot().Key(), func(lockCtx context.Context) error {
			taken, err := s.availability.IsSlotTakenByOther(lockCtx, next.Slot(), next.ID)
			if err != nil {
				return err
			}
			if taken {
				return ErrSlotOccupied
			}
			return write(lockCtx)
		})
	} else {
		err = write(ctx)
	}

	if err != nil {
		switch {
		case errors.Is(err, redisclient.ErrLockNotAcquired):
			return nil, fmt.Errorf("%w: slot is being booked, please retry", apperr.ErrSlotTaken)
		case errors.Is(err, ErrStaleWrite):
			return nil, s.staleWriteError(ctx, id)
		case errors.Is(err, ErrSlotOccupied):
			return nil, err
		}
		return nil, fmt.Errorf("update appointment: %w", err)
	}

	eventType := EventAppointmentUpdated
	if updated.Status == StatusCancelled {
		eventType = EventAppointmentCancelled
	}
	s.logEvent(ctx, updated.ID, eventType, map[string]any{
		"by":          p.ID,
		"from_status": string(current.Status),
		"to_status":   string(updated.Status),
		"from_slot":   current.Slot().Key(),
		"to_slot":     updated.Slot().Key(),
	})

	s.logger.Info("appointment updated",
		zap.Stringer("appointment_id", updated.ID),
		zap.String("by", p.ID),
		zap.String("from_status", string(current.Status)),
		zap.String("to_status", string(updated.Status)),
	)
	return updated, nil
}

// CancelAppointment is UpdateAppointment with the status forced to CANCELLED.
func (s *Service) CancelAppointment(ctx context.Context, p auth.Principal, id uuid.UUID) (*Appointment, error) {
	cancelled := StatusCancelled
	return s.UpdateAppointment(ctx, p, id, Patch{Status: &cancelled})
}

// Availability lists the grid for one masseur's day.
func (s *Service) Availability(ctx context.Context, masseurID uuid.UUID, date string) ([]SlotAvailability, error) {
	if masseurID == uuid.Nil {
		return nil, fmt.Errorf("%w: masseurId is required", apperr.ErrValidation)
	}
	if _, err := parseDate(date, s.loc); err != nil {
		return nil, err
	}
	if _, err := s.lookup.Masseur(ctx, masseurID); err != nil {
		return nil, err
	}
	return s.availability.DaySlots(ctx, masseurID, date, s.grid)
}

// Wait blocks until in-flight notifications finish or ctx is done.
func (s *Service) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// applyFieldEdits merges patch into next and re-resolves what it references.
// Price and duration are re-snapshotted only when the duration itself changes.
func (s *Service) applyFieldEdits(ctx context.Context, next *Appointment, patch Patch) error {
	pinned := next.ServiceDurationID
	if patch.MasseurID != nil {
		next.MasseurID = *patch.MasseurID
	}
	if patch.ServiceID != nil {
		next.ServiceID = *patch.ServiceID
	}
	if patch.ServiceDurationID != nil {
		next.ServiceDurationID = *patch.ServiceDurationID
	}

	if patch.editsReferences() {
		inputs, err := s.lookup.ResolveBookingInputs(ctx, next.ServiceID, next.ServiceDurationID, next.MasseurID)
		if err != nil {
			return err
		}
		if next.ServiceDurationID != pinned {
			next.Price = inputs.Duration.Price
			next.Duration = inputs.Duration.Minutes
		}
	}

	if patch.Date != nil || patch.Time != nil {
		date, clock := next.Date, next.Time.String()
		if patch.Date != nil {
			date = *patch.Date
		}
		if patch.Time != nil {
			clock = *patch.Time
		}
		d, c, err := s.validateSlot(date, clock)
		if err != nil {
			return err
		}
		next.Date, next.Time = d, c
	}
	return nil
}

// staleWriteError explains why a conditional update matched nothing.
func (s *Service) staleWriteError(ctx context.Context, id uuid.UUID) error {
	latest, err := s.repo.GetAppointmentByID(ctx, id)
	if err != nil {
		return fmt.Errorf("reload appointment: %w", err)
	}
	if latest.Status.Terminal() {
		return fmt.Errorf("%w: appointment %s is %s", apperr.ErrAlreadyTerminal, id, latest.Status)
	}
	return fmt.Errorf("%w: appointment was modified concurrently, reload and retry", apperr.ErrInvalidState)
}

// validateSlot checks that date and clock name a bookable grid slot that has
// not started yet, returning both in canonical form.
func (s *Service) validateSlot(date, clock string) (string, catalog.Clock, error) {
	day, err := parseDate(date, s.loc)
	if err != nil {
		return "", 0, err
	}
	c, err := catalog.ParseClock(clock)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %v", apperr.ErrValidation, err)
	}
	if !s.grid.Contains(c) {
		return "", 0, fmt.Errorf("%w: time %s is not on the %d minute grid between %s and %s",
			apperr.ErrValidation, c, s.grid.Interval, s.grid.Opening, s.grid.Closing)
	}

	now := s.now().In(s.loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
	if day.Before(today) {
		return "", 0, fmt.Errorf("%w: date %s is in the past", apperr.ErrValidation, date)
	}
	if c.On(day, s.loc).Before(now) {
		return "", 0, fmt.Errorf("%w: slot %s %s has already started", apperr.ErrValidation, date, c)
	}
	return day.Format(catalog.DateLayout), c, nil
}

func parseDate(date string, loc *time.Location) (time.Time, error) {
	d, err := time.ParseInLocation(catalog.DateLayout, date, loc)
	if err != nil || d.Format(catalog.DateLayout) != date {
		return time.Time{}, fmt.Errorf("%w: invalid date %q, want YYYY-MM-DD", apperr.ErrValidation, date)
	}
	return d, nil
}

func (s *Service) notifyCreated(ctx context.Context, a *Appointment, inputs *catalog.BookingInputs) {
	ev := notify.Event{
		EventID:       uuid.New(),
		AppointmentID: a.ID,
		UserID:        a.UserID,
		MasseurID:     a.MasseurID,
		MasseurName:   inputs.Masseur.Name,
		ServiceID:     a.ServiceID,
		ServiceName:   inputs.Service.Name,
		Date:          a.Date,
		Time:          a.Time.String(),
		Duration:      a.Duration,
		Price:         a.Price,
		OccurredAt:    a.CreatedAt,
	}

	// The booking is already committed; the request may finish first.
	notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.notifyTimeout)
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		defer cancel()
		if err := s.notifier.AppointmentCreated(notifyCtx, ev); err != nil {
			s.logger.Warn("appointment notification failed",
				zap.Stringer("appointment_id", a.ID),
				zap.Error(err),
			)
		}
	}()
}

func (s *Service) logEvent(ctx context.Context, appointmentID uuid.UUID, eventType string, payload map[string]any) {
	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.Warn("failed to marshal event payload", zap.String("event_type", eventType), zap.Error(err))
		data = nil
	}

	apptID := appointmentID

	ev := EventLog{
		EventType:     eventType,
		AppointmentID: &apptID,
		Payload:       data,
		CreatedAt:     s.now(),
	}

	if err := s.repo.InsertEvent(ctx, ev); err != nil {
		s.logger.Warn("failed to insert event log",
			zap.String("event_type", eventType),
			zap.Stringer("appointment_id", appointmentID),
			zap.Error(err),
		)
	}
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, apperr.Kind(err))
	}
	span.End()
}
