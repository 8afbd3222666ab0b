package appointment

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hackgods/spa-booking/internal/apperr"
	"github.com/hackgods/spa-booking/internal/auth"
	"github.com/hackgods/spa-booking/internal/catalog"
	"github.com/hackgods/spa-booking/internal/notify"
	redisclient "github.com/hackgods/spa-booking/internal/redis"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []notify.Event
	err    error
}

func (n *recordingNotifier) AppointmentCreated(_ context.Context, ev notify.Event) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
	return n.err
}

func (n *recordingNotifier) Events() []notify.Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notify.Event(nil), n.events...)
}

type busyLocker struct{}

func (busyLocker) WithSlotLock(context.Context, string, func(context.Context) error) error {
	return redisclient.ErrLockNotAcquired
}

type harness struct {
	svc      *Service
	repo     *MemoryRepository
	catalog  *catalog.MemoryRepository
	clock    *fakeClock
	notifier *recordingNotifier

	service      catalog.Service
	duration60   catalog.ServiceDuration
	duration90   catalog.ServiceDuration
	masseur      catalog.Masseur
	otherMasseur catalog.Masseur
}

var (
	admin = auth.Principal{ID: "admin-1", Role: auth.RoleAdmin}
	u1    = auth.Principal{ID: "U1", Role: auth.RoleUser}
	u2    = auth.Principal{ID: "U2", Role: auth.RoleUser}
	u3    = auth.Principal{ID: "U3", Role: auth.RoleUser}
)

func newHarness(t *testing.T) *harness {
	return newHarnessWith(t, nil, redisclient.NoopLocker{})
}

func newHarnessWith(t *testing.T, repo Repository, locker redisclient.Locker) *harness {
	t.Helper()

	h := &harness{
		repo:     NewMemoryRepository(),
		catalog:  catalog.NewMemoryRepository(),
		clock:    &fakeClock{now: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)},
		notifier: &recordingNotifier{},
	}
	if repo == nil {
		repo = h.repo
	}

	h.service = catalog.Service{ID: uuid.New(), Name: "S1", Category: catalog.CategoryMassage, Type: catalog.ServiceSingle, Active: true}
	h.duration60 = catalog.ServiceDuration{ID: uuid.New(), ServiceID: h.service.ID, Minutes: 60, Price: 2000}
	h.duration90 = catalog.ServiceDuration{ID: uuid.New(), ServiceID: h.service.ID, Minutes: 90, Price: 2800}
	h.masseur = catalog.Masseur{ID: uuid.New(), Name: "M1", Active: true}
	h.otherMasseur = catalog.Masseur{ID: uuid.New(), Name: "M2", Active: true}
	h.catalog.PutService(h.service)
	h.catalog.PutDuration(h.duration60)
	h.catalog.PutDuration(h.duration90)
	h.catalog.PutMasseur(h.masseur)
	h.catalog.PutMasseur(h.otherMasseur)

	grid, err := catalog.NewSlotGrid(30, "09:00", "21:00")
	require.NoError(t, err)

	h.svc = NewService(repo, catalog.NewLookup(h.catalog), locker, h.notifier, zap.NewNop(), Options{
		Grid:          grid,
		Location:      time.UTC,
		NotifyTimeout: time.Second,
		Now:           h.clock.Now,
	})
	return h
}

func (h *harness) request(date, clock string) CreateRequest {
	return CreateRequest{
		ServiceID:         h.service.ID,
		ServiceDurationID: h.duration60.ID,
		MasseurID:         h.masseur.ID,
		Date:              date,
		Time:              clock,
	}
}

func (h *harness) book(t *testing.T, p auth.Principal, date, clock string) *Appointment {
	t.Helper()
	a, err := h.svc.CreateAppointment(context.Background(), p, h.request(date, clock))
	require.NoError(t, err)
	return a
}

func statusPtr(s Status) *Status { return &s }

func strPtr(s string) *string { return &s }

func TestBookingScenarios(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	// A: a fresh booking is pending with the catalog price and duration.
	a, err := h.svc.CreateAppointment(ctx, u1, h.request("2025-03-10", "14:00"))
	require.NoError(t, err)
	assert.Equal(t, StatusPending, a.Status)
	assert.Equal(t, int64(2000), a.Price)
	assert.Equal(t, 60, a.Duration)
	assert.Equal(t, "U1", a.UserID)

	// B: the same slot for another user conflicts.
	_, err = h.svc.CreateAppointment(ctx, u2, h.request("2025-03-10", "14:00"))
	assert.ErrorIs(t, err, apperr.ErrSlotTaken)

	// C: admin confirms; the owner cannot move it back to pending.
	confirmed, err := h.svc.UpdateAppointment(ctx, admin, a.ID, Patch{Status: statusPtr(StatusConfirmed)})
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, confirmed.Status)

	_, err = h.svc.UpdateAppointment(ctx, u1, a.ID, Patch{Status: statusPtr(StatusPending)})
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	// D: the owner cancels and the slot opens up again.
	cancelled, err := h.svc.CancelAppointment(ctx, u1, a.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status)

	rebooked, err := h.svc.CreateAppointment(ctx, u3, h.request("2025-03-10", "14:00"))
	require.NoError(t, err)
	assert.Equal(t, "U3", rebooked.UserID)

	// E: cancelling once the start time has passed is refused.
	h.clock.Set(time.Date(2025, 3, 10, 14, 1, 0, 0, time.UTC))
	_, err = h.svc.CancelAppointment(ctx, u3, rebooked.ID)
	assert.ErrorIs(t, err, apperr.ErrInvalidState)

	stored, err := h.repo.GetAppointmentByID(ctx, rebooked.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, stored.Status)
}

func TestCreateAppointmentRecordsEventAndNotifies(t *testing.T) {
	h := newHarness(t)
	a := h.book(t, u1, "2025-03-10", "14:00")

	require.NoError(t, h.svc.Wait(context.Background()))
	sent := h.notifier.Events()
	require.Len(t, sent, 1)
	assert.Equal(t, a.ID, sent[0].AppointmentID)
	assert.Equal(t, "M1", sent[0].MasseurName)
	assert.Equal(t, "S1", sent[0].ServiceName)
	assert.Equal(t, "14:00", sent[0].Time)

	events := h.repo.Events()
	require.Len(t, events, 1)
	assert.Equal(t, EventAppointmentCreated, events[0].EventType)
	assert.Equal(t, a.ID, *events[0].AppointmentID)
}

func TestCreateAppointmentSurvivesNotifierFailure(t *testing.T) {
	h := newHarness(t)
	h.notifier.err = errors.New("smtp down")

	a := h.book(t, u1, "2025-03-10", "14:00")
	require.NoError(t, h.svc.Wait(context.Background()))

	stored, err := h.repo.GetAppointmentByID(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, stored.Status)
}

func TestCreateAppointmentValidation(t *testing.T) {
	h := newHarness(t)
	h.clock.Set(time.Date(2025, 3, 10, 12, 10, 0, 0, time.UTC))

	cases := []struct {
		name   string
		mutate func(*CreateRequest)
	}{
		{"missing service", func(r *CreateRequest) { r.ServiceID = uuid.Nil }},
		{"missing duration", func(r *CreateRequest) { r.ServiceDurationID = uuid.Nil }},
		{"missing masseur", func(r *CreateRequest) { r.MasseurID = uuid.Nil }},
		{"bad date", func(r *CreateRequest) { r.Date = "10/03/2025" }},
		{"non canonical date", func(r *CreateRequest) { r.Date = "2025-3-10" }},
		{"impossible date", func(r *CreateRequest) { r.Date = "2025-02-30" }},
		{"past date", func(r *CreateRequest) { r.Date = "2025-03-09" }},
		{"started today", func(r *CreateRequest) { r.Time = "12:00" }},
		{"bad time", func(r *CreateRequest) { r.Time = "2pm" }},
		{"off grid", func(r *CreateRequest) { r.Time = "14:15" }},
		{"before opening", func(r *CreateRequest) { r.Time = "08:30" }},
		{"at closing", func(r *CreateRequest) { r.Time = "21:00" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := h.request("2025-03-10", "14:00")
			tc.mutate(&req)
			_, err := h.svc.CreateAppointment(context.Background(), u1, req)
			assert.ErrorIs(t, err, apperr.ErrValidation)
		})
	}

	// a later slot on the same day is still bookable
	_, err := h.svc.CreateAppointment(context.Background(), u1, h.request("2025-03-10", "12:30"))
	assert.NoError(t, err)
}

func TestCreateAppointmentCatalogErrors(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	req := h.request("2025-03-10", "14:00")
	req.MasseurID = uuid.New()
	_, err := h.svc.CreateAppointment(ctx, u1, req)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Contains(t, err.Error(), req.MasseurID.String())

	other := catalog.Service{ID: uuid.New(), Name: "S2", Active: true}
	otherDur := catalog.ServiceDuration{ID: uuid.New(), ServiceID: other.ID, Minutes: 30, Price: 900}
	h.catalog.PutService(other)
	h.catalog.PutDuration(otherDur)

	req = h.request("2025-03-10", "14:00")
	req.ServiceDurationID = otherDur.ID
	_, err = h.svc.CreateAppointment(ctx, u1, req)
	assert.ErrorIs(t, err, apperr.ErrInvalidReference)

	assert.Empty(t, h.repo.Events())
}

func TestDifferentDurationsStillConflictOnSameStart(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.book(t, u1, "2025-03-10", "14:00")

	req := h.request("2025-03-10", "14:00")
	req.ServiceDurationID = h.duration90.ID
	_, err := h.svc.CreateAppointment(ctx, u2, req)
	assert.ErrorIs(t, err, apperr.ErrSlotTaken)

	// other masseur, same time: free
	req.MasseurID = h.otherMasseur.ID
	_, err = h.svc.CreateAppointment(ctx, u2, req)
	assert.NoError(t, err)
}

func TestConcurrentCreateHasSingleWinner(t *testing.T) {
	h := newHarness(t)

	const workers = 25
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
		others    []error
	)
	start := make(chan struct{})
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			p := auth.Principal{ID: fmt.Sprintf("user-%d", i), Role: auth.RoleUser}
			_, err := h.svc.CreateAppointment(context.Background(), p, h.request("2025-03-10", "14:00"))

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, apperr.ErrSlotTaken):
				conflicts++
			default:
				others = append(others, err)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Empty(t, others)
	assert.Equal(t, 1, successes)
	assert.Equal(t, workers-1, conflicts)

	active, err := h.repo.FindAppointments(context.Background(), Filter{
		MasseurID: h.masseur.ID, Date: "2025-03-10", Statuses: ActiveStatuses,
	})
	require.NoError(t, err)
	assert.Len(t, active, 1)
}

func TestLockContentionIsSlotTaken(t *testing.T) {
	h := newHarnessWith(t, nil, busyLocker{})
	_, err := h.svc.CreateAppointment(context.Background(), u1, h.request("2025-03-10", "14:00"))
	assert.ErrorIs(t, err, apperr.ErrSlotTaken)
}

func TestGetAppointmentAccess(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	a := h.book(t, u1, "2025-03-10", "14:00")

	got, err := h.svc.GetAppointment(ctx, u1, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)

	_, err = h.svc.GetAppointment(ctx, admin, a.ID)
	assert.NoError(t, err)

	_, err = h.svc.GetAppointment(ctx, u2, a.ID)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = h.svc.GetAppointment(ctx, u1, uuid.New())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestListAppointments(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	first := h.book(t, u1, "2025-03-10", "10:00")
	h.clock.Advance(time.Minute)
	second := h.book(t, u1, "2025-03-11", "10:00")
	h.clock.Advance(time.Minute)
	third := h.book(t, u2, "2025-03-10", "11:00")
	h.clock.Advance(time.Minute)
	_, err := h.svc.UpdateAppointment(ctx, admin, second.ID, Patch{Status: statusPtr(StatusConfirmed)})
	require.NoError(t, err)

	t.Run("user sees only own, newest first", func(t *testing.T) {
		got, err := h.svc.ListAppointments(ctx, u1, ListRequest{})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, second.ID, got[0].ID)
		assert.Equal(t, first.ID, got[1].ID)
	})

	t.Run("admin sees all", func(t *testing.T) {
		got, err := h.svc.ListAppointments(ctx, admin, ListRequest{})
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, third.ID, got[0].ID)
	})

	t.Run("filters combine", func(t *testing.T) {
		got, err := h.svc.ListAppointments(ctx, admin, ListRequest{Date: "2025-03-10"})
		require.NoError(t, err)
		assert.Len(t, got, 2)

		got, err = h.svc.ListAppointments(ctx, u1, ListRequest{Status: statusPtr(StatusConfirmed)})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, second.ID, got[0].ID)

		got, err = h.svc.ListAppointments(ctx, u2, ListRequest{Status: statusPtr(StatusConfirmed)})
		require.NoError(t, err)
		assert.Empty(t, got)
		assert.NotNil(t, got)
	})

	t.Run("paging", func(t *testing.T) {
		got, err := h.svc.ListAppointments(ctx, admin, ListRequest{Limit: 1, Offset: 1})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, second.ID, got[0].ID)
	})

	t.Run("bad date", func(t *testing.T) {
		_, err := h.svc.ListAppointments(ctx, admin, ListRequest{Date: "tomorrow"})
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})
}

func TestCancelledAppointmentIsTerminal(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	a := h.book(t, u1, "2025-03-10", "14:00")

	_, err := h.svc.CancelAppointment(ctx, admin, a.ID)
	require.NoError(t, err)

	_, err = h.svc.UpdateAppointment(ctx, admin, a.ID, Patch{Status: statusPtr(StatusConfirmed)})
	assert.ErrorIs(t, err, apperr.ErrAlreadyTerminal)

	_, err = h.svc.CancelAppointment(ctx, u1, a.ID)
	assert.ErrorIs(t, err, apperr.ErrAlreadyTerminal)

	_, err = h.svc.UpdateAppointment(ctx, admin, a.ID, Patch{Time: strPtr("15:00")})
	assert.ErrorIs(t, err, apperr.ErrAlreadyTerminal)

	stored, err := h.repo.GetAppointmentByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, stored.Status)
}

func TestUpdateEventsAndTimestamps(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	a := h.book(t, u1, "2025-03-10", "14:00")

	h.clock.Advance(time.Hour)
	confirmed, err := h.svc.UpdateAppointment(ctx, admin, a.ID, Patch{Status: statusPtr(StatusConfirmed)})
	require.NoError(t, err)
	assert.Equal(t, a.CreatedAt, confirmed.CreatedAt)
	assert.Equal(t, h.clock.Now(), confirmed.UpdatedAt)

	h.clock.Advance(time.Hour)
	_, err = h.svc.CancelAppointment(ctx, u1, a.ID)
	require.NoError(t, err)

	var types []string
	for _, ev := range h.repo.Events() {
		types = append(types, ev.EventType)
	}
	assert.Equal(t, []string{EventAppointmentCreated, EventAppointmentUpdated, EventAppointmentCancelled}, types)
}

func TestAdminSameStatusIsNoop(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	a := h.book(t, u1, "2025-03-10", "14:00")

	h.clock.Advance(time.Hour)
	got, err := h.svc.UpdateAppointment(ctx, admin, a.ID, Patch{Status: statusPtr(StatusPending)})
	require.NoError(t, err)
	assert.Equal(t, a.UpdatedAt, got.UpdatedAt)
	assert.Len(t, h.repo.Events(), 1)
}

func TestUpdateAppointmentPatchValidation(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	a := h.book(t, u1, "2025-03-10", "14:00")

	_, err := h.svc.UpdateAppointment(ctx, admin, a.ID, Patch{})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = h.svc.UpdateAppointment(ctx, admin, a.ID, Patch{
		Status: statusPtr(StatusCancelled),
		Time:   strPtr("15:00"),
	})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = h.svc.UpdateAppointment(ctx, admin, uuid.New(), Patch{Status: statusPtr(StatusConfirmed)})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = h.svc.UpdateAppointment(ctx, u2, a.ID, Patch{Status: statusPtr(StatusCancelled)})
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestOwnerCannotEditFields(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	a := h.book(t, u1, "2025-03-10", "14:00")

	_, err := h.svc.UpdateAppointment(ctx, u1, a.ID, Patch{Time: strPtr("15:00")})
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = h.svc.UpdateAppointment(ctx, u1, a.ID, Patch{Status: statusPtr(StatusConfirmed)})
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestAdminMovesAppointment(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	a := h.book(t, u1, "2025-03-10", "14:00")
	blocker := h.book(t, u2, "2025-03-10", "15:00")

	_, err := h.svc.UpdateAppointment(ctx, admin, a.ID, Patch{Time: strPtr("15:00")})
	assert.ErrorIs(t, err, apperr.ErrSlotTaken)

	// its own slot is always allowed
	same, err := h.svc.UpdateAppointment(ctx, admin, a.ID, Patch{Time: strPtr("14:00")})
	require.NoError(t, err)
	assert.Equal(t, "14:00", same.Time.String())

	moved, err := h.svc.UpdateAppointment(ctx, admin, a.ID, Patch{
		MasseurID: &h.otherMasseur.ID,
		Date:      strPtr("2025-03-11"),
		Time:      strPtr("16:30"),
	})
	require.NoError(t, err)
	assert.Equal(t, h.otherMasseur.ID, moved.MasseurID)
	assert.Equal(t, "2025-03-11", moved.Date)
	assert.Equal(t, "16:30", moved.Time.String())
	assert.Equal(t, int64(2000), moved.Price)

	// the old slot is free again
	h.book(t, u3, "2025-03-10", "14:00")

	_, err = h.svc.UpdateAppointment(ctx, admin, blocker.ID, Patch{Time: strPtr("14:10")})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = h.svc.UpdateAppointment(ctx, admin, blocker.ID, Patch{Date: strPtr("2025-02-28")})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = h.svc.UpdateAppointment(ctx, admin, blocker.ID, Patch{MasseurID: ptrUUID(uuid.New())})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func ptrUUID(id uuid.UUID) *uuid.UUID { return &id }

func TestDurationChangeRepinsPrice(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	a := h.book(t, u1, "2025-03-10", "14:00")

	// catalog price changes do not touch existing bookings
	changed := h.duration60
	changed.Price = 9999
	h.catalog.PutDuration(changed)

	kept, err := h.svc.UpdateAppointment(ctx, admin, a.ID, Patch{MasseurID: &h.otherMasseur.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(2000), kept.Price)

	repinned, err := h.svc.UpdateAppointment(ctx, admin, a.ID, Patch{ServiceDurationID: &h.duration90.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(2800), repinned.Price)
	assert.Equal(t, 90, repinned.Duration)
}

// racingRepo cancels the appointment behind the service's back right before
// the service writes, the way a concurrent request would.
type racingRepo struct {
	*MemoryRepository
	once sync.Once
}

func (r *racingRepo) UpdateAppointment(ctx context.Context, next *Appointment, expected Status) (*Appointment, error) {
	r.once.Do(func() {
		current, err := r.MemoryRepository.GetAppointmentByID(ctx, next.ID)
		if err != nil {
			return
		}
		cancelled := *current
		cancelled.Status = StatusCancelled
		_, _ = r.MemoryRepository.UpdateAppointment(ctx, &cancelled, current.Status)
	})
	return r.MemoryRepository.UpdateAppointment(ctx, next, expected)
}

func TestConcurrentCancelWinsOverConfirm(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryRepository()
	h := newHarnessWith(t, &racingRepo{MemoryRepository: mem}, redisclient.NoopLocker{})
	h.repo = mem

	a := h.book(t, u1, "2025-03-10", "14:00")

	_, err := h.svc.UpdateAppointment(ctx, admin, a.ID, Patch{Status: statusPtr(StatusConfirmed)})
	assert.ErrorIs(t, err, apperr.ErrAlreadyTerminal)

	stored, err := mem.GetAppointmentByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, stored.Status)
}

func TestAvailability(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.book(t, u1, "2025-03-10", "09:30")
	cancelled := h.book(t, u2, "2025-03-10", "10:00")
	_, err := h.svc.CancelAppointment(ctx, u2, cancelled.ID)
	require.NoError(t, err)

	slots, err := h.svc.Availability(ctx, h.masseur.ID, "2025-03-10")
	require.NoError(t, err)
	require.Len(t, slots, 24)
	assert.Equal(t, "09:00", slots[0].Time.String())
	assert.False(t, slots[0].Taken)
	assert.True(t, slots[1].Taken)
	assert.False(t, slots[2].Taken)

	_, err = h.svc.Availability(ctx, uuid.New(), "2025-03-10")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = h.svc.Availability(ctx, h.masseur.ID, "10.03.2025")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}
