package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/reservation-service/internal/docstore"
	"github.com/spec-kit/reservation-service/internal/docstore/memory"
	"github.com/spec-kit/reservation-service/internal/domain"
	"github.com/spec-kit/reservation-service/internal/events"
	"github.com/spec-kit/reservation-service/internal/lock"
	"github.com/spec-kit/reservation-service/internal/repository"
	"github.com/spec-kit/reservation-service/internal/seating"
	"github.com/spec-kit/reservation-service/pkg/util/errorutil"
)

type fixture struct {
	store    *memory.Store
	locker   *lock.MemoryLocker
	events   []events.Event
	svc      *ReservationService
	resRepo  repository.ReservationRepository
	dispatch events.Dispatcher
}

func newFixture(t *testing.T, policy seating.FallbackPolicy, tables ...docstore.Document) *fixture {
	t.Helper()
	f := &fixture{store: memory.New(), locker: lock.NewMemoryLocker()}
	f.store.Seed(docstore.CollectionTables, tables...)
	f.dispatch = events.NewInMemoryDispatcher(nil)
	for _, et := range []events.EventType{events.EventReservationCreated, events.EventStaffingRequested, events.EventTableHeld} {
		f.dispatch.Subscribe(et, func(_ context.Context, e events.Event) error {
			f.events = append(f.events, e)
			return nil
		})
	}
	f.resRepo = repository.NewReservationRepository(f.store)
	f.svc = f.build(policy, f.resRepo)
	return f
}

func (f *fixture) build(policy seating.FallbackPolicy, reservations repository.ReservationRepository) *ReservationService {
	staffing := NewStaffingService(StaffingDependencies{
		RequestRepo: repository.NewStaffingRequestRepository(f.store),
		OnCallRepo:  repository.NewOnCallRepository(f.store),
		Dispatcher:  f.dispatch,
	})
	return NewReservationService(ReservationDependencies{
		TableRepo:       repository.NewTableRepository(f.store),
		ReservationRepo: reservations,
		Staffing:        staffing,
		Locker:          f.locker,
		Dispatcher:      f.dispatch,
		FallbackPolicy:  policy,
	})
}

func (f *fixture) eventTypes() []events.EventType {
	out := make([]events.EventType, 0, len(f.events))
	for _, e := range f.events {
		out = append(out, e.Type)
	}
	return out
}

func standardTables() []docstore.Document {
	return []docstore.Document{
		{"id": "T6", "capacity": 6, "section": "patio"},
		{"id": "T2", "capacity": 2, "section": "main"},
		{"id": "T4", "capacity": 4, "section": "main"},
	}
}

func booking(party int, name string) ReservationCreateInput {
	return ReservationCreateInput{
		Date:         "2025-03-14",
		StartTime:    "19:00",
		PartySize:    party,
		CustomerName: name,
		Source:       "web",
	}
}

func seedReservation(store *memory.Store, table, start string) {
	store.Seed(docstore.CollectionReservations, docstore.Document{
		"reservation_date": "2025-03-14",
		"start_time":       start,
		"party_size":       2,
		"customer_name":    "Existing",
		"status":           "booked",
		"source":           "phone",
		"table_id":         table,
		"block_minutes":    120,
	})
}

func domainErr(t *testing.T, err error) *errorutil.DomainError {
	t.Helper()
	var de *errorutil.DomainError
	require.ErrorAs(t, err, &de)
	return de
}

func TestCreate_AssignsSmallestFittingTable(t *testing.T) {
	f := newFixture(t, seating.FallbackSeatAnyway, standardTables()...)

	out, err := f.svc.Create(context.Background(), booking(3, "Ada"))
	require.NoError(t, err)

	assert.False(t, out.Duplicate)
	assert.Equal(t, "T4", out.Reservation.TableID)
	assert.Equal(t, "main", out.Reservation.Section, "section back-filled from table")
	assert.Equal(t, domain.ReservationStatusBooked, out.Reservation.Status)
	assert.Equal(t, 120, out.Reservation.BlockMinutes)
	assert.Nil(t, out.Staffing)
	assert.Equal(t, 1, f.store.Count(docstore.CollectionReservations))
	assert.Equal(t, []events.EventType{events.EventReservationCreated}, f.eventTypes())
}

func TestCreate_OversizeEscalatesToHost(t *testing.T) {
	f := newFixture(t, seating.FallbackSeatAnyway, standardTables()...)

	out, err := f.svc.Create(context.Background(), booking(8, "Big Party"))
	require.NoError(t, err)

	assert.Empty(t, out.Reservation.TableID)
	assert.Contains(t, out.Reservation.Tags, domain.TagOversize)
	assert.Equal(t, seating.OutcomeOversize, out.Decision.Outcome)
	require.NotNil(t, out.Staffing)
	assert.True(t, out.Staffing.OK)

	requests, err := repository.NewStaffingRequestRepository(f.store).List(context.Background(), repository.StaffingRequestFilter{})
	require.NoError(t, err)
	require.Len(t, requests, 1)
	assert.Equal(t, domain.StaffRoleHost, requests[0].Role)
	assert.Equal(t, 1, requests[0].Quantity)
	assert.Equal(t, domain.StaffingReasonOversize, requests[0].Reason)
	assert.Equal(t, "open", requests[0].Status)
	assert.Equal(t, []string{"reservation:" + out.Reservation.ID}, requests[0].Tags)
	assert.Equal(t, []events.EventType{events.EventReservationCreated, events.EventStaffingRequested}, f.eventTypes())
}

func TestCreate_OversizeFallsBackToOnCallServer(t *testing.T) {
	f := newFixture(t, seating.FallbackSeatAnyway, standardTables()...)
	f.store.Seed(docstore.CollectionOnCall,
		docstore.Document{"date": "2025-03-14", "role": "host", "available": false},
		docstore.Document{"date": "2025-03-14", "role": "server", "available": true},
	)
	for _, table := range []string{"A", "B", "C", "D", "E", "F"} {
		seedReservation(f.store, table, "18:30")
	}

	out, err := f.svc.Create(context.Background(), booking(9, "Huge"))
	require.NoError(t, err)
	require.NotNil(t, out.Staffing)
	require.True(t, out.Staffing.OK)

	req, ok := out.Staffing.Detail.(*domain.StaffingRequest)
	require.True(t, ok)
	assert.Equal(t, domain.StaffRoleServer, req.Role)
	assert.Equal(t, 2, req.Quantity, "six overlapping reservations exceed the busy threshold")
}

func TestCreate_SeatAnywayFallback(t *testing.T) {
	f := newFixture(t, seating.FallbackSeatAnyway, docstore.Document{"id": "T1", "capacity": 4})
	seedReservation(f.store, "T1", "19:00")

	input := booking(2, "Late")
	input.StartTime = "20:00"
	out, err := f.svc.Create(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, "T1", out.Reservation.TableID)
	assert.True(t, out.Decision.Fallback)
	assert.NotContains(t, out.Reservation.Tags, domain.TagNoTableAvailable)
	assert.Nil(t, out.Staffing)
}

func TestCreate_StrictPolicyLeavesUnassigned(t *testing.T) {
	f := newFixture(t, seating.FallbackStrict, docstore.Document{"id": "T1", "capacity": 4})
	seedReservation(f.store, "T1", "19:00")

	input := booking(2, "Late")
	input.StartTime = "20:00"
	out, err := f.svc.Create(context.Background(), input)
	require.NoError(t, err)

	assert.Empty(t, out.Reservation.TableID)
	assert.Contains(t, out.Reservation.Tags, domain.TagNoTableAvailable)
	require.NotNil(t, out.Staffing)
	req := out.Staffing.Detail.(*domain.StaffingRequest)
	assert.Equal(t, domain.StaffRoleServer, req.Role)
	assert.Equal(t, domain.StaffingReasonNoTable, req.Reason)
}

func TestCreate_DuplicateReturnsExisting(t *testing.T) {
	f := newFixture(t, seating.FallbackSeatAnyway, standardTables()...)

	first, err := f.svc.Create(context.Background(), booking(2, "Grace Hopper"))
	require.NoError(t, err)

	again := booking(2, "GRACE hopper")
	second, err := f.svc.Create(context.Background(), again)
	require.NoError(t, err)

	assert.True(t, second.Duplicate)
	assert.Equal(t, first.Reservation.ID, second.Reservation.ID)
	assert.Nil(t, second.Decision)
	assert.Equal(t, 1, f.store.Count(docstore.CollectionReservations))

	other := booking(2, "Grace Hopper")
	other.Source = "phone"
	third, err := f.svc.Create(context.Background(), other)
	require.NoError(t, err)
	assert.False(t, third.Duplicate)
	assert.Equal(t, 2, f.store.Count(docstore.CollectionReservations))
}

func TestCreate_ValidatesRequiredFields(t *testing.T) {
	f := newFixture(t, seating.FallbackSeatAnyway, standardTables()...)

	_, err := f.svc.Create(context.Background(), ReservationCreateInput{StartTime: "19:00"})
	de := domainErr(t, err)
	assert.Equal(t, http.StatusBadRequest, de.HTTPStatus)
	assert.ElementsMatch(t, []string{"reservation_date", "party_size", "customer_name"}, de.Details["fields"])

	bad := booking(2, "X")
	bad.StartTime = "7pm"
	_, err = f.svc.Create(context.Background(), bad)
	assert.Equal(t, http.StatusBadRequest, domainErr(t, err).HTTPStatus)
	assert.Zero(t, f.store.Count(docstore.CollectionReservations))
}

func TestCreate_NormalizesInput(t *testing.T) {
	f := newFixture(t, seating.FallbackSeatAnyway, standardTables()...)

	input := booking(2, "  Ada  ")
	input.StartTime = "7:05"
	input.Date = "2025-03-14T00:00:00Z"
	input.Source = "fax"
	input.Tags = []string{"vip", "VIP", " "}
	out, err := f.svc.Create(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, "07:05", out.Reservation.StartTime)
	assert.Equal(t, "2025-03-14", out.Reservation.Date)
	assert.Equal(t, domain.SourceOpenTable, out.Reservation.Source)
	assert.Equal(t, "Ada", out.Reservation.CustomerName)
	assert.Equal(t, []string{"vip"}, out.Reservation.Tags)
}

func TestCreate_LockHeldIsRetryableConflict(t *testing.T) {
	f := newFixture(t, seating.FallbackSeatAnyway, standardTables()...)
	release, err := f.locker.Acquire(context.Background(), "T2", "2025-03-14", time.Minute)
	require.NoError(t, err)
	defer func() { _ = release(context.Background()) }()

	_, err = f.svc.Create(context.Background(), booking(2, "Racer"))
	de := domainErr(t, err)
	assert.Equal(t, http.StatusConflict, de.HTTPStatus)
	assert.Equal(t, true, de.Details["retryable"])
	assert.Zero(t, f.store.Count(docstore.CollectionReservations))
}

// staleSnapshot hides same-day reservations from the initial read, as if another
// intake wrote them after the snapshot was taken.
type staleSnapshot struct {
	repository.ReservationRepository
}

func (staleSnapshot) ListByDate(context.Context, string) ([]domain.Reservation, error) {
	return nil, nil
}

func TestCreate_RevalidationDetectsConcurrentBooking(t *testing.T) {
	f := newFixture(t, seating.FallbackSeatAnyway, standardTables()...)
	seedReservation(f.store, "T2", "18:00")
	svc := f.build(seating.FallbackSeatAnyway, staleSnapshot{f.resRepo})

	_, err := svc.Create(context.Background(), booking(2, "Racer"))
	de := domainErr(t, err)
	assert.Equal(t, http.StatusConflict, de.HTTPStatus)
	assert.Equal(t, true, de.Details["retryable"])
	assert.Equal(t, 1, f.store.Count(docstore.CollectionReservations))

	again, err := f.locker.Acquire(context.Background(), "T2", "2025-03-14", time.Minute)
	require.NoError(t, err, "lock released after failed revalidation")
	require.NoError(t, again(context.Background()))
}

type failingDuplicateLookup struct {
	repository.ReservationRepository
}

func (failingDuplicateLookup) FindDuplicate(context.Context, repository.DuplicateKey) (*domain.Reservation, error) {
	return nil, errors.New("store unreachable")
}

func TestCreate_DuplicateLookupFailsOpen(t *testing.T) {
	f := newFixture(t, seating.FallbackSeatAnyway, standardTables()...)
	svc := f.build(seating.FallbackSeatAnyway, failingDuplicateLookup{f.resRepo})

	out, err := svc.Create(context.Background(), booking(2, "Ada"))
	require.NoError(t, err)
	assert.False(t, out.Duplicate)
	assert.Equal(t, 1, f.store.Count(docstore.CollectionReservations))
}

func TestCreate_StaffingFailureDoesNotFailIntake(t *testing.T) {
	f := newFixture(t, seating.FallbackSeatAnyway, standardTables()...)
	f.store.Fail("create", docstore.CollectionStaffingRequests, &docstore.Error{Op: "create", Status: http.StatusForbidden, Message: "denied"})

	out, err := f.svc.Create(context.Background(), booking(12, "Banquet"))
	require.NoError(t, err)
	require.NotNil(t, out.Staffing)
	assert.False(t, out.Staffing.OK)
	assert.Contains(t, out.Staffing.Error, "denied")
	assert.Equal(t, 1, f.store.Count(docstore.CollectionReservations))
}

func TestCreate_StoreErrorsSurfaceWithStatus(t *testing.T) {
	f := newFixture(t, seating.FallbackSeatAnyway, standardTables()...)
	f.store.Fail("create", docstore.CollectionReservations, &docstore.Error{
		Op: "create", Collection: docstore.CollectionReservations, Status: http.StatusBadRequest,
		Message: "Failed to create record.", Data: map[string]any{"party_size": "invalid"},
	})

	_, err := f.svc.Create(context.Background(), booking(2, "Ada"))
	de := domainErr(t, err)
	assert.Equal(t, http.StatusBadRequest, de.HTTPStatus)
	assert.Equal(t, "UPSTREAM_ERROR", de.Code)
	assert.Contains(t, de.Details, "party_size")

	f.store.Fail("list", docstore.CollectionTables, errors.New("connection reset"))
	_, err = f.svc.Create(context.Background(), booking(2, "Bob"))
	assert.Equal(t, http.StatusInternalServerError, domainErr(t, err).HTTPStatus)
}

func TestUpdateStatus(t *testing.T) {
	f := newFixture(t, seating.FallbackSeatAnyway, standardTables()...)
	out, err := f.svc.Create(context.Background(), booking(2, "Ada"))
	require.NoError(t, err)

	updated, err := f.svc.UpdateStatus(context.Background(), &domain.StaffMember{ID: "s1"}, out.Reservation.ID, "Cancelled")
	require.NoError(t, err)
	assert.Equal(t, domain.ReservationStatusCanceled, updated.Status)

	_, err = f.svc.UpdateStatus(context.Background(), nil, out.Reservation.ID, "vanished")
	assert.Equal(t, http.StatusBadRequest, domainErr(t, err).HTTPStatus)

	_, err = f.svc.UpdateStatus(context.Background(), nil, "missing", "seated")
	assert.Equal(t, http.StatusNotFound, domainErr(t, err).HTTPStatus)

	day, err := f.svc.ListByDate(context.Background(), "2025-03-14")
	require.NoError(t, err)
	assert.Len(t, day, 1)

	_, err = f.svc.ListByDate(context.Background(), "tomorrow")
	assert.Equal(t, http.StatusBadRequest, domainErr(t, err).HTTPStatus)
}

func TestCreate_CanceledReservationDoesNotBlock(t *testing.T) {
	f := newFixture(t, seating.FallbackSeatAnyway, docstore.Document{"id": "T1", "capacity": 4})
	f.store.Seed(docstore.CollectionReservations, docstore.Document{
		"reservation_date": "2025-03-14", "start_time": "19:00", "status": "CANCELED", "table_id": "T1",
	})

	out, err := f.svc.Create(context.Background(), booking(2, "Ada"))
	require.NoError(t, err)
	assert.Equal(t, "T1", out.Reservation.TableID)
	assert.False(t, out.Decision.Fallback)
}
