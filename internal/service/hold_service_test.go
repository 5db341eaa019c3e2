package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/reservation-service/internal/docstore"
	"github.com/spec-kit/reservation-service/internal/docstore/memory"
	"github.com/spec-kit/reservation-service/internal/domain"
	"github.com/spec-kit/reservation-service/internal/repository"
)

func holdFixture(t *testing.T, now time.Time, loc *time.Location) (*memory.Store, *HoldService) {
	t.Helper()
	store := memory.New()
	store.Seed(docstore.CollectionTables,
		docstore.Document{"id": "T4", "capacity": 4, "status": "available"},
		docstore.Document{"id": "T6", "capacity": 6, "status": "available"},
	)
	svc := NewHoldService(HoldDependencies{
		TableRepo:       repository.NewTableRepository(store),
		ReservationRepo: repository.NewReservationRepository(store),
		Location:        loc,
		Now:             func() time.Time { return now },
	})
	return store, svc
}

func seedHold(store *memory.Store, table, start, status string) {
	store.Seed(docstore.CollectionReservations, docstore.Document{
		"reservation_date": "2025-03-14", "start_time": start, "status": status, "table_id": table, "party_size": 2,
	})
}

func tableStatus(t *testing.T, store *memory.Store, id string) domain.TableStatus {
	t.Helper()
	tbl, err := repository.NewTableRepository(store).GetByID(context.Background(), id)
	require.NoError(t, err)
	return tbl.Status
}

func TestHoldApply_InsideWindow(t *testing.T) {
	store, svc := holdFixture(t, time.Date(2025, 3, 14, 18, 30, 0, 0, time.UTC), time.UTC)
	seedHold(store, "T4", "19:00", "booked")
	seedHold(store, "T4", "19:30", "seated")
	seedHold(store, "T6", "19:00", "canceled")

	report, err := svc.Apply(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.Applied, "one update per table")
	require.Len(t, report.Results, 1)
	assert.Equal(t, "T4", report.Results[0].Target)
	assert.Equal(t, "18:30", report.Now)
	assert.Equal(t, domain.TableStatusReserved, tableStatus(t, store, "T4"))
	assert.Equal(t, domain.TableStatusAvailable, tableStatus(t, store, "T6"))
}

func TestHoldApply_OutsideWindow(t *testing.T) {
	store, svc := holdFixture(t, time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC), time.UTC)
	seedHold(store, "T4", "19:00", "booked")

	report, err := svc.Apply(context.Background())
	require.NoError(t, err)
	assert.Zero(t, report.Applied)
	assert.Empty(t, report.Results)
	assert.Equal(t, domain.TableStatusAvailable, tableStatus(t, store, "T4"))
}

func TestHoldApply_UsesRestaurantTimeZone(t *testing.T) {
	zone := time.FixedZone("EST", -5*60*60)
	store, svc := holdFixture(t, time.Date(2025, 3, 15, 0, 30, 0, 0, time.UTC), zone)
	seedHold(store, "T4", "19:00", "booked")

	report, err := svc.Apply(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2025-03-14", report.Date)
	assert.Equal(t, 1, report.Applied)
}

func TestHoldApply_TableFailuresAreIndependent(t *testing.T) {
	store, svc := holdFixture(t, time.Date(2025, 3, 14, 18, 30, 0, 0, time.UTC), time.UTC)
	seedHold(store, "T4", "19:00", "booked")
	seedHold(store, "GONE", "19:00", "booked")

	report, err := svc.Apply(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Applied)
	require.Len(t, report.Results, 2)

	byTarget := map[string]Result{}
	for _, r := range report.Results {
		byTarget[r.Target] = r
	}
	assert.True(t, byTarget["T4"].OK)
	assert.False(t, byTarget["GONE"].OK)
	assert.NotEmpty(t, byTarget["GONE"].Error)
}

func TestHoldApply_ListFailureIsReturned(t *testing.T) {
	store, svc := holdFixture(t, time.Date(2025, 3, 14, 18, 30, 0, 0, time.UTC), time.UTC)
	store.Fail("list", docstore.CollectionReservations, errors.New("timeout"))

	_, err := svc.Apply(context.Background())
	assert.Error(t, err)
}
