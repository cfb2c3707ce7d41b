package repo_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/fleet-ledger/internal/domain"
	"github.com/pkordes/fleet-ledger/internal/repo"
)

// tripFixture returns a domain.Trip with sensible defaults for use in tests.
// Callers can override individual fields after calling this function.
func tripFixture(day int, startKM, endKM int64) domain.Trip {
	return domain.Trip{
		ID:              uuid.New(),
		Date:            domain.NewDate(2025, time.June, day),
		Vehicle:         "A",
		StartKM:         startKM,
		EndKM:           endKM,
		AccumulatedKM:   endKM,
		Driver:          "Cliffy",
		Route:           domain.Route{"Ajax", "King"},
		Remarks:         "Test remarks",
		PlateAtTripTime: "CBXT 101",
	}
}

// testSheetRepoContract runs the behaviour every SheetRepo backend shares.
// r must start empty.
func testSheetRepoContract(t *testing.T, r repo.SheetRepo) {
	ctx := context.Background()

	t.Run("empty load", func(t *testing.T) {
		trips, err := r.LoadTrips(ctx)
		require.NoError(t, err)
		assert.Empty(t, trips)

		vehicles, err := r.LoadVehicles(ctx)
		require.NoError(t, err)
		assert.Empty(t, vehicles)
	})

	t.Run("trips round trip in order", func(t *testing.T) {
		later := tripFixture(9, 100, 150)
		earlier := tripFixture(2, 0, 100)
		event := tripFixture(5, 0, 0)
		event.Route = domain.Route{domain.FleetChangeMarker}
		event.EditedBy = "admin"
		event.FleetChange = "N/A -> CBXT 101"
		undated := tripFixture(1, 5, 6)
		undated.Date = domain.Date{}
		want := []domain.Trip{later, earlier, event, undated}

		require.NoError(t, r.SaveTrips(ctx, want))
		got, err := r.LoadTrips(ctx)

		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("save replaces the whole collection", func(t *testing.T) {
		keep := tripFixture(3, 10, 20)

		require.NoError(t, r.SaveTrips(ctx, []domain.Trip{keep}))
		got, err := r.LoadTrips(ctx)

		require.NoError(t, err)
		assert.Equal(t, []domain.Trip{keep}, got)

		require.NoError(t, r.SaveTrips(ctx, nil))
		got, err = r.LoadTrips(ctx)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("vehicles round trip", func(t *testing.T) {
		plate := "CBXT 101"
		want := []domain.Vehicle{
			{ID: "B", LicensePlate: &plate, Comments: "new lease"},
			{ID: "A"},
		}

		require.NoError(t, r.SaveVehicles(ctx, want))
		got, err := r.LoadVehicles(ctx)

		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("vehicles and trips are independent", func(t *testing.T) {
		trip := tripFixture(4, 0, 1)
		require.NoError(t, r.SaveTrips(ctx, []domain.Trip{trip}))
		require.NoError(t, r.SaveVehicles(ctx, []domain.Vehicle{{ID: "C"}}))

		got, err := r.LoadTrips(ctx)
		require.NoError(t, err)
		assert.Equal(t, []domain.Trip{trip}, got)
	})
}
