package service_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/fleet-ledger/internal/domain"
	"github.com/pkordes/fleet-ledger/internal/ledger"
	"github.com/pkordes/fleet-ledger/internal/repo"
	"github.com/pkordes/fleet-ledger/internal/service"
)

// mockSheetRepo is a hand-written test double for repo.SheetRepo.
// Each method is a function field; set only the ones your test needs.
// Unset save fields succeed and record what they were given.
type mockSheetRepo struct {
	loadTrips    func(ctx context.Context) ([]domain.Trip, error)
	saveTrips    func(ctx context.Context, trips []domain.Trip) error
	loadVehicles func(ctx context.Context) ([]domain.Vehicle, error)
	saveVehicles func(ctx context.Context, vehicles []domain.Vehicle) error

	savedTrips    [][]domain.Trip
	savedVehicles [][]domain.Vehicle
}

func (m *mockSheetRepo) LoadTrips(ctx context.Context) ([]domain.Trip, error) {
	if m.loadTrips == nil {
		return nil, nil
	}
	return m.loadTrips(ctx)
}
func (m *mockSheetRepo) SaveTrips(ctx context.Context, trips []domain.Trip) error {
	m.savedTrips = append(m.savedTrips, trips)
	if m.saveTrips == nil {
		return nil
	}
	return m.saveTrips(ctx, trips)
}
func (m *mockSheetRepo) LoadVehicles(ctx context.Context) ([]domain.Vehicle, error) {
	if m.loadVehicles == nil {
		return nil, nil
	}
	return m.loadVehicles(ctx)
}
func (m *mockSheetRepo) SaveVehicles(ctx context.Context, vehicles []domain.Vehicle) error {
	m.savedVehicles = append(m.savedVehicles, vehicles)
	if m.saveVehicles == nil {
		return nil
	}
	return m.saveVehicles(ctx, vehicles)
}

// compile-time check: mockSheetRepo must satisfy repo.SheetRepo.
var _ repo.SheetRepo = (*mockSheetRepo)(nil)

// ---- helpers ---------------------------------------------------------------

var fixedNow = time.Date(2024, time.March, 15, 9, 30, 0, 0, time.UTC)

func newLedgerService(t *testing.T, r repo.SheetRepo) (*service.LedgerService, *bytes.Buffer) {
	t.Helper()
	var logs bytes.Buffer
	engine := ledger.NewEngine(domain.Catalog{Vehicles: []string{"A", "B"}})
	svc := service.NewLedgerService(r, engine,
		service.WithClock(func() time.Time { return fixedNow }),
		service.WithLogger(slog.New(slog.NewJSONHandler(&logs, nil))),
	)
	svc.Load(context.Background())
	return svc, &logs
}

func tripInput(day int, vehicle string, start, end int64) domain.TripInput {
	return domain.TripInput{
		Date:    domain.NewDate(2024, time.March, day),
		Vehicle: vehicle,
		StartKM: start,
		EndKM:   end,
		Route:   domain.Route{"Ajax"},
	}
}

var errBackendDown = errors.New("backend down")

// ---- Load ------------------------------------------------------------------

func TestLedgerService_Load(t *testing.T) {
	plate := "CBXT 101"
	stored := domain.Trip{ID: uuid.New(), Date: domain.NewDate(2024, time.March, 1), Vehicle: "A", EndKM: 10, AccumulatedKM: 10}
	r := &mockSheetRepo{
		loadTrips:    func(context.Context) ([]domain.Trip, error) { return []domain.Trip{stored}, nil },
		loadVehicles: func(context.Context) ([]domain.Vehicle, error) { return []domain.Vehicle{{ID: "A", LicensePlate: &plate}}, nil },
	}

	svc, _ := newLedgerService(t, r)

	assert.Equal(t, []domain.Trip{stored}, svc.Trips(context.Background()))
	assert.Len(t, svc.Vehicles(context.Background()), 1)
}

func TestLedgerService_Load_RecomputesStaleTotals(t *testing.T) {
	stored := []domain.Trip{
		{ID: uuid.New(), Date: domain.NewDate(2024, time.March, 2), Vehicle: "A", StartKM: 100, EndKM: 150, AccumulatedKM: 999},
		{ID: uuid.New(), Date: domain.NewDate(2024, time.March, 1), Vehicle: "A", StartKM: 0, EndKM: 100, AccumulatedKM: 100},
		{ID: uuid.New(), Date: domain.NewDate(2024, time.March, 1), Vehicle: "B", StartKM: 0, EndKM: 0, AccumulatedKM: 40},
	}
	r := &mockSheetRepo{
		loadTrips: func(context.Context) ([]domain.Trip, error) { return stored, nil },
	}

	svc, _ := newLedgerService(t, r)

	trips := svc.Trips(context.Background())
	require.Len(t, trips, 3)
	assert.Equal(t, int64(150), trips[0].AccumulatedKM)
	assert.Equal(t, int64(100), trips[1].AccumulatedKM)
	assert.Zero(t, trips[2].AccumulatedKM, "coerced distances leave no stale total")
	assert.Empty(t, r.savedTrips, "load never writes back")
}

func TestLedgerService_Load_FailureStartsEmpty(t *testing.T) {
	r := &mockSheetRepo{
		loadTrips: func(context.Context) ([]domain.Trip, error) { return nil, errBackendDown },
		loadVehicles: func(context.Context) ([]domain.Vehicle, error) {
			return []domain.Vehicle{{ID: "B"}}, nil
		},
	}

	svc, logs := newLedgerService(t, r)

	assert.Empty(t, svc.Trips(context.Background()))
	assert.Len(t, svc.Vehicles(context.Background()), 1, "vehicles load independently")
	assert.Contains(t, logs.String(), "trips failed to load")
	assert.Contains(t, logs.String(), "backend down")
}

// ---- mutations -------------------------------------------------------------

func TestLedgerService_AddTrip_SavesFullCollection(t *testing.T) {
	r := &mockSheetRepo{}
	svc, _ := newLedgerService(t, r)
	ctx := context.Background()

	first, err := svc.AddTrip(ctx, tripInput(1, "A", 0, 100))
	require.NoError(t, err)
	second, err := svc.AddTrip(ctx, tripInput(2, "A", 100, 250))
	require.NoError(t, err)

	assert.True(t, second.Durable)
	assert.Empty(t, second.Warning)
	assert.Equal(t, int64(250), second.Trip.AccumulatedKM)
	require.Len(t, r.savedTrips, 2)
	assert.Equal(t, []uuid.UUID{first.Trip.ID, second.Trip.ID}, ids(r.savedTrips[1]))
}

func TestLedgerService_AddTrip_ValidationSkipsSave(t *testing.T) {
	r := &mockSheetRepo{}
	svc, _ := newLedgerService(t, r)

	_, err := svc.AddTrip(context.Background(), tripInput(1, "A", 100, 50))

	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Empty(t, r.savedTrips)
	assert.Empty(t, svc.Trips(context.Background()))
}

func TestLedgerService_AddTrip_SaveFailureKeepsChange(t *testing.T) {
	r := &mockSheetRepo{saveTrips: func(context.Context, []domain.Trip) error { return errBackendDown }}
	svc, logs := newLedgerService(t, r)

	res, err := svc.AddTrip(context.Background(), tripInput(1, "A", 0, 100))

	require.NoError(t, err, "a failed save is a warning, not an error")
	assert.False(t, res.Durable)
	assert.Contains(t, res.Warning, "backend down")
	assert.Len(t, svc.Trips(context.Background()), 1, "in-memory change stands")
	assert.Contains(t, logs.String(), "save failed")
}

func TestLedgerService_UpdateTrip(t *testing.T) {
	r := &mockSheetRepo{}
	svc, _ := newLedgerService(t, r)
	ctx := context.Background()
	added, err := svc.AddTrip(ctx, tripInput(1, "A", 0, 100))
	require.NoError(t, err)

	in := tripInput(1, "B", 0, 80)
	in.EditedBy = "admin"
	res, err := svc.UpdateTrip(ctx, added.Trip.ID, in)

	require.NoError(t, err)
	assert.Equal(t, "B", res.Trip.Vehicle)
	assert.Equal(t, "admin", res.Trip.EditedBy)
	assert.Equal(t, int64(80), res.Trip.AccumulatedKM)
	assert.Len(t, r.savedTrips, 2)
}

func TestLedgerService_UpdateTrip_NotFound(t *testing.T) {
	r := &mockSheetRepo{}
	svc, _ := newLedgerService(t, r)

	_, err := svc.UpdateTrip(context.Background(), uuid.New(), tripInput(1, "A", 0, 1))

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, r.savedTrips)
}

func TestLedgerService_DeleteTrip(t *testing.T) {
	r := &mockSheetRepo{}
	svc, _ := newLedgerService(t, r)
	ctx := context.Background()
	gone, err := svc.AddTrip(ctx, tripInput(1, "A", 0, 100))
	require.NoError(t, err)
	kept, err := svc.AddTrip(ctx, tripInput(2, "A", 100, 130))
	require.NoError(t, err)

	res, err := svc.DeleteTrip(ctx, gone.Trip.ID)

	require.NoError(t, err)
	assert.Equal(t, gone.Trip.ID, res.Trip.ID)
	got, err := svc.Trip(ctx, kept.Trip.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(30), got.AccumulatedKM)

	_, err = svc.Trip(ctx, gone.Trip.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ---- SetPlate --------------------------------------------------------------

func TestLedgerService_SetPlate_RecordsFleetChange(t *testing.T) {
	r := &mockSheetRepo{}
	svc, _ := newLedgerService(t, r)
	ctx := context.Background()
	_, err := svc.AddTrip(ctx, tripInput(1, "A", 0, 100))
	require.NoError(t, err)

	res, err := svc.SetPlate(ctx, "A", " CBXT 101 ", "leased", "admin")

	require.NoError(t, err)
	assert.True(t, res.Durable)
	require.NotNil(t, res.Vehicle.LicensePlate)
	assert.Equal(t, "CBXT 101", *res.Vehicle.LicensePlate)
	require.NotNil(t, res.FleetChange)
	assert.Equal(t, domain.NewDate(2024, time.March, 15), res.FleetChange.Date)
	assert.Equal(t, "N/A -> CBXT 101", res.FleetChange.FleetChange)
	assert.Equal(t, int64(100), res.FleetChange.AccumulatedKM)

	require.Len(t, r.savedVehicles, 1)
	require.Len(t, r.savedTrips, 2)
	assert.Len(t, r.savedTrips[1], 2)

	// The next trip picks up the new plate.
	next, err := svc.AddTrip(ctx, tripInput(16, "A", 100, 120))
	require.NoError(t, err)
	assert.Equal(t, "CBXT 101", next.Trip.PlateAtTripTime)
}

func TestLedgerService_SetPlate_SamePlateOnlyUpdatesComments(t *testing.T) {
	r := &mockSheetRepo{}
	svc, _ := newLedgerService(t, r)
	ctx := context.Background()
	_, err := svc.SetPlate(ctx, "A", "CBXT 101", "", "admin")
	require.NoError(t, err)

	res, err := svc.SetPlate(ctx, "A", "CBXT 101", "service due", "admin")

	require.NoError(t, err)
	assert.Nil(t, res.FleetChange)
	assert.Equal(t, "service due", res.Vehicle.Comments)
	assert.Len(t, svc.Trips(ctx), 1, "only the first assignment produced an event")
}

func TestLedgerService_SetPlate_Rejects(t *testing.T) {
	svc, _ := newLedgerService(t, &mockSheetRepo{})
	ctx := context.Background()

	_, err := svc.SetPlate(ctx, "A", "  ", "", "admin")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.SetPlate(ctx, "Z", "P1", "", "admin")
	assert.ErrorIs(t, err, domain.ErrValidation)

	assert.Empty(t, svc.Trips(ctx))
	assert.Empty(t, svc.Vehicles(ctx))
}

func TestLedgerService_SetPlate_SaveFailureWarns(t *testing.T) {
	r := &mockSheetRepo{
		saveVehicles: func(context.Context, []domain.Vehicle) error { return errBackendDown },
		saveTrips:    func(context.Context, []domain.Trip) error { return errBackendDown },
	}
	svc, _ := newLedgerService(t, r)

	res, err := svc.SetPlate(context.Background(), "B", "P2", "", "admin")

	require.NoError(t, err)
	assert.False(t, res.Durable)
	assert.Contains(t, res.Warning, "vehicles not saved")
	assert.Contains(t, res.Warning, "trips not saved")
}

// ---- reads -----------------------------------------------------------------

func TestLedgerService_LatestEndKM(t *testing.T) {
	svc, _ := newLedgerService(t, &mockSheetRepo{})
	ctx := context.Background()
	_, err := svc.AddTrip(ctx, tripInput(3, "A", 0, 70))
	require.NoError(t, err)

	end, ok := svc.LatestEndKM(ctx, "A")
	assert.True(t, ok)
	assert.Equal(t, int64(70), end)

	_, ok = svc.LatestEndKM(ctx, "B")
	assert.False(t, ok)
}

func TestLedgerService_Today(t *testing.T) {
	svc, _ := newLedgerService(t, &mockSheetRepo{})

	assert.Equal(t, domain.NewDate(2024, time.March, 15), svc.Today())
}

func ids(trips []domain.Trip) []uuid.UUID {
	out := make([]uuid.UUID, len(trips))
	for i, t := range trips {
		out[i] = t.ID
	}
	return out
}
