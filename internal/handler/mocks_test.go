package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/fleet-ledger/internal/domain"
	"github.com/pkordes/fleet-ledger/internal/handler"
)

// mockLedger is a test double for handler.LedgerServicer.
// Set only the method fields your test needs.
type mockLedger struct {
	addTrip     func(ctx context.Context, in domain.TripInput) (domain.MutationResult, error)
	updateTrip  func(ctx context.Context, id uuid.UUID, in domain.TripInput) (domain.MutationResult, error)
	deleteTrip  func(ctx context.Context, id uuid.UUID) (domain.MutationResult, error)
	setPlate    func(ctx context.Context, vehicle, plate, comments, actor string) (domain.PlateChange, error)
	trips       func(ctx context.Context) []domain.Trip
	trip        func(ctx context.Context, id uuid.UUID) (domain.Trip, error)
	vehicles    func(ctx context.Context) []domain.Vehicle
	latestEndKM func(ctx context.Context, vehicle string) (int64, bool)
	catalog     domain.Catalog
	today       domain.Date
}

func (m *mockLedger) AddTrip(ctx context.Context, in domain.TripInput) (domain.MutationResult, error) {
	return m.addTrip(ctx, in)
}
func (m *mockLedger) UpdateTrip(ctx context.Context, id uuid.UUID, in domain.TripInput) (domain.MutationResult, error) {
	return m.updateTrip(ctx, id, in)
}
func (m *mockLedger) DeleteTrip(ctx context.Context, id uuid.UUID) (domain.MutationResult, error) {
	return m.deleteTrip(ctx, id)
}
func (m *mockLedger) SetPlate(ctx context.Context, vehicle, plate, comments, actor string) (domain.PlateChange, error) {
	return m.setPlate(ctx, vehicle, plate, comments, actor)
}
func (m *mockLedger) Trips(ctx context.Context) []domain.Trip { return m.trips(ctx) }
func (m *mockLedger) Trip(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	return m.trip(ctx, id)
}
func (m *mockLedger) Vehicles(ctx context.Context) []domain.Vehicle { return m.vehicles(ctx) }
func (m *mockLedger) LatestEndKM(ctx context.Context, vehicle string) (int64, bool) {
	return m.latestEndKM(ctx, vehicle)
}
func (m *mockLedger) Catalog() domain.Catalog { return m.catalog }
func (m *mockLedger) Today() domain.Date      { return m.today }

// mockReports is a test double for handler.ReportServicer.
type mockReports struct {
	tripReport func(ctx context.Context, q domain.ReportQuery) []domain.ReportRow
	stopCounts func(ctx context.Context, start, end domain.Date) []domain.StopCount
	allTrips   func(ctx context.Context) []domain.Trip
}

func (m *mockReports) TripReport(ctx context.Context, q domain.ReportQuery) []domain.ReportRow {
	return m.tripReport(ctx, q)
}
func (m *mockReports) StopCounts(ctx context.Context, start, end domain.Date) []domain.StopCount {
	return m.stopCounts(ctx, start, end)
}
func (m *mockReports) AllTrips(ctx context.Context) []domain.Trip { return m.allTrips(ctx) }

// mockAuth is a test double for handler.AuthServicer that accepts one token.
type mockAuth struct {
	login func(ctx context.Context, username, password string) (string, time.Time, error)
	token string
}

func (m *mockAuth) Login(ctx context.Context, username, password string) (string, time.Time, error) {
	return m.login(ctx, username, password)
}
func (m *mockAuth) Verify(token string) (string, error) {
	if m.token == "" || token != m.token {
		return "", errors.New("bad token")
	}
	return "fleet-admin", nil
}

// compile-time checks: the mocks must satisfy the handler interfaces.
var (
	_ handler.LedgerServicer = (*mockLedger)(nil)
	_ handler.ReportServicer = (*mockReports)(nil)
	_ handler.AuthServicer   = (*mockAuth)(nil)
)

// ---- helpers ---------------------------------------------------------------

// newHTTPHandler wires a Server with the given mocks into its router, the
// same way main.go does in production. Nil mocks are replaced with empty ones.
func newHTTPHandler(ledger *mockLedger, reports *mockReports, auth *mockAuth) http.Handler {
	if ledger == nil {
		ledger = &mockLedger{}
	}
	if reports == nil {
		reports = &mockReports{}
	}
	if auth == nil {
		auth = &mockAuth{}
	}
	return handler.NewServer(ledger, reports, auth, nil).Routes()
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) handler.ErrorDetail {
	t.Helper()
	var body handler.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body.Error
}

func june(day int) domain.Date {
	return domain.NewDate(2025, time.June, day)
}

func tripFixture() domain.Trip {
	return domain.Trip{
		ID:              uuid.New(),
		Date:            june(3),
		Vehicle:         "A",
		StartKM:         100,
		EndKM:           180,
		AccumulatedKM:   80,
		Driver:          "Tijo",
		Route:           domain.NewRoute("Ajax", "King"),
		PlateAtTripTime: "CBXT 101",
	}
}
