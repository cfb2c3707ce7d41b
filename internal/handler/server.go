// Package handler implements the HTTP handlers for the fleet ledger API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (health.go, trip.go, vehicle.go, report.go, ...) but share the same
// Server struct so they can access its dependencies.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pkordes/fleet-ledger/internal/domain"
	"github.com/pkordes/fleet-ledger/internal/middleware"
)

// LedgerServicer defines the ledger operations the trip and vehicle handlers
// depend on. Defining the interface here, in the consumer package, lets
// handler tests inject a mock without a backend.
type LedgerServicer interface {
	AddTrip(ctx context.Context, in domain.TripInput) (domain.MutationResult, error)
	UpdateTrip(ctx context.Context, id uuid.UUID, in domain.TripInput) (domain.MutationResult, error)
	DeleteTrip(ctx context.Context, id uuid.UUID) (domain.MutationResult, error)
	SetPlate(ctx context.Context, vehicle, plate, comments, actor string) (domain.PlateChange, error)
	Trips(ctx context.Context) []domain.Trip
	Trip(ctx context.Context, id uuid.UUID) (domain.Trip, error)
	Vehicles(ctx context.Context) []domain.Vehicle
	LatestEndKM(ctx context.Context, vehicle string) (int64, bool)
	Catalog() domain.Catalog
	Today() domain.Date
}

// ReportServicer defines the read-only report operations.
type ReportServicer interface {
	TripReport(ctx context.Context, q domain.ReportQuery) []domain.ReportRow
	StopCounts(ctx context.Context, start, end domain.Date) []domain.StopCount
	AllTrips(ctx context.Context) []domain.Trip
}

// AuthServicer issues and checks admin tokens.
type AuthServicer interface {
	Login(ctx context.Context, username, password string) (string, time.Time, error)
	Verify(token string) (string, error)
}

// Server holds the dependencies shared by every handler.
type Server struct {
	ledger  LedgerServicer
	reports ReportServicer
	auth    AuthServicer
	log     *slog.Logger
}

// NewServer constructs the Server with all its dependencies.
// A nil logger falls back to slog.Default.
func NewServer(ledger LedgerServicer, reports ReportServicer, auth AuthServicer, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{ledger: ledger, reports: reports, auth: auth, log: log}
}

// Routes returns a chi router with every API endpoint mounted.
// Cross-cutting middleware (request id, logging, CORS, body limits) is
// applied by the caller in main.go; only the admin gate is wired here.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)
	r.Get("/catalog", s.GetCatalog)

	r.Route("/trips", func(r chi.Router) {
		r.Get("/", s.ListTrips)
		r.Post("/", s.CreateTrip)
		r.Get("/{id}", s.GetTrip)
		r.Put("/{id}", s.UpdateTrip)
		r.Delete("/{id}", s.DeleteTrip)
	})

	r.Route("/vehicles", func(r chi.Router) {
		r.Get("/", s.ListVehicles)
		r.Get("/{vehicle}/latest-end", s.GetLatestEnd)
		r.With(middleware.RequireAdmin(s.auth)).Put("/{vehicle}", s.SetPlate)
	})

	r.Post("/admin/login", s.AdminLogin)

	r.Route("/reports", func(r chi.Router) {
		r.Get("/trips", s.GetTripReport)
		r.Get("/trips.csv", s.GetTripReportCSV)
		r.Get("/trips.xlsx", s.GetTripReportXLSX)
		r.Get("/stops.csv", s.GetStopCountsCSV)
	})

	r.Get("/export/trips.csv", s.GetFullExport)

	return r
}

// NewHealthHandler returns a router for health-check-only use.
func NewHealthHandler() http.Handler {
	return NewServer(nil, nil, nil, nil).Routes()
}
