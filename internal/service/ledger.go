// Package service contains the orchestration layer of the fleet ledger.
// Services run a ledger mutation, persist the affected collection and hand
// back an explicit result. No storage code lives here; services depend on
// repo.SheetRepo, not on a backend.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/fleet-ledger/internal/domain"
	"github.com/pkordes/fleet-ledger/internal/ledger"
	"github.com/pkordes/fleet-ledger/internal/repo"
)

// LedgerService owns the operator session. Every call runs to completion
// (mutate, save, return) before the next one starts.
//
// A failed save does not undo the in-memory change: the result comes back
// with Durable=false and a warning, and the next successful save writes the
// full collection again. Two processes sharing one backend overwrite each
// other; the last save wins.
type LedgerService struct {
	mu      sync.Mutex
	repo    repo.SheetRepo
	engine  *ledger.Engine
	session *ledger.Session
	now     func() time.Time
	log     *slog.Logger
}

// LedgerOption configures a LedgerService.
type LedgerOption func(*LedgerService)

// WithClock replaces time.Now, which dates fleet-change events and the
// default report window.
func WithClock(now func() time.Time) LedgerOption {
	return func(s *LedgerService) { s.now = now }
}

// WithLogger sets the logger for load fallbacks and save failures.
func WithLogger(l *slog.Logger) LedgerOption {
	return func(s *LedgerService) { s.log = l }
}

// NewLedgerService constructs a LedgerService with an empty session.
// Call Load to seed it from the backend.
func NewLedgerService(r repo.SheetRepo, engine *ledger.Engine, opts ...LedgerOption) *LedgerService {
	s := &LedgerService{
		repo:    r,
		engine:  engine,
		session: ledger.NewSession(nil, nil),
		now:     time.Now,
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the session with the backend's collections. A collection
// that fails to load starts empty and the failure is logged; the service
// stays usable either way. Stored running totals are recomputed, since
// distances coerced to 0 on load would otherwise leave them stale.
func (s *LedgerService) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	trips, err := s.repo.LoadTrips(ctx)
	if err != nil {
		s.log.WarnContext(ctx, "trips failed to load, starting empty",
			slog.String("error", fmt.Errorf("%w: %w", domain.ErrPersistence, err).Error()))
		trips = nil
	}
	vehicles, err := s.repo.LoadVehicles(ctx)
	if err != nil {
		s.log.WarnContext(ctx, "vehicles failed to load, starting empty",
			slog.String("error", fmt.Errorf("%w: %w", domain.ErrPersistence, err).Error()))
		vehicles = nil
	}

	s.session = ledger.NewSession(trips, vehicles)
	seen := make(map[string]bool)
	for _, t := range trips {
		if !seen[t.Vehicle] {
			seen[t.Vehicle] = true
			ledger.RecomputeAccumulated(s.session, t.Vehicle)
		}
	}
	s.log.InfoContext(ctx, "ledger loaded",
		slog.Int("trips", len(trips)),
		slog.Int("vehicles", len(s.session.Vehicles())),
	)
}

// AddTrip records a new trip and saves all trips.
// Returns domain.ErrValidation, with nothing changed, if in breaks a rule.
func (s *LedgerService) AddTrip(ctx context.Context, in domain.TripInput) (domain.MutationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.engine.AddTrip(s.session, in)
	if err != nil {
		return domain.MutationResult{}, fmt.Errorf("service.LedgerService.AddTrip: %w", err)
	}
	return s.saveTrips(ctx, "add", t), nil
}

// UpdateTrip overwrites the trip with the given id and saves all trips.
// Returns domain.ErrNotFound or domain.ErrValidation with nothing changed.
func (s *LedgerService) UpdateTrip(ctx context.Context, id uuid.UUID, in domain.TripInput) (domain.MutationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.engine.UpdateTrip(s.session, id, in)
	if err != nil {
		return domain.MutationResult{}, fmt.Errorf("service.LedgerService.UpdateTrip: %w", err)
	}
	return s.saveTrips(ctx, "update", t), nil
}

// DeleteTrip removes the trip with the given id and saves all trips.
// The result carries the removed trip.
func (s *LedgerService) DeleteTrip(ctx context.Context, id uuid.UUID) (domain.MutationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.engine.DeleteTrip(s.session, id)
	if err != nil {
		return domain.MutationResult{}, fmt.Errorf("service.LedgerService.DeleteTrip: %w", err)
	}
	return s.saveTrips(ctx, "delete", t), nil
}

// SetPlate assigns plate and comments to vehicle and saves the registry.
// When the plate actually changes, a fleet-change event dated today is
// appended to the trips and the trips are saved too.
//
// Returns domain.ErrValidation for an empty plate or an unknown vehicle.
func (s *LedgerService) SetPlate(ctx context.Context, vehicle, plate, comments, actor string) (domain.PlateChange, error) {
	vehicle = strings.TrimSpace(vehicle)
	plate = strings.TrimSpace(plate)
	if vehicle == "" {
		return domain.PlateChange{}, fmt.Errorf("service.LedgerService.SetPlate: %w: vehicle is required", domain.ErrValidation)
	}
	if plate == "" {
		return domain.PlateChange{}, fmt.Errorf("service.LedgerService.SetPlate: %w: license plate is required", domain.ErrValidation)
	}
	if c := s.engine.Catalog(); len(c.Vehicles) > 0 && !c.HasVehicle(vehicle) {
		return domain.PlateChange{}, fmt.Errorf("service.LedgerService.SetPlate: %w: unknown vehicle %q", domain.ErrValidation, vehicle)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	old, known := s.session.Vehicle(vehicle)
	changed := !known || old.LicensePlate == nil || *old.LicensePlate != plate

	v := domain.Vehicle{ID: vehicle, LicensePlate: &plate, Comments: comments}
	s.session.UpsertVehicle(v)
	result := domain.PlateChange{Vehicle: v, Durable: true}

	var warnings []string
	if err := s.repo.SaveVehicles(ctx, s.session.Vehicles()); err != nil {
		warnings = append(warnings, s.saveFailed(ctx, "set plate", "vehicles", err))
	}

	if changed {
		event := s.engine.RecordFleetChange(s.session, vehicle, old.PlateOrNA(), plate, actor, domain.DateOf(s.now()))
		result.FleetChange = &event
		if err := s.repo.SaveTrips(ctx, s.session.Trips()); err != nil {
			warnings = append(warnings, s.saveFailed(ctx, "fleet change", "trips", err))
		}
	}

	if len(warnings) > 0 {
		result.Durable = false
		result.Warning = strings.Join(warnings, "; ")
	}
	return result, nil
}

// Trips returns every trip in insertion order.
func (s *LedgerService) Trips(_ context.Context) []domain.Trip {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.Trips()
}

// Trip returns the trip with the given id.
// Returns domain.ErrNotFound if there is none.
func (s *LedgerService) Trip(_ context.Context, id uuid.UUID) (domain.Trip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.session.Find(id)
	if !ok {
		return domain.Trip{}, fmt.Errorf("service.LedgerService.Trip: %w", domain.ErrNotFound)
	}
	return t, nil
}

// Vehicles returns the plate registry.
func (s *LedgerService) Vehicles(_ context.Context) []domain.Vehicle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.Vehicles()
}

// LatestEndKM returns the end reading of the vehicle's most recent trip,
// for prefilling the next trip's start reading.
func (s *LedgerService) LatestEndKM(_ context.Context, vehicle string) (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ledger.LatestEndKM(s.session, vehicle)
}

// Catalog returns the vehicles, drivers and stores trip input is checked against.
func (s *LedgerService) Catalog() domain.Catalog {
	return s.engine.Catalog()
}

// Today is the current calendar day by the service clock.
func (s *LedgerService) Today() domain.Date {
	return domain.DateOf(s.now())
}

// saveTrips writes the whole trip collection and wraps t in a result.
// Callers hold s.mu.
func (s *LedgerService) saveTrips(ctx context.Context, op string, t domain.Trip) domain.MutationResult {
	result := domain.MutationResult{Trip: t, Durable: true}
	if err := s.repo.SaveTrips(ctx, s.session.Trips()); err != nil {
		result.Durable = false
		result.Warning = s.saveFailed(ctx, op, "trips", err)
	}
	return result
}

// saveFailed logs a failed save and returns the warning shown to the caller.
func (s *LedgerService) saveFailed(ctx context.Context, op, collection string, err error) string {
	err = fmt.Errorf("%w: save %s: %w", domain.ErrPersistence, collection, err)
	s.log.ErrorContext(ctx, "save failed; change kept in memory only",
		slog.String("op", op),
		slog.String("collection", collection),
		slog.String("error", err.Error()),
	)
	return fmt.Sprintf("%s not saved, change kept in memory only: %v", collection, err)
}
