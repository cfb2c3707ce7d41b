package ledger

import (
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/fleet-ledger/internal/domain"
)

// Engine applies trip mutations to a Session and recomputes the derived
// accumulated distance of every affected vehicle.
type Engine struct {
	catalog    domain.Catalog
	continuous bool
	newID      func() uuid.UUID
}

// Option configures an Engine.
type Option func(*Engine)

// WithContinuousOdometer makes AddTrip reject a trip whose start reading
// differs from the vehicle's latest recorded end reading.
func WithContinuousOdometer(on bool) Option {
	return func(e *Engine) { e.continuous = on }
}

// WithIDGenerator replaces uuid.New, mostly for deterministic tests.
func WithIDGenerator(f func() uuid.UUID) Option {
	return func(e *Engine) { e.newID = f }
}

// NewEngine returns an Engine that checks trip input against catalog.
// A catalog section left empty disables the matching membership check.
func NewEngine(catalog domain.Catalog, opts ...Option) *Engine {
	e := &Engine{catalog: catalog, newID: uuid.New}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Catalog returns the catalog trip input is checked against.
func (e *Engine) Catalog() domain.Catalog {
	return e.catalog
}

// AddTrip validates in, stamps the vehicle's current plate, appends the new
// trip and recomputes the vehicle's accumulated distance.
// EditedBy and FleetChange in the input are ignored.
func (e *Engine) AddTrip(s *Session, in domain.TripInput) (domain.Trip, error) {
	if err := e.validate(in); err != nil {
		return domain.Trip{}, fmt.Errorf("ledger.AddTrip: %w", err)
	}
	if e.continuous {
		if latest, ok := LatestEndKM(s, in.Vehicle); ok && in.StartKM != latest {
			return domain.Trip{}, fmt.Errorf("ledger.AddTrip: %w: start_km %d must match the latest end_km %d for vehicle %s",
				domain.ErrValidation, in.StartKM, latest, in.Vehicle)
		}
	}

	plate := domain.PlateNotAvailable
	if v, ok := s.Vehicle(in.Vehicle); ok {
		plate = v.PlateOrNA()
	}

	t := domain.Trip{
		ID:              e.newID(),
		Date:            in.Date,
		Vehicle:         in.Vehicle,
		StartKM:         in.StartKM,
		EndKM:           in.EndKM,
		Driver:          in.Driver,
		Route:           domain.NewRoute(in.Route...),
		Remarks:         in.Remarks,
		PlateAtTripTime: plate,
	}
	s.Append(t)
	RecomputeAccumulated(s, t.Vehicle)

	created, _ := s.Find(t.ID)
	return created, nil
}

// UpdateTrip overwrites every mutable field of the trip with the given id.
// The plate snapshot is kept. Both the old and the new vehicle are
// recomputed when the vehicle changes, so the old chronology loses the trip's
// contribution.
func (e *Engine) UpdateTrip(s *Session, id uuid.UUID, in domain.TripInput) (domain.Trip, error) {
	if err := e.validate(in); err != nil {
		return domain.Trip{}, fmt.Errorf("ledger.UpdateTrip: %w", err)
	}
	old, ok := s.Find(id)
	if !ok {
		return domain.Trip{}, fmt.Errorf("ledger.UpdateTrip: %w", domain.ErrNotFound)
	}

	t := old
	t.Date = in.Date
	t.Vehicle = in.Vehicle
	t.StartKM = in.StartKM
	t.EndKM = in.EndKM
	t.Driver = in.Driver
	t.Route = domain.NewRoute(in.Route...)
	t.Remarks = in.Remarks
	t.EditedBy = in.EditedBy
	t.FleetChange = in.FleetChange
	s.Replace(t)

	RecomputeAccumulated(s, t.Vehicle)
	if old.Vehicle != t.Vehicle {
		RecomputeAccumulated(s, old.Vehicle)
	}

	updated, _ := s.Find(id)
	return updated, nil
}

// DeleteTrip removes the trip with the given id and recomputes its vehicle.
// It returns the removed trip.
func (e *Engine) DeleteTrip(s *Session, id uuid.UUID) (domain.Trip, error) {
	removed, ok := s.Remove(id)
	if !ok {
		return domain.Trip{}, fmt.Errorf("ledger.DeleteTrip: %w", domain.ErrNotFound)
	}
	RecomputeAccumulated(s, removed.Vehicle)
	return removed, nil
}

// RecordFleetChange appends a zero-distance event documenting a plate
// change. It skips input validation and plate stamping, and leaves every
// existing trip untouched.
//
// The event's own AccumulatedKM is the vehicle's running total as of on,
// which is what the next recompute would assign to it.
func (e *Engine) RecordFleetChange(s *Session, vehicle, oldPlate, newPlate, actor string, on domain.Date) domain.Trip {
	var total int64
	for _, t := range s.trips {
		if t.Vehicle == vehicle && !t.Date.After(on) {
			total += t.Delta()
		}
	}

	t := domain.Trip{
		ID:              e.newID(),
		Date:            on,
		Vehicle:         vehicle,
		AccumulatedKM:   total,
		Route:           domain.Route{domain.FleetChangeMarker},
		Remarks:         fmt.Sprintf("License plate changed from %s to %s", oldPlate, newPlate),
		EditedBy:        actor,
		FleetChange:     fmt.Sprintf("%s -> %s", oldPlate, newPlate),
		PlateAtTripTime: newPlate,
	}
	s.Append(t)
	return t
}

// RecomputeAccumulated rewrites AccumulatedKM for every record of vehicle,
// fleet-change events included. Records are walked by date ascending; trips
// on the same day accumulate in insertion order.
func RecomputeAccumulated(s *Session, vehicle string) {
	var idx []int
	for i, t := range s.trips {
		if t.Vehicle == vehicle {
			idx = append(idx, i)
		}
	}
	slices.SortStableFunc(idx, func(a, b int) int {
		return s.trips[a].Date.Compare(s.trips[b].Date)
	})

	var total int64
	for _, i := range idx {
		total += s.trips[i].Delta()
		s.trips[i].AccumulatedKM = total
	}
}

// LatestEndKM returns the end reading of the vehicle's most recent trip.
// Among trips on the latest date the last one entered wins. Fleet-change
// events are ignored.
func LatestEndKM(s *Session, vehicle string) (int64, bool) {
	var (
		latest domain.Trip
		found  bool
	)
	for _, t := range s.trips {
		if t.Vehicle != vehicle || t.IsFleetChange() {
			continue
		}
		if !found || !t.Date.Before(latest.Date) {
			latest, found = t, true
		}
	}
	return latest.EndKM, found
}

// validate enforces the input rules shared by AddTrip and UpdateTrip.
func (e *Engine) validate(in domain.TripInput) error {
	if in.EndKM < in.StartKM {
		return fmt.Errorf("%w: end must not precede start", domain.ErrValidation)
	}
	if in.StartKM < 0 {
		return fmt.Errorf("%w: start_km must not be negative", domain.ErrValidation)
	}
	if in.Date.IsZero() {
		return fmt.Errorf("%w: date is required", domain.ErrValidation)
	}
	if strings.TrimSpace(in.Vehicle) == "" {
		return fmt.Errorf("%w: vehicle is required", domain.ErrValidation)
	}
	if len(e.catalog.Vehicles) > 0 && !e.catalog.HasVehicle(in.Vehicle) {
		return fmt.Errorf("%w: unknown vehicle %q", domain.ErrValidation, in.Vehicle)
	}
	if in.Driver != "" && len(e.catalog.Drivers) > 0 && !e.catalog.HasDriver(in.Driver) {
		return fmt.Errorf("%w: unknown driver %q", domain.ErrValidation, in.Driver)
	}
	if len(e.catalog.Regions) > 0 && !in.Route.IsFleetChange() {
		for _, stop := range domain.NewRoute(in.Route...) {
			if !e.catalog.HasStore(stop) {
				return fmt.Errorf("%w: unknown stop %q", domain.ErrValidation, stop)
			}
		}
	}
	return nil
}
