// Package ledger holds a session's trip and vehicle records and the rules
// that keep per-vehicle accumulated distance consistent across mutations.
//
// A Session is the unit of truth while an operator works. It is not safe for
// concurrent use; callers serialize access (see service.LedgerService).
package ledger

import (
	"slices"

	"github.com/google/uuid"

	"github.com/pkordes/fleet-ledger/internal/domain"
)

// Session is the record store: trips in insertion order and the vehicle
// plate registry. Lookups are linear scans.
type Session struct {
	trips    []domain.Trip
	vehicles []domain.Vehicle
}

// NewSession seeds a Session from loaded records. Trip order is kept as
// given. Repeated vehicle ids collapse to the last row seen.
func NewSession(trips []domain.Trip, vehicles []domain.Vehicle) *Session {
	s := &Session{trips: slices.Clone(trips)}
	for _, v := range vehicles {
		s.UpsertVehicle(v)
	}
	return s
}

// Append adds t at the end of the insertion order.
func (s *Session) Append(t domain.Trip) {
	s.trips = append(s.trips, t)
}

// Replace overwrites the trip with t.ID in place, keeping its position.
// It reports false when no such trip exists.
func (s *Session) Replace(t domain.Trip) bool {
	i := s.index(t.ID)
	if i < 0 {
		return false
	}
	s.trips[i] = t
	return true
}

// Remove deletes the trip with the given id and returns it.
func (s *Session) Remove(id uuid.UUID) (domain.Trip, bool) {
	i := s.index(id)
	if i < 0 {
		return domain.Trip{}, false
	}
	t := s.trips[i]
	s.trips = slices.Delete(s.trips, i, i+1)
	return t, true
}

// Find returns the trip with the given id.
func (s *Session) Find(id uuid.UUID) (domain.Trip, bool) {
	i := s.index(id)
	if i < 0 {
		return domain.Trip{}, false
	}
	return s.trips[i], true
}

// Trips returns a copy of all trips in insertion order.
func (s *Session) Trips() []domain.Trip {
	return slices.Clone(s.trips)
}

// Vehicle returns the registry entry for id.
func (s *Session) Vehicle(id string) (domain.Vehicle, bool) {
	for _, v := range s.vehicles {
		if v.ID == id {
			return v, true
		}
	}
	return domain.Vehicle{}, false
}

// UpsertVehicle replaces the entry for v.ID, or appends it.
func (s *Session) UpsertVehicle(v domain.Vehicle) {
	for i := range s.vehicles {
		if s.vehicles[i].ID == v.ID {
			s.vehicles[i] = v
			return
		}
	}
	s.vehicles = append(s.vehicles, v)
}

// Vehicles returns a copy of the registry in insertion order.
func (s *Session) Vehicles() []domain.Vehicle {
	return slices.Clone(s.vehicles)
}

func (s *Session) index(id uuid.UUID) int {
	return slices.IndexFunc(s.trips, func(t domain.Trip) bool { return t.ID == id })
}
