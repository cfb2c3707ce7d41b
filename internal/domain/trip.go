// Package domain contains the core data types for the fleet ledger.
// It only depends on uuid and is imported by every other internal package
// (ledger, report, repo, service, handler).
package domain

import (
	"github.com/google/uuid"
)

// PlateNotAvailable is the plate snapshot taken when a vehicle has no plate.
const PlateNotAvailable = "N/A"

// Trip is one vehicle movement in the ledger, or a synthesized fleet-change
// event (see Route.IsFleetChange).
//
// AccumulatedKM is derived: the running total of deltas over the vehicle's
// chronology. PlateAtTripTime is captured once at creation and never
// recomputed.
type Trip struct {
	ID              uuid.UUID `json:"id"`
	Date            Date      `json:"date"`
	Vehicle         string    `json:"vehicle"`
	StartKM         int64     `json:"start_km"`
	EndKM           int64     `json:"end_km"`
	AccumulatedKM   int64     `json:"accumulated_km"`
	Driver          string    `json:"driver,omitempty"`
	Route           Route     `json:"route"`
	Remarks         string    `json:"remarks,omitempty"`
	EditedBy        string    `json:"edited_by,omitempty"`
	FleetChange     string    `json:"fleet_change,omitempty"`
	PlateAtTripTime string    `json:"plate_at_trip_time"`
}

// Delta is the distance covered by this single trip.
func (t Trip) Delta() int64 {
	return t.EndKM - t.StartKM
}

// IsFleetChange reports whether t is a synthesized plate-change event.
func (t Trip) IsFleetChange() bool {
	return t.Route.IsFleetChange()
}

// TripInput carries the caller-supplied, mutable fields of a trip.
// EditedBy and FleetChange are only honoured by updates.
type TripInput struct {
	Date        Date
	Vehicle     string
	StartKM     int64
	EndKM       int64
	Driver      string
	Route       Route
	Remarks     string
	EditedBy    string
	FleetChange string
}

// MutationResult is returned by every ledger mutation.
// Durable is false when the in-memory change stands but the save to the
// backing store failed; Warning then explains why.
type MutationResult struct {
	Trip    Trip   `json:"trip"`
	Durable bool   `json:"durable"`
	Warning string `json:"warning,omitempty"`
}
