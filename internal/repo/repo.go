// Package repo persists the ledger's two collections, trips and the vehicle
// plate registry, to a sheet-like backend. Every backend loads and saves a
// whole collection at a time; there are no row-level writes.
//
// Three backends share the SheetRepo contract: Postgres tables, an Excel
// workbook and MongoDB collections. No business logic lives here, only
// storage and type mapping. Cells that are missing or not numeric load as
// zero values so a hand-edited sheet never blocks a session.
package repo

import (
	"context"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/fleet-ledger/internal/domain"
)

// SheetRepo loads and saves the full trip and vehicle collections.
// The service layer depends on this interface, not on a concrete backend,
// so it can be unit-tested with a mock.
type SheetRepo interface {
	// LoadTrips returns every stored trip in the order it was saved.
	LoadTrips(ctx context.Context) ([]domain.Trip, error)

	// SaveTrips replaces the stored trips with trips. Order is preserved.
	SaveTrips(ctx context.Context, trips []domain.Trip) error

	// LoadVehicles returns the stored plate registry.
	LoadVehicles(ctx context.Context) ([]domain.Vehicle, error)

	// SaveVehicles replaces the stored plate registry with vehicles.
	SaveVehicles(ctx context.Context, vehicles []domain.Vehicle) error
}

// parseKM reads a distance cell. Sheets sometimes hold "120.0" or "" or
// free text; anything that is not a whole, non-negative distance within
// int64 range becomes 0. Fractions are truncated.
func parseKM(s string) int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return clampKM(n)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return kmFromFloat(f)
}

// kmFromFloat truncates f to whole kilometres. NaN, negative values and
// values past the int64 range become 0.
func kmFromFloat(f float64) int64 {
	if math.IsNaN(f) || f < 0 || f >= float64(math.MaxInt64) {
		return 0
	}
	return int64(f)
}

// clampKM maps a negative reading to 0.
func clampKM(n int64) int64 {
	if n < 0 {
		return 0
	}
	return n
}

// parseDate reads a date cell; unparseable values become the zero Date.
func parseDate(s string) domain.Date {
	d, err := domain.ParseDate(strings.TrimSpace(s))
	if err != nil {
		return domain.Date{}
	}
	return d
}

// parseID reads an id cell. Rows added by hand without an id get a fresh
// one so they can still be edited and deleted.
func parseID(s string) uuid.UUID {
	id, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return uuid.New()
	}
	return id
}
