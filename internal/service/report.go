package service

import (
	"context"

	"github.com/pkordes/fleet-ledger/internal/domain"
	"github.com/pkordes/fleet-ledger/internal/report"
)

// TripSource is the read side of the ledger that reports are built from.
// *LedgerService satisfies it.
type TripSource interface {
	Trips(ctx context.Context) []domain.Trip
}

// ReportService builds the read-only report views over a TripSource.
type ReportService struct {
	trips TripSource
}

// NewReportService constructs a ReportService over the given trips.
func NewReportService(trips TripSource) *ReportService {
	return &ReportService{trips: trips}
}

// TripReport filters, annotates and sorts the trips for q. Period totals
// are computed before sorting and before the limit applies, so they do not
// depend on the chosen order or page size.
func (s *ReportService) TripReport(ctx context.Context, q domain.ReportQuery) []domain.ReportRow {
	filtered := report.Filter(s.trips.Trips(ctx), q.Start, q.End, q.Vehicle)
	rows := report.Sort(report.AnnotatePeriodAccumulated(filtered), q.Sort)
	if q.Limit > 0 && len(rows) > q.Limit {
		rows = rows[:q.Limit]
	}
	return rows
}

// StopCounts ranks stops by visits across all vehicles between start and end.
func (s *ReportService) StopCounts(ctx context.Context, start, end domain.Date) []domain.StopCount {
	filtered := report.Filter(s.trips.Trips(ctx), start, end, domain.AllVehicles)
	return report.RankStops(report.CountStops(filtered))
}

// AllTrips returns every trip in insertion order for the full export.
func (s *ReportService) AllTrips(ctx context.Context) []domain.Trip {
	return s.trips.Trips(ctx)
}
