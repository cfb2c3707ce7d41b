// Package report derives read-only views of the ledger for display and
// export: date/vehicle filtering, the fixed sort modes, the period-scoped
// accumulated distance and stop visit counts.
//
// Nothing here mutates its input; every function returns fresh slices.
package report

import (
	"cmp"
	"slices"

	"github.com/pkordes/fleet-ledger/internal/domain"
)

// Filter keeps trips dated within [start, end], both ends inclusive.
// vehicle == domain.AllVehicles disables vehicle filtering; any other value
// must match exactly. Input order is preserved.
func Filter(trips []domain.Trip, start, end domain.Date, vehicle string) []domain.Trip {
	out := make([]domain.Trip, 0, len(trips))
	for _, t := range trips {
		if t.Date.Before(start) || t.Date.After(end) {
			continue
		}
		if vehicle != domain.AllVehicles && t.Vehicle != vehicle {
			continue
		}
		out = append(out, t)
	}
	return out
}

// AnnotatePeriodAccumulated attaches to each trip the distance its vehicle
// covered inside the given set, walking (date, input order) ascending from 0.
// The result is in input order. Lifetime AccumulatedKM is copied unchanged.
func AnnotatePeriodAccumulated(trips []domain.Trip) []domain.ReportRow {
	rows := make([]domain.ReportRow, len(trips))
	order := make([]int, len(trips))
	for i, t := range trips {
		rows[i] = domain.ReportRow{Trip: t}
		order[i] = i
	}

	slices.SortStableFunc(order, func(a, b int) int {
		return trips[a].Date.Compare(trips[b].Date)
	})

	totals := map[string]int64{}
	for _, i := range order {
		v := trips[i].Vehicle
		totals[v] += trips[i].Delta()
		rows[i].PeriodAccumulatedKM = totals[v]
	}
	return rows
}

// Sort returns rows ordered by mode. An unknown mode behaves like
// domain.SortDateDesc.
//
// Vehicle modes sort by date descending first and then stable-sort by
// vehicle, so each vehicle group keeps the latest-first order.
func Sort(rows []domain.ReportRow, mode domain.SortMode) []domain.ReportRow {
	out := slices.Clone(rows)

	byDateDesc := func(a, b domain.ReportRow) int { return b.Date.Compare(a.Date) }

	switch mode {
	case domain.SortDateAsc:
		slices.SortStableFunc(out, func(a, b domain.ReportRow) int { return a.Date.Compare(b.Date) })
	case domain.SortVehicleAsc:
		slices.SortStableFunc(out, byDateDesc)
		slices.SortStableFunc(out, func(a, b domain.ReportRow) int { return cmp.Compare(a.Vehicle, b.Vehicle) })
	case domain.SortVehicleDesc:
		slices.SortStableFunc(out, byDateDesc)
		slices.SortStableFunc(out, func(a, b domain.ReportRow) int { return cmp.Compare(b.Vehicle, a.Vehicle) })
	default:
		slices.SortStableFunc(out, byDateDesc)
	}
	return out
}

// CountStops tallies how many of the given trips visit each stop.
// Fleet-change events are not trips and are skipped.
func CountStops(trips []domain.Trip) map[string]int {
	counts := map[string]int{}
	for _, t := range trips {
		if t.IsFleetChange() {
			continue
		}
		// Route may come straight from a sheet row; normalise it again.
		for _, stop := range domain.NewRoute(t.Route...) {
			counts[stop]++
		}
	}
	return counts
}

// RankStops orders stop counts by count descending, then stop name.
func RankStops(counts map[string]int) []domain.StopCount {
	out := make([]domain.StopCount, 0, len(counts))
	for stop, n := range counts {
		out = append(out, domain.StopCount{Stop: stop, Count: n})
	}
	slices.SortFunc(out, func(a, b domain.StopCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Stop, b.Stop)
	})
	return out
}
