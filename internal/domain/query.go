package domain

import "fmt"

// SortMode selects one of the fixed report orderings.
type SortMode string

const (
	// SortDateDesc lists the latest trips first. This is the default.
	SortDateDesc SortMode = "date_desc"
	// SortDateAsc lists the oldest trips first.
	SortDateAsc SortMode = "date_asc"
	// SortVehicleAsc groups by vehicle A-Z, latest trips first within a group.
	SortVehicleAsc SortMode = "vehicle_asc"
	// SortVehicleDesc groups by vehicle Z-A, latest trips first within a group.
	SortVehicleDesc SortMode = "vehicle_desc"
)

// ParseSortMode validates a sort mode string. Empty selects SortDateDesc.
func ParseSortMode(s string) (SortMode, error) {
	switch m := SortMode(s); m {
	case "":
		return SortDateDesc, nil
	case SortDateDesc, SortDateAsc, SortVehicleAsc, SortVehicleDesc:
		return m, nil
	default:
		return "", fmt.Errorf("%w: unknown sort mode %q", ErrValidation, s)
	}
}

// ReportQuery carries the report filters from the HTTP layer to the report
// service. Limit <= 0 means no limit.
type ReportQuery struct {
	Start   Date
	End     Date
	Vehicle string
	Sort    SortMode
	Limit   int
}

// NewReportQuery builds a ReportQuery from optional HTTP query params.
// Nil pointers fall back to the default window: first day of today's month
// through today, all vehicles, latest first.
func NewReportQuery(today Date, start, end *Date, vehicle, sort *string, limit *int) (ReportQuery, error) {
	q := ReportQuery{
		Start:   today.FirstOfMonth(),
		End:     today,
		Vehicle: AllVehicles,
		Sort:    SortDateDesc,
	}
	if start != nil {
		q.Start = *start
	}
	if end != nil {
		q.End = *end
	}
	if vehicle != nil && *vehicle != "" {
		q.Vehicle = *vehicle
	}
	if sort != nil {
		m, err := ParseSortMode(*sort)
		if err != nil {
			return ReportQuery{}, err
		}
		q.Sort = m
	}
	if limit != nil && *limit > 0 {
		q.Limit = *limit
	}
	if q.End.Before(q.Start) {
		return ReportQuery{}, fmt.Errorf("%w: end date must not precede start date", ErrValidation)
	}
	return q, nil
}
