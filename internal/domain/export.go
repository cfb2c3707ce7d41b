package domain

// ReportRow is a trip as shown in a report: the stored trip plus the
// distance accumulated inside the report window only.
//
// PeriodAccumulatedKM resets at the window start; Trip.AccumulatedKM is the
// lifetime total and is never affected by filtering.
type ReportRow struct {
	Trip
	PeriodAccumulatedKM int64 `json:"period_accumulated_km"`
}

// StopCount is the number of trips in a window whose route visits Stop.
type StopCount struct {
	Stop  string `json:"stop"`
	Count int    `json:"count"`
}
