package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/pkordes/fleet-ledger/internal/domain"
	"github.com/pkordes/fleet-ledger/internal/service"
)

// stubTrips is a fixed service.TripSource.
type stubTrips []domain.Trip

func (s stubTrips) Trips(context.Context) []domain.Trip { return s }

var _ service.TripSource = stubTrips(nil)

func jan(day int) domain.Date { return domain.NewDate(2024, time.January, day) }

func reportTrips() stubTrips {
	return stubTrips{
		{Date: jan(1), Vehicle: "A", StartKM: 0, EndKM: 100, AccumulatedKM: 100, Route: domain.Route{"Ajax"}},
		{Date: jan(2), Vehicle: "A", StartKM: 100, EndKM: 250, AccumulatedKM: 250, Route: domain.Route{"Ajax", "King"}},
		{Date: jan(3), Vehicle: "A", StartKM: 250, EndKM: 300, AccumulatedKM: 300, Route: domain.Route{"King"}},
		{Date: jan(3), Vehicle: "B", StartKM: 0, EndKM: 10, AccumulatedKM: 10, Route: domain.Route{"Queen"}},
		{Date: jan(4), Vehicle: "B", Route: domain.Route{domain.FleetChangeMarker}},
	}
}

func TestReportService_TripReport(t *testing.T) {
	svc := service.NewReportService(reportTrips())

	rows := svc.TripReport(context.Background(), domain.ReportQuery{
		Start: jan(2), End: jan(3), Vehicle: "A", Sort: domain.SortDateAsc,
	})

	assert.Len(t, rows, 2)
	assert.Equal(t, []int64{150, 200}, periodTotals(rows))
	assert.Equal(t, int64(250), rows[0].AccumulatedKM)
}

func TestReportService_TripReport_LimitAfterAnnotation(t *testing.T) {
	svc := service.NewReportService(reportTrips())

	rows := svc.TripReport(context.Background(), domain.ReportQuery{
		Start: jan(1), End: jan(31), Vehicle: domain.AllVehicles, Sort: domain.SortDateDesc, Limit: 2,
	})

	assert.Len(t, rows, 2)
	assert.Equal(t, jan(4), rows[0].Date)
	assert.Equal(t, int64(300), rows[1].PeriodAccumulatedKM, "period total counts the rows cut by the limit")
}

func TestReportService_StopCounts(t *testing.T) {
	svc := service.NewReportService(reportTrips())

	counts := svc.StopCounts(context.Background(), jan(2), jan(31))

	assert.Equal(t, []domain.StopCount{
		{Stop: "King", Count: 2},
		{Stop: "Ajax", Count: 1},
		{Stop: "Queen", Count: 1},
	}, counts)
}

func TestReportService_AllTrips(t *testing.T) {
	svc := service.NewReportService(reportTrips())

	assert.Len(t, svc.AllTrips(context.Background()), 5)
}

func periodTotals(rows []domain.ReportRow) []int64 {
	out := make([]int64, len(rows))
	for i, r := range rows {
		out[i] = r.PeriodAccumulatedKM
	}
	return out
}
