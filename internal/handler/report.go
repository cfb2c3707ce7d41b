package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/fleet-ledger/internal/domain"
)

// ReportParams are the query parameters shared by the report endpoints.
// Every field is optional; see domain.NewReportQuery for the defaults.
type ReportParams struct {
	Start   *openapi_types.Date
	End     *openapi_types.Date
	Vehicle *string
	Sort    *string
	Limit   *int
}

// TripReport is the body of GET /reports/trips.
type TripReport struct {
	Start   domain.Date        `json:"start"`
	End     domain.Date        `json:"end"`
	Vehicle string             `json:"vehicle"`
	Sort    domain.SortMode    `json:"sort"`
	Data    []domain.ReportRow `json:"data"`
}

// GetTripReport handles GET /reports/trips.
func (s *Server) GetTripReport(w http.ResponseWriter, r *http.Request) {
	q, ok := s.reportQuery(w, r)
	if !ok {
		return
	}

	rows := s.reports.TripReport(r.Context(), q)
	if rows == nil {
		rows = []domain.ReportRow{}
	}
	writeJSON(w, http.StatusOK, TripReport{
		Start:   q.Start,
		End:     q.End,
		Vehicle: q.Vehicle,
		Sort:    q.Sort,
		Data:    rows,
	})
}

// reportQuery binds ReportParams and resolves them against today's date.
// Unparseable values and an inverted window are answered with 400.
func (s *Server) reportQuery(w http.ResponseWriter, r *http.Request) (domain.ReportQuery, bool) {
	var p ReportParams
	query := r.URL.Query()
	for _, b := range []struct {
		name string
		dest any
	}{
		{"start", &p.Start},
		{"end", &p.End},
		{"vehicle", &p.Vehicle},
		{"sort", &p.Sort},
		{"limit", &p.Limit},
	} {
		if err := runtime.BindQueryParameter("form", true, false, b.name, query, b.dest); err != nil {
			badRequest(w, fmt.Sprintf("invalid %s parameter", b.name))
			return domain.ReportQuery{}, false
		}
	}

	q, err := domain.NewReportQuery(s.ledger.Today(), toDate(p.Start), toDate(p.End), p.Vehicle, p.Sort, p.Limit)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			badRequest(w, unwrapMessage(err, domain.ErrValidation))
			return domain.ReportQuery{}, false
		}
		s.writeError(w, r, err)
		return domain.ReportQuery{}, false
	}
	return q, true
}

// reportWindow binds only start and end, for views that ignore the
// vehicle, sort and limit parameters.
func (s *Server) reportWindow(w http.ResponseWriter, r *http.Request) (domain.Date, domain.Date, bool) {
	var start, end *openapi_types.Date
	query := r.URL.Query()
	if err := runtime.BindQueryParameter("form", true, false, "start", query, &start); err != nil {
		badRequest(w, "invalid start parameter")
		return domain.Date{}, domain.Date{}, false
	}
	if err := runtime.BindQueryParameter("form", true, false, "end", query, &end); err != nil {
		badRequest(w, "invalid end parameter")
		return domain.Date{}, domain.Date{}, false
	}

	q, err := domain.NewReportQuery(s.ledger.Today(), toDate(start), toDate(end), nil, nil, nil)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			badRequest(w, unwrapMessage(err, domain.ErrValidation))
			return domain.Date{}, domain.Date{}, false
		}
		s.writeError(w, r, err)
		return domain.Date{}, domain.Date{}, false
	}
	return q.Start, q.End, true
}

func toDate(d *openapi_types.Date) *domain.Date {
	if d == nil {
		return nil
	}
	out := domain.DateOf(d.Time)
	return &out
}
