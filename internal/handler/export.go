// export.go implements the file downloads: the filtered report as CSV or
// workbook, the stop counts and the full trip export. Each body is rendered
// into a buffer first so a write failure can still be answered with a 500.
package handler

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/pkordes/fleet-ledger/internal/report"
)

const (
	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// GetTripReportCSV handles GET /reports/trips.csv.
func (s *Server) GetTripReportCSV(w http.ResponseWriter, r *http.Request) {
	q, ok := s.reportQuery(w, r)
	if !ok {
		return
	}
	rows := s.reports.TripReport(r.Context(), q)
	s.download(w, r, contentTypeCSV, report.FilteredFilename(q.Start, q.End, "csv"), func(out io.Writer) error {
		return report.WriteReportCSV(out, rows)
	})
}

// GetTripReportXLSX handles GET /reports/trips.xlsx.
func (s *Server) GetTripReportXLSX(w http.ResponseWriter, r *http.Request) {
	q, ok := s.reportQuery(w, r)
	if !ok {
		return
	}
	rows := s.reports.TripReport(r.Context(), q)
	s.download(w, r, contentTypeXLSX, report.FilteredFilename(q.Start, q.End, "xlsx"), func(out io.Writer) error {
		return report.WriteReportXLSX(out, rows)
	})
}

// GetStopCountsCSV handles GET /reports/stops.csv. Only the window
// parameters apply; stops are counted across all vehicles.
func (s *Server) GetStopCountsCSV(w http.ResponseWriter, r *http.Request) {
	start, end, ok := s.reportWindow(w, r)
	if !ok {
		return
	}
	counts := s.reports.StopCounts(r.Context(), start, end)
	s.download(w, r, contentTypeCSV, report.StopCountsFilename(start, end), func(out io.Writer) error {
		return report.WriteStopCountsCSV(out, counts)
	})
}

// GetFullExport handles GET /export/trips.csv: every stored trip in
// insertion order, unfiltered.
func (s *Server) GetFullExport(w http.ResponseWriter, r *http.Request) {
	trips := s.reports.AllTrips(r.Context())
	s.download(w, r, contentTypeCSV, report.FullExportFilename, func(out io.Writer) error {
		return report.WriteFullCSV(out, trips)
	})
}

// download renders a file attachment.
func (s *Server) download(w http.ResponseWriter, r *http.Request, contentType, filename string, render func(io.Writer) error) {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		s.writeError(w, r, fmt.Errorf("handler.download %s: %w", filename, err))
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
