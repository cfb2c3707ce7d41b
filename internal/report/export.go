package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/pkordes/fleet-ledger/internal/domain"
)

// ReportSheet is the sheet name of the filtered workbook download.
const ReportSheet = "Trips"

// FilteredFilename is the download name of the filtered trip report.
func FilteredFilename(start, end domain.Date, ext string) string {
	return fmt.Sprintf("rotiroute_filtered_records_%s_to_%s.%s", start.Compact(), end.Compact(), ext)
}

// StopCountsFilename is the download name of the stop count export.
func StopCountsFilename(start, end domain.Date) string {
	return fmt.Sprintf("rotiroute_store_counts_%s_to_%s.csv", start.Compact(), end.Compact())
}

// FullExportFilename is the download name of the full trip export.
const FullExportFilename = "rotiroute_full_records.csv"

// WriteReportCSV writes rows in domain.ReportColumns order, header first.
func WriteReportCSV(w io.Writer, rows []domain.ReportRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(domain.ReportColumns); err != nil {
		return fmt.Errorf("report.WriteReportCSV: %w", err)
	}
	for _, r := range rows {
		if err := cw.Write(reportRecord(r)); err != nil {
			return fmt.Errorf("report.WriteReportCSV: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFullCSV writes every stored field of trips in domain.TripColumns order.
func WriteFullCSV(w io.Writer, trips []domain.Trip) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(domain.TripColumns); err != nil {
		return fmt.Errorf("report.WriteFullCSV: %w", err)
	}
	for _, t := range trips {
		if err := cw.Write(fullRecord(t)); err != nil {
			return fmt.Errorf("report.WriteFullCSV: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteStopCountsCSV writes (Stop, Count) pairs in the given order.
func WriteStopCountsCSV(w io.Writer, counts []domain.StopCount) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(domain.StopCountColumns); err != nil {
		return fmt.Errorf("report.WriteStopCountsCSV: %w", err)
	}
	for _, c := range counts {
		if err := cw.Write([]string{c.Stop, strconv.Itoa(c.Count)}); err != nil {
			return fmt.Errorf("report.WriteStopCountsCSV: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteReportXLSX writes rows as a single-sheet workbook with a bold header.
// Distances are written as numbers so spreadsheet formulas work on them.
func WriteReportXLSX(w io.Writer, rows []domain.ReportRow) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ReportSheet); err != nil {
		return fmt.Errorf("report.WriteReportXLSX: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("report.WriteReportXLSX: %w", err)
	}

	header := make([]any, len(domain.ReportColumns))
	for i, c := range domain.ReportColumns {
		header[i] = c
	}
	if err := f.SetSheetRow(ReportSheet, "A1", &header); err != nil {
		return fmt.Errorf("report.WriteReportXLSX: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(header), 1)
	if err := f.SetCellStyle(ReportSheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("report.WriteReportXLSX: %w", err)
	}

	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		values := []any{
			r.Date.String(), r.Vehicle, r.StartKM, r.EndKM, r.AccumulatedKM,
			r.PeriodAccumulatedKM, r.Driver, r.Route.String(), r.Remarks,
		}
		if err := f.SetSheetRow(ReportSheet, cell, &values); err != nil {
			return fmt.Errorf("report.WriteReportXLSX: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("report.WriteReportXLSX: %w", err)
	}
	return nil
}

func reportRecord(r domain.ReportRow) []string {
	return []string{
		r.Date.String(),
		r.Vehicle,
		strconv.FormatInt(r.StartKM, 10),
		strconv.FormatInt(r.EndKM, 10),
		strconv.FormatInt(r.AccumulatedKM, 10),
		strconv.FormatInt(r.PeriodAccumulatedKM, 10),
		r.Driver,
		r.Route.String(),
		r.Remarks,
	}
}

func fullRecord(t domain.Trip) []string {
	return []string{
		t.ID.String(),
		t.Date.String(),
		t.Vehicle,
		strconv.FormatInt(t.StartKM, 10),
		strconv.FormatInt(t.EndKM, 10),
		strconv.FormatInt(t.AccumulatedKM, 10),
		t.Driver,
		t.Route.String(),
		t.Remarks,
		t.EditedBy,
		t.FleetChange,
		t.PlateAtTripTime,
	}
}
