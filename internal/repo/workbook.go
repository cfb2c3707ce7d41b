package repo

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"github.com/xuri/excelize/v2"

	"github.com/pkordes/fleet-ledger/internal/domain"
)

// Sheet names inside the workbook.
const (
	TripsSheet    = "Trips"
	VehiclesSheet = "Vehicles"
)

// workbookRepo keeps both collections in one .xlsx file, one sheet each.
// The header row names the columns; readers locate them by name, so
// reordered or missing columns still load.
type workbookRepo struct {
	path string
	mu   sync.Mutex // a save rewrites the whole file
}

// NewWorkbookRepo constructs a SheetRepo backed by the workbook at path.
// The file is created on the first save if it does not exist.
func NewWorkbookRepo(path string) SheetRepo {
	return &workbookRepo{path: path}
}

// LoadTrips reads the Trips sheet. A missing file or sheet loads as empty.
func (r *workbookRepo) LoadTrips(ctx context.Context) ([]domain.Trip, error) {
	rows, err := r.readSheet(ctx, TripsSheet)
	if err != nil {
		return nil, fmt.Errorf("repo.workbookRepo.LoadTrips: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	col := headerIndex(rows[0])
	var trips []domain.Trip
	for _, row := range rows[1:] {
		if blankRow(row) {
			continue
		}
		trips = append(trips, domain.Trip{
			ID:              parseID(col.cell(row, domain.ColID)),
			Date:            parseDate(col.cell(row, domain.ColDate)),
			Vehicle:         col.cell(row, domain.ColVehicle),
			StartKM:         parseKM(col.cell(row, domain.ColStartKM)),
			EndKM:           parseKM(col.cell(row, domain.ColEndKM)),
			AccumulatedKM:   parseKM(col.cell(row, domain.ColAccumulatedKM)),
			Driver:          col.cell(row, domain.ColDriver),
			Route:           domain.ParseRoute(col.cell(row, domain.ColRoute)),
			Remarks:         col.cell(row, domain.ColRemarks),
			EditedBy:        col.cell(row, domain.ColEditedBy),
			FleetChange:     col.cell(row, domain.ColFleetChange),
			PlateAtTripTime: col.cell(row, domain.ColPlateAtTripTime),
		})
	}
	return trips, nil
}

// SaveTrips rewrites the Trips sheet, leaving the Vehicles sheet as is.
func (r *workbookRepo) SaveTrips(ctx context.Context, trips []domain.Trip) error {
	values := make([][]any, len(trips))
	for i, t := range trips {
		values[i] = []any{
			t.ID.String(), t.Date.String(), t.Vehicle, t.StartKM, t.EndKM, t.AccumulatedKM,
			t.Driver, t.Route.String(), t.Remarks, t.EditedBy, t.FleetChange, t.PlateAtTripTime,
		}
	}
	if err := r.writeSheet(ctx, TripsSheet, domain.TripColumns, values); err != nil {
		return fmt.Errorf("repo.workbookRepo.SaveTrips: %w", err)
	}
	return nil
}

// LoadVehicles reads the Vehicles sheet. An empty plate cell loads as an
// unset plate.
func (r *workbookRepo) LoadVehicles(ctx context.Context) ([]domain.Vehicle, error) {
	rows, err := r.readSheet(ctx, VehiclesSheet)
	if err != nil {
		return nil, fmt.Errorf("repo.workbookRepo.LoadVehicles: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	col := headerIndex(rows[0])
	var vehicles []domain.Vehicle
	for _, row := range rows[1:] {
		id := col.cell(row, domain.ColVehicle)
		if id == "" {
			continue
		}
		v := domain.Vehicle{ID: id, Comments: col.cell(row, domain.ColComments)}
		if plate := col.cell(row, domain.ColLicensePlate); plate != "" {
			v.LicensePlate = &plate
		}
		vehicles = append(vehicles, v)
	}
	return vehicles, nil
}

// SaveVehicles rewrites the Vehicles sheet, leaving the Trips sheet as is.
func (r *workbookRepo) SaveVehicles(ctx context.Context, vehicles []domain.Vehicle) error {
	values := make([][]any, len(vehicles))
	for i, v := range vehicles {
		plate := ""
		if v.LicensePlate != nil {
			plate = *v.LicensePlate
		}
		values[i] = []any{v.ID, plate, v.Comments}
	}
	if err := r.writeSheet(ctx, VehiclesSheet, domain.VehicleColumns, values); err != nil {
		return fmt.Errorf("repo.workbookRepo.SaveVehicles: %w", err)
	}
	return nil
}

// readSheet returns every row of sheet as strings, header first.
func (r *workbookRepo) readSheet(ctx context.Context, sheet string) ([][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	f, err := excelize.OpenFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", r.path, err)
	}
	defer f.Close()

	if idx, _ := f.GetSheetIndex(sheet); idx < 0 {
		return nil, nil
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	return rows, nil
}

// writeSheet replaces sheet with header plus values and saves the workbook.
func (r *workbookRepo) writeSheet(ctx context.Context, sheet string, header []string, values [][]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	fresh := false
	f, err := excelize.OpenFile(r.path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		f, fresh = excelize.NewFile(), true
	case err != nil:
		return fmt.Errorf("open %s: %w", r.path, err)
	}
	defer f.Close()

	// excelize refuses to delete a workbook's only sheet, so the old sheet is
	// renamed out of the way first and dropped once its replacement exists.
	if idx, _ := f.GetSheetIndex(sheet); idx >= 0 {
		old := sheet + "~old"
		if err := f.SetSheetName(sheet, old); err != nil {
			return fmt.Errorf("rename sheet %s: %w", sheet, err)
		}
		if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("create sheet %s: %w", sheet, err)
		}
		if err := f.DeleteSheet(old); err != nil {
			return fmt.Errorf("drop sheet %s: %w", old, err)
		}
	} else if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create sheet %s: %w", sheet, err)
	}
	if fresh {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return fmt.Errorf("drop default sheet: %w", err)
		}
	}

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("stream sheet %s: %w", sheet, err)
	}
	head := make([]any, len(header))
	for i, h := range header {
		head[i] = h
	}
	if err := sw.SetRow("A1", head); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, row := range values {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush sheet %s: %w", sheet, err)
	}

	if err := f.SaveAs(r.path); err != nil {
		return fmt.Errorf("save %s: %w", r.path, err)
	}
	return nil
}

// columns maps a header name to its column index.
type columns map[string]int

func headerIndex(header []string) columns {
	col := make(columns, len(header))
	for i, h := range header {
		col[strings.TrimSpace(h)] = i
	}
	return col
}

// cell returns the trimmed value of the named column, or "" when the column
// is missing or the row is short.
func (c columns) cell(row []string, name string) string {
	i, ok := c[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func blankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
