package domain

// Column names shared by the workbook sheets and the full CSV export.
// Readers locate columns by header name, so order only matters for writers.
const (
	ColID              = "id"
	ColDate            = "Date"
	ColVehicle         = "Vehicle"
	ColStartKM         = "Start KM"
	ColEndKM           = "End KM"
	ColAccumulatedKM   = "Accumulated KM"
	ColDriver          = "Driver"
	ColRoute           = "Route"
	ColRemarks         = "Remarks"
	ColEditedBy        = "Edited By"
	ColFleetChange     = "Fleet Change"
	ColPlateAtTripTime = "License Plate at Trip Time"

	ColLicensePlate = "License Plate"
	ColComments     = "Comments"

	ColPeriodAccumulatedKM = "Accumulated KM (Period)"
	ColStop                = "Stop"
	ColCount               = "Count"
)

// TripColumns is the column order of the trips sheet and the full export.
var TripColumns = []string{
	ColID, ColDate, ColVehicle, ColStartKM, ColEndKM, ColAccumulatedKM,
	ColDriver, ColRoute, ColRemarks, ColEditedBy, ColFleetChange, ColPlateAtTripTime,
}

// VehicleColumns is the column order of the vehicles sheet.
var VehicleColumns = []string{ColVehicle, ColLicensePlate, ColComments}

// ReportColumns is the column order of the filtered trip report.
var ReportColumns = []string{
	ColDate, ColVehicle, ColStartKM, ColEndKM, ColAccumulatedKM,
	ColPeriodAccumulatedKM, ColDriver, ColRoute, ColRemarks,
}

// StopCountColumns is the column order of the stop count export.
var StopCountColumns = []string{ColStop, ColCount}
