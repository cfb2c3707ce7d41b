package domain

// Vehicle is a plate registry entry. A nil LicensePlate means the plate was
// never set, which is different from a plate explicitly cleared to "".
type Vehicle struct {
	ID           string  `json:"vehicle"`
	LicensePlate *string `json:"license_plate"`
	Comments     string  `json:"comments,omitempty"`
}

// PlateOrNA returns the plate, or PlateNotAvailable when unset or empty.
func (v Vehicle) PlateOrNA() string {
	if v.LicensePlate == nil || *v.LicensePlate == "" {
		return PlateNotAvailable
	}
	return *v.LicensePlate
}

// PlateChange is the outcome of setting a vehicle's plate.
// FleetChange is nil when the plate did not change.
type PlateChange struct {
	Vehicle     Vehicle `json:"vehicle"`
	FleetChange *Trip   `json:"fleet_change,omitempty"`
	Durable     bool    `json:"durable"`
	Warning     string  `json:"warning,omitempty"`
}
