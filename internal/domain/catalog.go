package domain

import (
	"slices"
)

// AllVehicles is the vehicle filter value that disables vehicle filtering.
const AllVehicles = "All"

// Region groups the stores an operator picks a route from.
type Region struct {
	Name   string   `json:"name" yaml:"name"`
	Stores []string `json:"stores" yaml:"stores"`
}

// Catalog is the closed set of vehicles, drivers and stores that trip input
// is checked against.
type Catalog struct {
	Vehicles []string `json:"vehicles" yaml:"vehicles"`
	Drivers  []string `json:"drivers" yaml:"drivers"`
	Regions  []Region `json:"regions" yaml:"regions"`
}

// HasVehicle reports whether id is a known vehicle.
func (c Catalog) HasVehicle(id string) bool {
	return slices.Contains(c.Vehicles, id)
}

// HasDriver reports whether name is a known driver.
func (c Catalog) HasDriver(name string) bool {
	return slices.Contains(c.Drivers, name)
}

// HasStore reports whether name is a store in any region.
func (c Catalog) HasStore(name string) bool {
	for _, r := range c.Regions {
		if slices.Contains(r.Stores, name) {
			return true
		}
	}
	return false
}

// AllStores returns every store across regions, sorted by name.
func (c Catalog) AllStores() []string {
	var out []string
	for _, r := range c.Regions {
		out = append(out, r.Stores...)
	}
	slices.Sort(out)
	return slices.Compact(out)
}
