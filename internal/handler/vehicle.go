package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pkordes/fleet-ledger/internal/domain"
	"github.com/pkordes/fleet-ledger/internal/middleware"
)

// PlateRequest is the body of PUT /vehicles/{vehicle}.
type PlateRequest struct {
	LicensePlate string `json:"license_plate"`
	Comments     string `json:"comments"`
}

// VehicleList is the body of GET /vehicles.
type VehicleList struct {
	Data []domain.Vehicle `json:"data"`
}

// LatestEndResponse is the body of GET /vehicles/{vehicle}/latest-end.
type LatestEndResponse struct {
	Vehicle string `json:"vehicle"`
	EndKM   int64  `json:"end_km"`
}

// ListVehicles handles GET /vehicles.
func (s *Server) ListVehicles(w http.ResponseWriter, r *http.Request) {
	vehicles := s.ledger.Vehicles(r.Context())
	if vehicles == nil {
		vehicles = []domain.Vehicle{}
	}
	writeJSON(w, http.StatusOK, VehicleList{Data: vehicles})
}

// GetLatestEnd handles GET /vehicles/{vehicle}/latest-end, the reading a new
// trip for the vehicle should start from.
func (s *Server) GetLatestEnd(w http.ResponseWriter, r *http.Request) {
	vehicle := chi.URLParam(r, "vehicle")
	km, ok := s.ledger.LatestEndKM(r.Context(), vehicle)
	if !ok {
		notFound(w, "no trips recorded for vehicle")
		return
	}
	writeJSON(w, http.StatusOK, LatestEndResponse{Vehicle: vehicle, EndKM: km})
}

// SetPlate handles PUT /vehicles/{vehicle}. Admin only; the token subject is
// recorded as the actor of any fleet-change event.
func (s *Server) SetPlate(w http.ResponseWriter, r *http.Request) {
	var body PlateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		badRequest(w, "request body must be a JSON plate update")
		return
	}

	change, err := s.ledger.SetPlate(r.Context(), chi.URLParam(r, "vehicle"), body.LicensePlate, body.Comments,
		middleware.Actor(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, change)
}

// GetCatalog handles GET /catalog: the vehicles, drivers and stores trip
// input is checked against.
func (s *Server) GetCatalog(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.ledger.Catalog())
}
