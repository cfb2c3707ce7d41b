package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/fleet-ledger/internal/domain"
)

// TripRequest is the body of POST /trips and PUT /trips/{id}.
// EditedBy and FleetChange are only honoured by updates.
type TripRequest struct {
	Date        *openapi_types.Date `json:"date"`
	Vehicle     string              `json:"vehicle"`
	StartKM     *int64              `json:"start_km"`
	EndKM       *int64              `json:"end_km"`
	Driver      string              `json:"driver"`
	Route       []string            `json:"route"`
	Remarks     string              `json:"remarks"`
	EditedBy    string              `json:"edited_by"`
	FleetChange string              `json:"fleet_change"`
}

// TripList is the body of GET /trips.
type TripList struct {
	Data []domain.Trip `json:"data"`
}

// CreateTrip handles POST /trips.
func (s *Server) CreateTrip(w http.ResponseWriter, r *http.Request) {
	in, ok := decodeTripRequest(w, r)
	if !ok {
		return
	}

	result, err := s.ledger.AddTrip(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// ListTrips handles GET /trips. Trips are returned in insertion order.
func (s *Server) ListTrips(w http.ResponseWriter, r *http.Request) {
	trips := s.ledger.Trips(r.Context())
	if trips == nil {
		trips = []domain.Trip{}
	}
	writeJSON(w, http.StatusOK, TripList{Data: trips})
}

// GetTrip handles GET /trips/{id}.
func (s *Server) GetTrip(w http.ResponseWriter, r *http.Request) {
	id, ok := tripID(w, r)
	if !ok {
		return
	}

	trip, err := s.ledger.Trip(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			notFound(w, "trip not found")
			return
		}
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, trip)
}

// UpdateTrip handles PUT /trips/{id}.
func (s *Server) UpdateTrip(w http.ResponseWriter, r *http.Request) {
	id, ok := tripID(w, r)
	if !ok {
		return
	}
	in, ok := decodeTripRequest(w, r)
	if !ok {
		return
	}

	result, err := s.ledger.UpdateTrip(r.Context(), id, in)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			notFound(w, "trip not found")
			return
		}
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// DeleteTrip handles DELETE /trips/{id}. The body carries the removed trip.
func (s *Server) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	id, ok := tripID(w, r)
	if !ok {
		return
	}

	result, err := s.ledger.DeleteTrip(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			notFound(w, "trip not found")
			return
		}
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// --- mapping helpers --------------------------------------------------------

// tripID binds the {id} path parameter, answering 400 when it is not a uuid.
func tripID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	var id openapi_types.UUID
	err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Required: true})
	if err != nil {
		badRequest(w, fmt.Sprintf("invalid trip id: %v", err))
		return uuid.Nil, false
	}
	return id, true
}

// decodeTripRequest reads a TripRequest body into a domain.TripInput.
// Malformed JSON is a 400; a missing required field is a 422.
func decodeTripRequest(w http.ResponseWriter, r *http.Request) (domain.TripInput, bool) {
	var body TripRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeErrorBody(w, http.StatusRequestEntityTooLarge, "body_too_large", "request body too large")
			return domain.TripInput{}, false
		}
		badRequest(w, "request body must be a JSON trip")
		return domain.TripInput{}, false
	}

	var missing string
	switch {
	case body.Date == nil:
		missing = "date"
	case body.StartKM == nil:
		missing = "start_km"
	case body.EndKM == nil:
		missing = "end_km"
	}
	if missing != "" {
		writeErrorBody(w, http.StatusUnprocessableEntity, "validation_error", missing+" is required")
		return domain.TripInput{}, false
	}

	return domain.TripInput{
		Date:        domain.DateOf(body.Date.Time),
		Vehicle:     body.Vehicle,
		StartKM:     *body.StartKM,
		EndKM:       *body.EndKM,
		Driver:      body.Driver,
		Route:       domain.NewRoute(body.Route...),
		Remarks:     body.Remarks,
		EditedBy:    body.EditedBy,
		FleetChange: body.FleetChange,
	}, true
}
