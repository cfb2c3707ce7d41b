package handler

import (
	"encoding/json"
	"net/http"
	"time"
)

// LoginRequest is the body of POST /admin/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries a bearer token for the admin-only routes.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AdminLogin handles POST /admin/login.
func (s *Server) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var body LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		badRequest(w, "request body must be JSON credentials")
		return
	}

	token, expires, err := s.auth.Login(r.Context(), body.Username, body.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, LoginResponse{Token: token, ExpiresAt: expires.UTC()})
}
