package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/pkordes/fleet-ledger/internal/domain"
	"github.com/pkordes/fleet-ledger/internal/service"
)

// ErrorDetail is the body of every error response:
//
//	{"error": {"code": "validation_error", "message": "end must not precede start"}}
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps ErrorDetail under the "error" key.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// writeJSON encodes v as the response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErrorBody(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: ErrorDetail{Code: code, Message: message}})
}

// badRequest answers a request rejected before reaching the service layer
// (malformed JSON, unparseable parameters).
func badRequest(w http.ResponseWriter, message string) {
	writeErrorBody(w, http.StatusBadRequest, "bad_request", message)
}

// notFound answers a lookup that found nothing. The caller supplies the
// message because the handler knows what was being looked up.
func notFound(w http.ResponseWriter, message string) {
	writeErrorBody(w, http.StatusNotFound, "not_found", message)
}

// writeError maps a service error to a status code and error body.
// Unrecognised errors are logged and answered with an opaque 500.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeErrorBody(w, http.StatusUnprocessableEntity, "validation_error", unwrapMessage(err, domain.ErrValidation))
	case errors.Is(err, domain.ErrNotFound):
		writeErrorBody(w, http.StatusNotFound, "not_found", unwrapMessage(err, domain.ErrNotFound))
	case errors.Is(err, service.ErrUnauthorized):
		writeErrorBody(w, http.StatusUnauthorized, "unauthorized", "invalid credentials")
	case errors.Is(err, service.ErrAdminDisabled):
		writeErrorBody(w, http.StatusForbidden, "admin_disabled", "admin access is not configured")
	default:
		s.log.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeErrorBody(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

// unwrapMessage extracts the human-readable part that follows the sentinel
// in a wrapped error.
// e.g. "service.LedgerService.AddTrip: validation error: end must not precede start"
// → "end must not precede start"
func unwrapMessage(err, sentinel error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	marker := sentinel.Error() + ": "
	if i := strings.LastIndex(msg, marker); i >= 0 {
		return msg[i+len(marker):]
	}
	if i := strings.LastIndex(msg, ": "); i >= 0 {
		return msg[i+2:]
	}
	return msg
}
