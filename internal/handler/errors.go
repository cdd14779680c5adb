package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/lucamoretti/adventure-together/internal/domain"
)

// ErrorDetail is the machine-readable error body every non-2xx response carries.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps ErrorDetail under an "error" key.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// respondJSON writes v as the JSON response body with the given status.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck — nothing useful to do once the status line is out.
	json.NewEncoder(w).Encode(v)
}

// respondError maps a service error onto the HTTP status and error code the
// API contract promises. Unknown errors become an opaque 500 so internals
// never leak to clients.
func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		respondJSON(w, http.StatusNotFound, ErrorResponse{ErrorDetail{"not_found", unwrapMessage(err)}})
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrInvalidPartySize):
		respondJSON(w, http.StatusUnprocessableEntity, ErrorResponse{ErrorDetail{"validation_error", unwrapMessage(err)}})
	case errors.Is(err, domain.ErrTripNotBookable):
		respondJSON(w, http.StatusConflict, ErrorResponse{ErrorDetail{"trip_not_bookable", unwrapMessage(err)}})
	case errors.Is(err, domain.ErrInsufficientCapacity):
		respondJSON(w, http.StatusConflict, ErrorResponse{ErrorDetail{"insufficient_capacity", unwrapMessage(err)}})
	case errors.Is(err, domain.ErrIllegalTransition):
		respondJSON(w, http.StatusConflict, ErrorResponse{ErrorDetail{"illegal_transition", unwrapMessage(err)}})
	case errors.Is(err, domain.ErrPaymentDeclined):
		respondJSON(w, http.StatusBadGateway, ErrorResponse{ErrorDetail{"payment_declined", unwrapMessage(err)}})
	default:
		respondJSON(w, http.StatusInternalServerError, ErrorResponse{ErrorDetail{"internal", "internal server error"}})
	}
}

// respondBadRequest rejects a request before it reaches the service layer
// (malformed body, bad UUID, unknown enum value).
func respondBadRequest(w http.ResponseWriter, message string) {
	respondJSON(w, http.StatusBadRequest, ErrorResponse{ErrorDetail{"bad_request", message}})
}

// unwrapMessage extracts the human-readable tail from a wrapped sentinel error.
// e.g. "service.TripService.Create: validation error: price must be positive"
// → "validation error: price must be positive".
func unwrapMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	// Drop "service.X.Y: " and "repo.X.Y: " call-site prefixes.
	for {
		i := strings.Index(msg, ": ")
		if i < 0 {
			break
		}
		head := msg[:i]
		if !strings.HasPrefix(head, "service.") && !strings.HasPrefix(head, "repo.") {
			break
		}
		msg = msg[i+2:]
	}
	return msg
}

// pathUUID parses the named chi URL parameter as a UUID.
func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, name))
}
