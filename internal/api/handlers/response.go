package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"order-service/internal/order"
	"order-service/internal/repository"
	"order-service/internal/service"
	"order-service/internal/shipping"
)

type apiError struct {
	Error   string      `json:"error"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if v == nil {
		return
	}

	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string, details interface{}) {
	writeJSON(w, status, apiError{
		Error:   code,
		Message: message,
		Details: details,
	})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid json body", map[string]any{"error": err.Error()})
		return false
	}

	if err := dec.Decode(&struct{}{}); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid json body", map[string]any{"error": "extra data after json"})
		return false
	}

	return true
}

// writeDomainError maps the error taxonomy onto HTTP statuses: not-found
// to 404, bad input to 400, business-rule refusals to 422 and everything
// unexpected to a generic 500. An unrecognized order status is a
// data-integrity bug and is logged at error level before the 500.
func writeDomainError(w http.ResponseWriter, log *zap.Logger, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error(), nil)
	case errors.Is(err, repository.ErrInvalidInput),
		errors.Is(err, shipping.ErrUnsupportedMethod),
		errors.Is(err, shipping.ErrInvalidSubtotal):
		writeError(w, http.StatusBadRequest, "invalid_input", err.Error(), nil)
	case errors.Is(err, repository.ErrDuplicate):
		writeError(w, http.StatusConflict, "duplicate", err.Error(), nil)
	case errors.Is(err, repository.ErrInsufficientStock),
		errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, repository.ErrStatusConflict):
		writeError(w, http.StatusUnprocessableEntity, "business_rule_violation", err.Error(), nil)
	case errors.Is(err, order.ErrUnknownStatus):
		log.Error("data integrity violation", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error", nil)
	default:
		log.Error("unexpected error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error", nil)
	}
}
