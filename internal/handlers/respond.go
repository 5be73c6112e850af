package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"vgate-backend/internal/domain"
	"vgate-backend/internal/validate"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps service errors onto HTTP status codes. Validation errors
// carry the full per-field message list.
func writeError(w http.ResponseWriter, err error) {
	var verrs validate.Errors
	if errors.As(err, &verrs) {
		writeJSON(w, http.StatusBadRequest, map[string]any{"errors": verrs.Messages()})
		return
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrDuplicateKey),
		errors.Is(err, domain.ErrPassAlreadyOpen):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized),
		errors.Is(err, domain.ErrAccountPending):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrBadCredentials):
		status = http.StatusUnauthorized
	}

	if status == http.StatusInternalServerError {
		writeJSON(w, status, map[string]string{"error": "Internal server error"})
		return
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
