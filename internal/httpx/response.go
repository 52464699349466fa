// Package httpx holds the JSON response helpers and the single place where
// service errors are mapped onto HTTP status codes.
package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gymplanner/gymplanner/internal/apperr"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	var body []byte
	var err error
	if payload != nil {
		body, err = json.Marshal(payload)
		if err != nil {
			// best-effort error response; avoid writing partial JSON
			http.Error(w, `{"error":"encode_error"}`, http.StatusInternalServerError)
			return
		}
	} else {
		body = []byte("null")
	}
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		// nothing we can do at this point
		_ = err
	}
}

func JSONError(w http.ResponseWriter, status int, msg string, details any) {
	JSON(w, status, ErrorResponse{Error: msg, Details: details})
}

// Error maps a service error onto its HTTP status. Every failure path in
// the taxonomy produces a distinct, user-facing outcome.
func Error(w http.ResponseWriter, err error) {
	var ve *apperr.ValidationError
	switch {
	case errors.As(err, &ve):
		JSONError(w, http.StatusBadRequest, "validation_failed", ve.Violations)
	case errors.Is(err, apperr.ErrUnauthenticated):
		JSONError(w, http.StatusUnauthorized, "unauthenticated", nil)
	case errors.Is(err, apperr.ErrForbidden):
		JSONError(w, http.StatusForbidden, "forbidden", nil)
	case errors.Is(err, apperr.ErrNotFound):
		JSONError(w, http.StatusNotFound, "not_found", nil)
	case errors.Is(err, apperr.ErrConflict):
		JSONError(w, http.StatusConflict, "conflict", nil)
	default:
		JSONError(w, http.StatusInternalServerError, "internal_error", nil)
	}
}

// Decode reads a JSON request body into v.
func Decode(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}
