// Package handler implements the HTTP layer: request decoding, response
// encoding, and the mapping from the service error taxonomy to status codes.
// No business rules live here.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/newsdesk/internal/apperror"
)

// errorResponse is the JSON body of every non-2xx response.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			// Headers are already out; nothing left to do but log.
			slog.Error("encoding response body", "error", err)
		}
	}
}

// writeError maps a service error onto an HTTP status via the apperror
// sentinels. Unrecognized errors become an opaque 500 — internal details
// never reach the client.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status, code := statusForError(err)

	resp := errorResponse{Error: code, Message: err.Error()}
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		resp.Field = appErr.Field
	}

	if status == http.StatusInternalServerError {
		logger.Error("internal error", "error", err)
		resp.Message = "internal server error"
	}

	writeJSON(w, status, resp)
}

func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, apperror.ErrValidation):
		return http.StatusBadRequest, "validation_error"
	case errors.Is(err, apperror.ErrUnauthenticated):
		return http.StatusUnauthorized, "unauthenticated"
	case errors.Is(err, apperror.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, apperror.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, apperror.ErrConflict):
		return http.StatusConflict, "conflict"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// decodeJSON reads the request body into v. A malformed body is a validation
// error, not a 500.
func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperror.ValidationFailed("", "invalid JSON request body")
	}
	return nil
}
