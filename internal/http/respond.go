package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"splittracker/internal/core"
)

type errorBody struct {
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// writeError maps the core error taxonomy onto status codes:
// invalid input 400, not found 404, store unavailable 503, anything
// else 500. The message is caller-facing; the underlying error only
// reaches the response for validation failures.
func writeError(w http.ResponseWriter, r *http.Request, err error, message string) {
	var status int
	body := errorBody{Message: message}
	switch {
	case errors.Is(err, core.ErrInvalidInput):
		status = http.StatusBadRequest
		body.Detail = err.Error()
	case errors.Is(err, core.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, core.ErrUnavailable):
		status = http.StatusServiceUnavailable
	default:
		status = http.StatusInternalServerError
	}

	if status >= 500 {
		slog.ErrorContext(r.Context(), message,
			"error", err, "method", r.Method, "url", r.URL.Path, "status", status)
	}
	writeJSON(w, status, body)
}
