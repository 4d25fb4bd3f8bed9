package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"fintrack/internal/core"
)

// listResponse is the wire envelope of a List call.
type listResponse struct {
	Data  []core.Transaction `json:"data"`
	Total int64              `json:"total"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type validationResponse struct {
	Errors []core.FieldError `json:"errors"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// writeError maps the error taxonomy to status codes: validation to 400
// with per-field detail, unresolved ids to 404, everything else to a
// generic 500 that hides the internal message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	if ve, ok := core.AsValidation(err); ok {
		writeJSON(w, http.StatusBadRequest, validationResponse{Errors: ve.Fields})
		return
	}
	if errors.Is(err, core.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, messageResponse{Message: "Not found"})
		return
	}
	slog.ErrorContext(r.Context(), "Unhandled request error",
		"error", err, "method", r.Method, "path", r.URL.Path)
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Server Error"})
}
