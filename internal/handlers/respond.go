// Package handlers contains the HTTP handlers for the storepress server.
// Handlers are grouped by concern (admin, auth, public, subscribe) and
// receive their dependencies through the handler struct.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"storepress/internal/models"
)

// errorBody is the JSON shape of every error response: the taxonomy kind
// plus a human-readable message.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// respondJSON writes v as a JSON response with the given status.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response failed", "error", err)
	}
}

// respondError maps a workflow or store error onto the error taxonomy.
// Anything unrecognized is an internal storage failure: logged with
// detail, surfaced without it.
func respondError(w http.ResponseWriter, err error) {
	var validation *models.ValidationError

	switch {
	case errors.Is(err, models.ErrVersionNotFound):
		respondJSON(w, http.StatusNotFound, errorBody{Error: "version_not_found", Message: "no version exists at that index"})
	case errors.Is(err, models.ErrNotFound):
		respondJSON(w, http.StatusNotFound, errorBody{Error: "not_found", Message: "the requested resource does not exist"})
	case errors.Is(err, models.ErrConflict):
		respondJSON(w, http.StatusConflict, errorBody{Error: "conflict", Message: "the resource was modified concurrently, retry the operation"})
	case errors.Is(err, models.ErrNothingToPublish):
		respondJSON(w, http.StatusUnprocessableEntity, errorBody{Error: "nothing_to_publish", Message: "the template has no draft content to publish"})
	case errors.As(err, &validation):
		respondJSON(w, http.StatusBadRequest, errorBody{Error: "validation_failure", Message: validation.Message})
	default:
		slog.Error("request failed", "error", err)
		respondJSON(w, http.StatusInternalServerError, errorBody{Error: "internal", Message: "an unexpected error occurred"})
	}
}
