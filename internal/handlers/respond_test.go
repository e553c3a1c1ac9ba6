package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"storepress/internal/models"
)

func TestRespondErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantKind   string
	}{
		{"not found", models.ErrNotFound, http.StatusNotFound, "not_found"},
		{"version not found", models.ErrVersionNotFound, http.StatusNotFound, "version_not_found"},
		{"conflict", models.ErrConflict, http.StatusConflict, "conflict"},
		{"nothing to publish", models.ErrNothingToPublish, http.StatusUnprocessableEntity, "nothing_to_publish"},
		{"validation", models.Validation("bad input"), http.StatusBadRequest, "validation_failure"},
		{"wrapped sentinel", errors.New("storage: " + models.ErrConflict.Error()), http.StatusInternalServerError, "internal"},
		{"unknown", errors.New("disk on fire"), http.StatusInternalServerError, "internal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			respondError(rec, tt.err)

			if rec.Code != tt.wantStatus {
				t.Errorf("status: got %d, want %d", rec.Code, tt.wantStatus)
			}

			var body errorBody
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("unmarshal body: %v", err)
			}
			if body.Error != tt.wantKind {
				t.Errorf("kind: got %q, want %q", body.Error, tt.wantKind)
			}
			if body.Message == "" {
				t.Error("expected a message")
			}
		})
	}
}

func TestRespondErrorWrappedIs(t *testing.T) {
	rec := httptest.NewRecorder()
	respondError(rec, errors.Join(errors.New("context"), models.ErrNotFound))
	if rec.Code != http.StatusNotFound {
		t.Errorf("wrapped ErrNotFound: got %d, want 404", rec.Code)
	}
}
