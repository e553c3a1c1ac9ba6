package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"storepress/internal/session"
)

// withSession injects session data the way LoadSession would.
func withSession(r *http.Request, data *session.Data) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), SessionKey, data))
}

func TestRequireAuthRejectsAnonymous(t *testing.T) {
	handler := RequireAuth(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/admin/me", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want 401", rec.Code)
	}
}

func TestRequireAuthPassesAuthenticated(t *testing.T) {
	handler := RequireAuth(okHandler())

	req := withSession(httptest.NewRequest(http.MethodGet, "/admin/me", nil),
		&session.Data{UserID: uuid.New(), Role: "editor"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status: got %d, want 200", rec.Code)
	}
}

func TestRequire2FA(t *testing.T) {
	handler := Require2FA(okHandler())

	pending := withSession(httptest.NewRequest(http.MethodGet, "/admin/themes", nil),
		&session.Data{UserID: uuid.New(), TwoFADone: false})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, pending)
	if rec.Code != http.StatusForbidden {
		t.Errorf("pending 2FA: got %d, want 403", rec.Code)
	}

	verified := withSession(httptest.NewRequest(http.MethodGet, "/admin/themes", nil),
		&session.Data{UserID: uuid.New(), TwoFADone: true})
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, verified)
	if rec.Code != http.StatusOK {
		t.Errorf("verified 2FA: got %d, want 200", rec.Code)
	}
}

func TestRequireAdmin(t *testing.T) {
	handler := RequireAdmin(okHandler())

	editor := withSession(httptest.NewRequest(http.MethodGet, "/admin/users", nil),
		&session.Data{UserID: uuid.New(), Role: "editor", TwoFADone: true})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, editor)
	if rec.Code != http.StatusForbidden {
		t.Errorf("editor: got %d, want 403", rec.Code)
	}

	admin := withSession(httptest.NewRequest(http.MethodGet, "/admin/users", nil),
		&session.Data{UserID: uuid.New(), Role: "admin", TwoFADone: true})
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, admin)
	if rec.Code != http.StatusOK {
		t.Errorf("admin: got %d, want 200", rec.Code)
	}
}

func TestSessionFromCtxWithoutSession(t *testing.T) {
	if SessionFromCtx(context.Background()) != nil {
		t.Error("expected nil for a context without a session")
	}
}
