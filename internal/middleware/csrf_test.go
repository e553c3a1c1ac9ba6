package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestCSRFSetsCookieOnFirstVisit(t *testing.T) {
	handler := CSRF(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/admin/themes", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status: got %d, want 200", rec.Code)
	}

	var found bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == CSRFCookieName && c.Value != "" {
			found = true
		}
	}
	if !found {
		t.Error("expected a CSRF cookie to be set")
	}
}

func TestCSRFRejectsMutationWithoutHeader(t *testing.T) {
	handler := CSRF(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/admin/themes", nil)
	req.AddCookie(&http.Cookie{Name: CSRFCookieName, Value: "token-value"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status: got %d, want 403", rec.Code)
	}
}

func TestCSRFAcceptsMatchingToken(t *testing.T) {
	handler := CSRF(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/admin/themes", nil)
	req.AddCookie(&http.Cookie{Name: CSRFCookieName, Value: "token-value"})
	req.Header.Set(CSRFHeaderName, "token-value")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status: got %d, want 200", rec.Code)
	}
}

func TestCSRFSkipsSafeMethods(t *testing.T) {
	handler := CSRF(okHandler())

	for _, method := range []string{http.MethodGet, http.MethodHead, http.MethodOptions} {
		req := httptest.NewRequest(method, "/admin/themes", nil)
		req.AddCookie(&http.Cookie{Name: CSRFCookieName, Value: "token-value"})
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("%s: got %d, want 200", method, rec.Code)
		}
	}
}
