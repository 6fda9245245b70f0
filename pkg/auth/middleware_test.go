package auth

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

func TestAPIKeyRequired(t *testing.T) {
	mw := Middleware(SecConfig{Keys: map[string]struct{}{"k1": {}}})
	h := mw(okHandler())

	r := httptest.NewRequest(http.MethodGet, "/v1/messages?group=true", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("no key: status = %d, want 401", w.Code)
	}

	r = httptest.NewRequest(http.MethodGet, "/v1/messages?group=true", nil)
	r.Header.Set("Authorization", "Bearer k1")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("bearer key: status = %d, want 200", w.Code)
	}

	r = httptest.NewRequest(http.MethodGet, "/v1/messages?group=true", nil)
	r.Header.Set("X-API-Key", "bogus")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, r)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("bad key: status = %d, want 401", w.Code)
	}
}

func TestQueryParamKey(t *testing.T) {
	mw := Middleware(SecConfig{Keys: map[string]struct{}{"k1": {}}})
	h := mw(okHandler())

	r := httptest.NewRequest(http.MethodGet, "/v1/feed?group=true&api_key=k1", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("query key: status = %d, want 200", w.Code)
	}
}

func TestHealthBypassesAuth(t *testing.T) {
	mw := Middleware(SecConfig{Keys: map[string]struct{}{"k1": {}}})
	h := mw(okHandler())

	for _, path := range []string{"/healthz", "/readyz"} {
		r := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		if w.Code != http.StatusOK {
			t.Fatalf("%s: status = %d, want 200", path, w.Code)
		}
	}
}

func TestRateLimit(t *testing.T) {
	mw := Middleware(SecConfig{AllowUnauth: true, RPS: 1, Burst: 2})
	h := mw(okHandler())

	var limited bool
	for i := 0; i < 5; i++ {
		r := httptest.NewRequest(http.MethodGet, "/v1/messages?group=true", nil)
		r.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		if w.Code == http.StatusTooManyRequests {
			limited = true
		}
	}
	if !limited {
		t.Fatal("burst exceeded but no request was rate limited")
	}
}

func TestCORSPreflight(t *testing.T) {
	mw := Middleware(SecConfig{Keys: map[string]struct{}{"k1": {}}, AllowedOrigins: []string{"http://app.local"}})
	h := mw(okHandler())

	r := httptest.NewRequest(http.MethodOptions, "/v1/messages", nil)
	r.Header.Set("Origin", "http://app.local")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	if w.Code != http.StatusNoContent {
		t.Fatalf("preflight: status = %d, want 204", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://app.local" {
		t.Fatalf("allow-origin = %q", got)
	}
}
