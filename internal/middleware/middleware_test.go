// internal/middleware/middleware_test.go
//
// Unit-tests for ForceHTTPS, Security, and Logger.

package middleware

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"

	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/Feleck-Project/feleck-client/internal/logger"
)

var ok = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

func TestForceHTTPS(t *testing.T) {
	h := ForceHTTPS(true)(ok)

	req := httptest.NewRequest(http.MethodGet, "http://feleck.example/login?x=1", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusPermanentRedirect {
		t.Fatalf("status = %d, want 308", rr.Code)
	}
	if loc := rr.Header().Get("Location"); loc != "https://feleck.example/login?x=1" {
		t.Fatalf("Location = %q", loc)
	}

	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodGet, "http://localhost:8080/login", nil),
		func() *http.Request {
			r := httptest.NewRequest(http.MethodGet, "http://feleck.example/login", nil)
			r.Header.Set("X-Forwarded-Proto", "https")
			return r
		}(),
		func() *http.Request {
			r := httptest.NewRequest(http.MethodGet, "https://feleck.example/login", nil)
			r.TLS = &tls.ConnectionState{}
			return r
		}(),
	} {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("%s: status = %d, want 200", req.URL, rr.Code)
		}
	}
}

func TestForceHTTPS_Disabled(t *testing.T) {
	rr := httptest.NewRecorder()
	ForceHTTPS(false)(ok).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "http://feleck.example/", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
}

func TestSecurity(t *testing.T) {
	h := Security(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "max-age=60")
		w.WriteHeader(http.StatusOK)
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if rr.Header().Get("X-Frame-Options") != "DENY" {
		t.Fatalf("X-Frame-Options missing")
	}
	if rr.Header().Get("Cache-Control") != "max-age=60" {
		t.Fatalf("handler header overwritten: %q", rr.Header().Get("Cache-Control"))
	}
}

func TestLogger_AttachesContextLogger(t *testing.T) {
	base := zap.NewNop().Sugar()
	var got *zap.SugaredLogger
	h := chimw.RequestID(Logger(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = logger.FromContext(r.Context())
	})))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if got == nil || got == zap.S() {
		t.Fatalf("request logger not attached")
	}
}
