package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func TestRequestLoggerPropagatesRequestID(t *testing.T) {
	logger, hook := test.NewNullLogger()
	var seen logrus.FieldLogger
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = LoggerFrom(r.Context(), nil)
		w.WriteHeader(http.StatusTeapot)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/fitness/status", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	rr := httptest.NewRecorder()
	RequestLogger(logger, next).ServeHTTP(rr, req)

	if rr.Header().Get(RequestIDHeader) != "req-42" {
		t.Fatalf("expected request id to be echoed, got %q", rr.Header().Get(RequestIDHeader))
	}
	if seen == nil {
		t.Fatalf("expected request-scoped logger in context")
	}
	entry := hook.LastEntry()
	if entry == nil {
		t.Fatalf("expected a log entry")
	}
	if entry.Data["request_id"] != "req-42" || entry.Data["status"] != http.StatusTeapot {
		t.Fatalf("unexpected log fields %v", entry.Data)
	}
}

func TestRequestLogCarriesOwnerID(t *testing.T) {
	logger, hook := test.NewNullLogger()
	s := newLoggedTestServer(t, nil, logger)

	rr := s.do(t, http.MethodGet, "/api/fitness/activities", 42, nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rr.Code)
	}
	entry := hook.LastEntry()
	if entry == nil {
		t.Fatalf("expected a log entry")
	}
	if entry.Data["owner_id"] != int64(42) {
		t.Fatalf("expected owner_id 42 on the completion line, got %v", entry.Data)
	}
}

func TestCORSPreflight(t *testing.T) {
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true })

	req := httptest.NewRequest(http.MethodOptions, "/api/fitness/activities", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rr := httptest.NewRecorder()
	CORS("http://localhost:3000", next).ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204 got %d", rr.Code)
	}
	if called {
		t.Fatalf("preflight must not reach the handler")
	}
	if rr.Header().Get("Access-Control-Allow-Origin") != "http://localhost:3000" {
		t.Fatalf("missing allow-origin header")
	}
}

func TestCORSIgnoresOtherOrigins(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/api/fitness/status", nil)
	req.Header.Set("Origin", "http://evil.test")
	rr := httptest.NewRecorder()
	CORS("http://localhost:3000", next).ServeHTTP(rr, req)

	if rr.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Fatalf("unexpected allow-origin header")
	}
}
