package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRequestID(t *testing.T) {
	t.Parallel()
	mw, _ := newTestMiddleware(t)

	t.Run("generates one", func(t *testing.T) {
		t.Parallel()
		var fromCtx string
		h := mw.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fromCtx = GetRequestID(r.Context())
		}))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		if fromCtx == "" {
			t.Fatal("no request ID in context")
		}
		if got := rec.Header().Get("X-Request-ID"); got != fromCtx {
			t.Errorf("response header = %q, context = %q", got, fromCtx)
		}
	})

	t.Run("keeps incoming", func(t *testing.T) {
		t.Parallel()
		var fromCtx string
		h := mw.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fromCtx = GetRequestID(r.Context())
		}))

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("X-Request-ID", "req-42")
		h.ServeHTTP(httptest.NewRecorder(), req)

		if fromCtx != "req-42" {
			t.Errorf("request ID = %q, want req-42", fromCtx)
		}
	})
}

func TestTiming(t *testing.T) {
	t.Parallel()
	mw, _ := newTestMiddleware(t)

	before := time.Now()
	var start time.Time
	h := mw.Timing(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start = GetStartTime(r.Context())
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	if start.Before(before) || start.After(time.Now()) {
		t.Errorf("start time %v outside the request window", start)
	}
}
