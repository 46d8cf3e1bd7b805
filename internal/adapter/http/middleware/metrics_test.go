package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsMiddlewareRecordsRequest(t *testing.T) {
	testCases := []struct {
		name       string
		method     string
		path       string
		statusCode int
		label      string
	}{
		{
			name:       "uses route pattern",
			method:     http.MethodGet,
			path:       "/api/v1/reports/export",
			statusCode: http.StatusTeapot,
			label:      "/api/v1/reports/export",
		},
		{
			name:       "implicit 200",
			method:     http.MethodGet,
			path:       "/health",
			statusCode: 0,
			label:      "/health",
		},
		{
			name:       "unmatched path collapses",
			method:     http.MethodGet,
			path:       "/does/not/exist",
			statusCode: http.StatusNotFound,
			label:      "unmatched",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			httpRequestsTotal.Reset()
			httpRequestDuration.Reset()
			httpRequestsInFlight.Set(0)

			handlerCalled := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				handlerCalled = true
				if tc.statusCode != 0 {
					w.WriteHeader(tc.statusCode)
				}
			})

			r := chi.NewRouter()
			r.Use(Metrics)
			r.Get("/api/v1/reports/export", next)
			r.Get("/health", next)

			req := httptest.NewRequest(tc.method, tc.path, nil)
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)

			if tc.label != "unmatched" && !handlerCalled {
				t.Fatalf("next handler was not invoked")
			}

			if got := testutil.ToFloat64(httpRequestsInFlight); got != 0 {
				t.Fatalf("expected in-flight gauge to return to 0, got %v", got)
			}

			status := tc.statusCode
			if status == 0 {
				status = http.StatusOK
			}
			counter := httpRequestsTotal.WithLabelValues(tc.method, tc.label, strconv.Itoa(status))
			if got := testutil.ToFloat64(counter); got != 1 {
				t.Fatalf("expected counter to be 1, got %v", got)
			}
		})
	}
}

func TestRouteLabelWithoutChi(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/plain", nil)
	if got := routeLabel(req); got != "/plain" {
		t.Fatalf("routeLabel() = %q, want /plain", got)
	}
}
