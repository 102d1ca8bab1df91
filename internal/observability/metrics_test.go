package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsMiddlewareRecordsRoutePattern(t *testing.T) {
	metrics := NewMetrics()

	r := chi.NewRouter()
	r.Use(metrics.Middleware)
	r.Get("/api/v1/bootcamps/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/bootcamps/abc", nil))
	require.Equal(t, http.StatusTeapot, rr.Code)

	metricsRR := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(metricsRR, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, metricsRR.Code)

	body := metricsRR.Body.String()
	assert.Contains(t, body, `devcamper_http_requests_total{code="418",method="GET",route="/api/v1/bootcamps/{id}"} 1`)
	assert.Contains(t, body, `devcamper_http_request_duration_seconds_bucket{route="/api/v1/bootcamps/{id}"`)
	assert.Contains(t, body, "devcamper_http_requests_in_flight 0")
	assert.Contains(t, body, "go_goroutines")
}

func TestRegistererExposesCustomCollectors(t *testing.T) {
	metrics := NewMetrics()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "devcamper_test_total", Help: "test"})
	metrics.Registerer().MustRegister(counter)
	counter.Inc()

	rr := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rr.Body.String(), "devcamper_test_total 1")
}

func TestNilMetricsIsInert(t *testing.T) {
	var metrics *Metrics
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {})
	rr := httptest.NewRecorder()
	metrics.Middleware(next).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}
