package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	return rr.Body.String()
}

func TestMetricsHandlerExposesPrometheusMetrics(t *testing.T) {
	metrics := NewMetrics()
	metrics.JobProcessed("ledger:integrity", "failed")

	body := scrape(t, metrics)
	assert.Contains(t, body, `odyssey_jobs_total{status="failed",task="ledger:integrity"} 1`)
	assert.Contains(t, body, "go_goroutines")
}

func TestMetricsMiddlewareRecordsRequest(t *testing.T) {
	metrics := NewMetrics()

	handler := metrics.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	routeCtx := chi.NewRouteContext()
	routeCtx.RoutePatterns = append(routeCtx.RoutePatterns, "/test")

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx)
	req = req.WithContext(ctx)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusTeapot, rr.Code)

	body := scrape(t, metrics)
	assert.Contains(t, body, `http_requests_total{code="418",route="/test"} 1`)
	assert.Contains(t, body, `http_request_duration_seconds_bucket{route="/test"`)
}

func TestLedgerMetrics(t *testing.T) {
	metrics := NewMetrics()
	metrics.JournalPosted("posted")
	metrics.JournalPosted("posted")
	metrics.JournalPosted("unbalanced")
	metrics.RecordCache("sales", true)
	metrics.RecordCache("sales", false)
	metrics.ObserveReportBuild("sales", 20*time.Millisecond)
	metrics.InvalidationFailed()

	body := scrape(t, metrics)
	assert.Contains(t, body, `odyssey_journal_posts_total{outcome="posted"} 2`)
	assert.Contains(t, body, `odyssey_journal_posts_total{outcome="unbalanced"} 1`)
	assert.Contains(t, body, `odyssey_report_cache_total{report="sales",result="hit"} 1`)
	assert.Contains(t, body, `odyssey_report_cache_total{report="sales",result="miss"} 1`)
	assert.True(t, strings.Contains(body, `odyssey_report_build_duration_seconds_count{report="sales"} 1`))
	assert.Contains(t, body, "odyssey_report_invalidation_failures_total 1")
}

func TestNilMetricsAreSafe(t *testing.T) {
	var metrics *Metrics
	metrics.JournalPosted("posted")
	metrics.RecordCache("pl", true)
	metrics.ObserveReportBuild("pl", time.Second)
	metrics.InvalidationFailed()

	rr := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}
