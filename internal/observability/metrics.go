package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics mengumpulkan metrik Prometheus untuk aplikasi.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	reportDuration  *prometheus.HistogramVec
	reportCache     *prometheus.CounterVec
	journalPosts    *prometheus.CounterVec
	invalidations   prometheus.Counter
	jobsTotal       *prometheus.CounterVec
}

// NewMetrics menginisialisasi registry dan metrik dasar.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "odyssey_http_requests_total",
		Help: "Jumlah permintaan HTTP berdasarkan route dan status.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "odyssey_http_request_duration_seconds",
		Help:    "Durasi permintaan HTTP per route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	reportDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "odyssey_report_build_duration_seconds",
		Help:    "Durasi penyusunan laporan per jenis laporan.",
		Buckets: prometheus.DefBuckets,
	}, []string{"report"})
	reportCache := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "odyssey_report_cache_total",
		Help: "Jumlah akses cache laporan berdasarkan hasil (hit/miss).",
	}, []string{"report", "result"})
	journalPosts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "odyssey_journal_posts_total",
		Help: "Jumlah posting jurnal berdasarkan hasil.",
	}, []string{"outcome"})
	invalidations := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "odyssey_report_invalidation_failures_total",
		Help: "Jumlah posting jurnal yang gagal membatalkan cache laporan.",
	})
	jobs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "odyssey_jobs_total",
		Help: "Jumlah eksekusi job latar belakang berdasarkan task dan status.",
	}, []string{"task", "status"})
	registry.MustRegister(
		requests, duration, reportDuration, reportCache, journalPosts, invalidations, jobs,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return &Metrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:   requests,
		requestDuration: duration,
		reportDuration:  reportDuration,
		reportCache:     reportCache,
		journalPosts:    journalPosts,
		invalidations:   invalidations,
		jobsTotal:       jobs,
	}
}

// Handler mengembalikan http.Handler untuk endpoint /metrics.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware mencatat metrik untuk setiap permintaan HTTP.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(&recorder, r)
		route := routePattern(r)
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// ObserveReportBuild mencatat durasi penyusunan satu laporan.
func (m *Metrics) ObserveReportBuild(report string, d time.Duration) {
	if m == nil {
		return
	}
	m.reportDuration.WithLabelValues(report).Observe(d.Seconds())
}

// RecordCache mencatat hit atau miss cache laporan.
func (m *Metrics) RecordCache(report string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.reportCache.WithLabelValues(report, result).Inc()
}

// JournalPosted mencatat hasil posting jurnal.
func (m *Metrics) JournalPosted(outcome string) {
	if m == nil {
		return
	}
	m.journalPosts.WithLabelValues(outcome).Inc()
}

// InvalidationFailed mencatat kegagalan membatalkan cache laporan setelah posting.
func (m *Metrics) InvalidationFailed() {
	if m == nil {
		return
	}
	m.invalidations.Inc()
}

// JobProcessed mencatat hasil eksekusi job.
func (m *Metrics) JobProcessed(task, status string) {
	if m == nil {
		return
	}
	m.jobsTotal.WithLabelValues(task, status).Inc()
}

// Registerer mengekspos registry untuk pendaftaran metrik khusus.
func (m *Metrics) Registerer() prometheus.Registerer {
	if m == nil {
		return prometheus.DefaultRegisterer
	}
	return m.registry
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func routePattern(r *http.Request) string {
	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unknown"
}
