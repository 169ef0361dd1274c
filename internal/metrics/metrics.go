// Package metrics provides Prometheus instrumentation for the ingestion
// and serving backend.
//
// Standard runtime/process metrics are exposed automatically by
// prometheus/client_golang. Domain metrics registered here:
//
//	ingest_jobs_total{outcome}            counter: background ingestion jobs by outcome
//	ingest_items_parsed_total             counter: items parsed across all jobs
//	ingest_active_jobs                    gauge:   ingestion jobs currently running
//	http_requests_total{method,path,status} counter: HTTP requests
//	http_request_duration_seconds{method,path} histogram: HTTP latency
//	proxy_segment_duration_seconds        histogram: HLS proxy passthrough latency
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	IngestJobs = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ingest_jobs_total",
		Help: "Background ingestion jobs by outcome (complete, failed).",
	}, []string{"outcome"})

	IngestItemsParsed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ingest_items_parsed_total",
		Help: "Total playlist items parsed across all ingestion jobs.",
	})

	IngestActiveJobs = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ingest_active_jobs",
		Help: "Number of ingestion jobs currently running.",
	})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total HTTP requests handled.",
	}, []string{"method", "path", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	ProxySegmentDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "proxy_segment_duration_seconds",
		Help:    "Time to proxy a single HLS response (manifest or segment).",
		Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10},
	})
)

// Handler returns the Prometheus scrape handler for GET /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware wraps an http.Handler to record request counts and latency.
// path should be a templated path (e.g. "/api/playlist/:hash/items"), not
// the raw URL, to keep label cardinality bounded.
func Middleware(path string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next(rw, r)
		dur := time.Since(start).Seconds()
		status := strconv.Itoa(rw.status)
		HTTPRequests.WithLabelValues(r.Method, path, status).Inc()
		HTTPDuration.WithLabelValues(r.Method, path).Observe(dur)
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
