package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "satrack_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"path", "method", "code"},
	)

	httpDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "satrack_http_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)

	catalogResolutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "satrack_catalog_resolutions_total",
			Help: "Satellite identifier resolutions by source tier and outcome.",
		},
		[]string{"source", "outcome"},
	)

	remoteRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "satrack_remote_catalog_requests_total",
			Help: "Requests to the remote satellite catalog by endpoint and outcome.",
		},
		[]string{"endpoint", "outcome"},
	)

	groundTrackDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "satrack_ground_track_duration_seconds",
			Help:    "Time spent computing a full ground track.",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5},
		},
	)

	groundTrackSamplesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "satrack_ground_track_samples_total",
			Help: "Total propagated ground-track sample points.",
		},
	)

	localCatalogSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "satrack_local_catalog_entries",
			Help: "Number of entries in the built-in satellite table.",
		},
	)
)

func init() {
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(httpDurationSeconds)
	prometheus.MustRegister(catalogResolutionsTotal)
	prometheus.MustRegister(remoteRequestsTotal)
	prometheus.MustRegister(groundTrackDurationSeconds)
	prometheus.MustRegister(groundTrackSamplesTotal)
	prometheus.MustRegister(localCatalogSize)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordCatalogResolution counts one identifier resolution attempt.
func RecordCatalogResolution(source, outcome string) {
	catalogResolutionsTotal.WithLabelValues(source, outcome).Inc()
}

// RecordRemoteRequest counts one remote catalog HTTP request.
func RecordRemoteRequest(endpoint, outcome string) {
	remoteRequestsTotal.WithLabelValues(endpoint, outcome).Inc()
}

// RecordGroundTrack records a completed ground-track computation.
func RecordGroundTrack(duration time.Duration, samples int) {
	groundTrackDurationSeconds.Observe(duration.Seconds())
	groundTrackSamplesTotal.Add(float64(samples))
}

// SetLocalCatalogSize updates the built-in table size gauge.
func SetLocalCatalogSize(n int) {
	localCatalogSize.Set(float64(n))
}

// knownRoutes are the fixed paths served by the API.
var knownRoutes = map[string]bool{
	"/healthz":                  true,
	"/readyz":                   true,
	"/metrics":                  true,
	"/api/v1/groundtrack":       true,
	"/api/v1/satellites/search": true,
}

// normalizeRoute collapses request paths onto a bounded label set. Satellite
// info paths share one parameterized label; anything unrecognized (bots,
// scanners) collapses to "other" so path cardinality stays fixed.
func normalizeRoute(path string) string {
	if knownRoutes[path] {
		return path
	}
	if strings.HasPrefix(path, "/api/v1/satellites/") {
		return "/api/v1/satellites/{id}"
	}
	return "other"
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware records request count and duration for each request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		code := strconv.Itoa(rw.statusCode)
		route := normalizeRoute(r.URL.Path)

		httpRequestsTotal.WithLabelValues(route, r.Method, code).Inc()
		httpDurationSeconds.WithLabelValues(route, r.Method).Observe(duration)
	})
}
