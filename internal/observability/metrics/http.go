package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	queryTotal           *prometheus.CounterVec
	queryDuration        *prometheus.HistogramVec
	queryResultReviews   *prometheus.HistogramVec
	queryEmptyTotal      *prometheus.CounterVec
	rankingDegradedTotal *prometheus.CounterVec
	normalizeTotal       *prometheus.CounterVec
	breakerStateTotal    *prometheus.CounterVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dinelog",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "dinelog",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "dinelog",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	queryTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dinelog",
			Subsystem: "query",
			Name:      "resolutions_total",
			Help:      "Total query resolutions by classified type and status.",
		},
		[]string{"service", "endpoint", "query_type", "status"},
	)
	queryDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "dinelog",
			Subsystem: "query",
			Name:      "duration_seconds",
			Help:      "Query resolution duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "endpoint", "query_type"},
	)
	queryResultReviews := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "dinelog",
			Subsystem: "query",
			Name:      "result_reviews",
			Help:      "Distribution of reviews returned per successful resolution.",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50, 100, 250},
		},
		[]string{"service", "endpoint", "query_type"},
	)
	queryEmptyTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dinelog",
			Subsystem: "query",
			Name:      "empty_results_total",
			Help:      "Total successful resolutions that returned no reviews.",
		},
		[]string{"service", "endpoint", "query_type"},
	)
	rankingDegradedTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dinelog",
			Subsystem: "query",
			Name:      "ranking_degraded_total",
			Help:      "Total resolutions where the relevance ranker output was unusable.",
		},
		[]string{"service", "endpoint", "query_type"},
	)
	normalizeTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dinelog",
			Subsystem: "item_names",
			Name:      "normalized_total",
			Help:      "Total item names normalized by outcome.",
		},
		[]string{"service", "outcome"},
	)
	breakerStateTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dinelog",
			Subsystem: "resilience",
			Name:      "breaker_state_changes_total",
			Help:      "Total circuit breaker state transitions by operation and target state.",
		},
		[]string{"service", "operation", "to"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		queryTotal,
		queryDuration,
		queryResultReviews,
		queryEmptyTotal,
		rankingDegradedTotal,
		normalizeTotal,
		breakerStateTotal,
	)

	return &HTTPServerMetrics{
		registry:             registry,
		requestTotal:         requestTotal,
		requestDuration:      requestDuration,
		requestInFlight:      requestInFlight,
		queryTotal:           queryTotal,
		queryDuration:        queryDuration,
		queryResultReviews:   queryResultReviews,
		queryEmptyTotal:      queryEmptyTotal,
		rankingDegradedTotal: rankingDegradedTotal,
		normalizeTotal:       normalizeTotal,
		breakerStateTotal:    breakerStateTotal,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

func normalizePath(path string) string {
	switch {
	case strings.HasPrefix(path, "/v1/sessions/"):
		return "/v1/sessions/{session_id}"
	default:
		return path
	}
}

// RecordQuery counts one resolution. queryType is empty when classification
// itself failed.
func (m *HTTPServerMetrics) RecordQuery(service, endpoint, queryType string, reviews int, degraded bool, duration time.Duration, err error) {
	if queryType == "" {
		queryType = "unknown"
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.queryTotal.WithLabelValues(service, endpoint, queryType, status).Inc()
	m.queryDuration.WithLabelValues(service, endpoint, queryType).Observe(duration.Seconds())
	if err != nil {
		return
	}
	m.queryResultReviews.WithLabelValues(service, endpoint, queryType).Observe(float64(reviews))
	if reviews == 0 {
		m.queryEmptyTotal.WithLabelValues(service, endpoint, queryType).Inc()
	}
	if degraded {
		m.rankingDegradedTotal.WithLabelValues(service, endpoint, queryType).Inc()
	}
}

// RecordNormalization counts a normalization outcome: matched, new or error.
func (m *HTTPServerMetrics) RecordNormalization(service, outcome string) {
	if outcome == "" {
		outcome = "unknown"
	}
	m.normalizeTotal.WithLabelValues(service, outcome).Inc()
}

func (m *HTTPServerMetrics) RecordBreakerTransition(service, operation, to string) {
	m.breakerStateTotal.WithLabelValues(service, operation, to).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}

func (w *statusRecorder) Push(target string, opts *http.PushOptions) error {
	pusher, ok := w.ResponseWriter.(http.Pusher)
	if !ok {
		return http.ErrNotSupported
	}
	return pusher.Push(target, opts)
}
