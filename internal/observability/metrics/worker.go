package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type WorkerMetrics struct {
	registry *prometheus.Registry

	batchTotal      *prometheus.CounterVec
	batchDuration   *prometheus.HistogramVec
	batchInFlight   prometheus.Gauge
	batchNames      *prometheus.HistogramVec
	queueLag        *prometheus.HistogramVec
	normalizedTotal *prometheus.CounterVec
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	batchTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dinelog",
			Subsystem: "worker",
			Name:      "item_name_batches_total",
			Help:      "Total processed item-name batches by status.",
		},
		[]string{"service", "status"},
	)
	batchDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "dinelog",
			Subsystem: "worker",
			Name:      "item_name_batch_duration_seconds",
			Help:      "Item-name batch processing duration in seconds by status.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "status"},
	)
	batchInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "dinelog",
			Subsystem: "worker",
			Name:      "item_name_batches_in_flight",
			Help:      "Number of in-flight item-name batches.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	batchNames := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "dinelog",
			Subsystem: "worker",
			Name:      "item_name_batch_size",
			Help:      "Distribution of names per batch.",
			Buckets:   []float64{1, 2, 3, 5, 8, 13, 21, 50},
		},
		[]string{"service"},
	)
	queueLag := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "dinelog",
			Subsystem: "worker",
			Name:      "queue_lag_seconds",
			Help:      "Delay between batch submission and processing start.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"service"},
	)
	normalizedTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dinelog",
			Subsystem: "worker",
			Name:      "item_names_normalized_total",
			Help:      "Total item names normalized by outcome.",
		},
		[]string{"service", "outcome"},
	)

	registry.MustRegister(batchTotal, batchDuration, batchInFlight, batchNames, queueLag, normalizedTotal)

	return &WorkerMetrics{
		registry:        registry,
		batchTotal:      batchTotal,
		batchDuration:   batchDuration,
		batchInFlight:   batchInFlight,
		batchNames:      batchNames,
		queueLag:        queueLag,
		normalizedTotal: normalizedTotal,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) StartBatch(service string, names int) {
	m.batchInFlight.Inc()
	m.batchNames.WithLabelValues(service).Observe(float64(names))
}

func (m *WorkerMetrics) FinishBatch(service string, duration time.Duration, err error) {
	m.batchInFlight.Dec()

	status := "success"
	if err != nil {
		status = "error"
	}

	m.batchTotal.WithLabelValues(service, status).Inc()
	m.batchDuration.WithLabelValues(service, status).Observe(duration.Seconds())
}

// RecordNormalized counts matched and new names from one batch.
func (m *WorkerMetrics) RecordNormalized(service string, matched, created int) {
	if matched > 0 {
		m.normalizedTotal.WithLabelValues(service, "matched").Add(float64(matched))
	}
	if created > 0 {
		m.normalizedTotal.WithLabelValues(service, "new").Add(float64(created))
	}
}

func (m *WorkerMetrics) ObserveQueueLag(service string, lag time.Duration) {
	if lag < 0 {
		return
	}
	m.queueLag.WithLabelValues(service).Observe(lag.Seconds())
}
