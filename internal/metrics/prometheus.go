package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusMetrics implements Collector using client_golang.
type PrometheusMetrics struct {
	requestDuration *prometheus.HistogramVec
	requests        *prometheus.CounterVec

	pushes              *prometheus.CounterVec
	observationDrops    *prometheus.CounterVec
	destinationDelivery *prometheus.CounterVec

	configLoads   *prometheus.CounterVec
	configLoadDur prometheus.Histogram
}

// NewPrometheusMetrics creates a new PrometheusMetrics.
func NewPrometheusMetrics() *PrometheusMetrics {
	m := &PrometheusMetrics{}

	m.requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	m.requests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "path", "status"},
	)

	m.pushes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "datahub_pushes_total",
			Help: "Total number of pushes accepted or rejected by a resource",
		},
		[]string{"kind", "status"},
	)

	m.observationDrops = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "datahub_observation_drops_total",
			Help: "Total number of samples dropped by an Observation pipeline step",
		},
		[]string{"reason"},
	)

	m.destinationDelivery = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "datahub_destination_deliveries_total",
			Help: "Total number of samples delivered to a symbolic destination",
		},
		[]string{"destination"},
	)

	m.configLoads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "datahub_config_loads_total",
			Help: "Total number of config loads, by outcome",
		},
		[]string{"status"},
	)

	m.configLoadDur = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "datahub_config_load_duration_seconds",
			Help:    "Duration of a two-phase config load",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10},
		},
	)

	return m
}

// RecordRequest records an API request.
func (m *PrometheusMetrics) RecordRequest(method, path string, status int, duration time.Duration) {
	labels := prometheus.Labels{"method": method, "path": path, "status": strconv.Itoa(status)}
	m.requests.With(labels).Inc()
	m.requestDuration.With(labels).Observe(duration.Seconds())
}

// RecordPush records a push to a resource, success or failure.
func (m *PrometheusMetrics) RecordPush(kind string, success bool) {
	status := "accepted"
	if !success {
		status = "rejected"
	}
	m.pushes.With(prometheus.Labels{"kind": kind, "status": status}).Inc()
}

// RecordObservationDrop records an Observation pipeline step rejecting a sample.
func (m *PrometheusMetrics) RecordObservationDrop(reason string) {
	m.observationDrops.With(prometheus.Labels{"reason": reason}).Inc()
}

// RecordDestinationDelivery records a sample delivered to a symbolic destination.
func (m *PrometheusMetrics) RecordDestinationDelivery(destination string) {
	m.destinationDelivery.With(prometheus.Labels{"destination": destination}).Inc()
}

// RecordConfigLoad records the outcome and duration of a two-phase config load.
func (m *PrometheusMetrics) RecordConfigLoad(success bool, duration time.Duration) {
	status := "success"
	if !success {
		status = "failure"
	}
	m.configLoads.With(prometheus.Labels{"status": status}).Inc()
	m.configLoadDur.Observe(duration.Seconds())
}
