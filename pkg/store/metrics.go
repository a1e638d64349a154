package store

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// Metrics holds the Prometheus collectors for store operations
type Metrics struct {
	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	bytesWritten      prometheus.Counter
	bytesRead         prometheus.Counter
}

// NewMetrics creates the store collectors and registers them on reg.
// A nil reg creates unregistered collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		operationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "keepsake_store_operations_total",
				Help: "Total number of record store operations",
			},
			[]string{"operation", "status"},
		),

		operationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "keepsake_store_operation_duration_seconds",
				Help:    "Record store operation duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),

		bytesWritten: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "keepsake_store_bytes_written_total",
				Help: "Total encoded bytes written to record files",
			},
		),

		bytesRead: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "keepsake_store_bytes_read_total",
				Help: "Total encoded bytes read from record files",
			},
		),
	}
}

// RecordOperation records a store operation
func (m *Metrics) RecordOperation(operation string, success bool, duration time.Duration) {
	status := statusSuccess
	if !success {
		status = statusError
	}

	m.operationsTotal.WithLabelValues(operation, status).Inc()
	m.operationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}
