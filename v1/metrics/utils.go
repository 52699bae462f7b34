package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// IncrementOperations increments the store operation counter.
// Example: metrics.IncrementOperations("pgvector", "documents", "upsert", "success")
func (m *Metrics) IncrementOperations(store, collection, operation, status string) {
	m.operationsTotal.WithLabelValues(store, collection, operation, status).Inc()
}

// RecordOperationDuration records the duration (in seconds) of a store operation.
// Example: defer metrics.RecordOperationDuration(time.Now(), "pgvector", "documents", "search")
func (m *Metrics) RecordOperationDuration(start time.Time, store, collection, operation string) {
	duration := time.Since(start).Seconds()
	m.operationDuration.WithLabelValues(store, collection, operation).Observe(duration)
}

// AddRowsWritten adds the number of rows written by an upsert to the row counter.
// Example: metrics.AddRowsWritten(len(rows), "pgvector", "documents")
func (m *Metrics) AddRowsWritten(count int, store, collection string) {
	m.rowsWritten.WithLabelValues(store, collection).Add(float64(count))
}

// CreateCounter creates a new CounterVec metric and registers it.
func (m *Metrics) CreateCounter(name, help string, labels []string) *prometheus.CounterVec {
	counter := createCounterVec(name, help, labels)
	m.Registry.MustRegister(counter)
	return counter
}

// CreateHistogram creates a new HistogramVec metric and registers it.
func (m *Metrics) CreateHistogram(name, help string, labels []string, buckets []float64) *prometheus.HistogramVec {
	hist := createHistogramVec(name, help, labels, buckets)
	m.Registry.MustRegister(hist)
	return hist
}

// CreateGauge creates a new GaugeVec metric and registers it.
func (m *Metrics) CreateGauge(name, help string, labels []string) *prometheus.GaugeVec {
	gauge := createGaugeVec(name, help, labels)
	m.Registry.MustRegister(gauge)
	return gauge
}

// createCounterVec defines a new CounterVec with standard options.
// Used internally by NewMetrics to maintain consistency.
func createCounterVec(name, help string, labels []string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: name,
			Help: help,
		},
		labels,
	)
}

// createHistogramVec defines a new HistogramVec with configurable buckets.
// Used internally by NewMetrics for latency tracking.
func createHistogramVec(name, help string, labels []string, buckets []float64) *prometheus.HistogramVec {
	return prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    name,
			Help:    help,
			Buckets: buckets,
		},
		labels,
	)
}

// createGaugeVec defines a new GaugeVec safely for resource monitoring.
// Used internally by NewMetrics to track resource utilization.
func createGaugeVec(name, help string, labels []string) *prometheus.GaugeVec {
	return prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: name,
			Help: help,
		},
		labels,
	)
}
