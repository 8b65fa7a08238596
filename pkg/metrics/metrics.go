// Package metrics provides performance tracking and observability for Corpus
// using Prometheus metrics. It offers collectors for the transformation
// engine: rows processed, apply latency, worker fan-out and dataset size.
//
// # Basic Usage
//
//	collector := metrics.NewCollector("apply")
//	timer := collector.StartTimer()
//	// ... run the operation ...
//	timer.ObserveDuration()
//	collector.RecordRows(float64(n), metrics.StatusSuccess)
//
// # Metric Types
//
// Counter: monotonically increasing values (e.g., total rows processed)
// Gauge: values that can go up or down (e.g., active workers)
// Histogram: distribution of values (e.g., apply latency)
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Status labels for RowsProcessed
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

var (
	// RowsProcessed tracks the total number of rows run through transform
	// operations. Labels: operation (apply/apply_field/...), status.
	RowsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "corpus_rows_processed_total",
			Help: "Total number of rows processed by transform operations",
		},
		[]string{"operation", "status"},
	)

	// ApplyLatency tracks the distribution of whole-operation latencies in
	// seconds. Labels: operation.
	ApplyLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "corpus_apply_duration_seconds",
			Help:    "Duration of transform operations in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		},
		[]string{"operation"},
	)

	// ActiveWorkers tracks the current worker fan-out per operation
	ActiveWorkers = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "corpus_active_workers",
			Help: "Number of active transform workers",
		},
		[]string{"operation"},
	)

	// DatasetRows tracks the size of datasets by name
	DatasetRows = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "corpus_dataset_rows",
			Help: "Current number of rows held by a dataset",
		},
		[]string{"dataset"},
	)
)

// Collector provides a per-operation metrics recording interface. Each
// component that reports metrics should create its own collector, labeled
// with the operation name it serves.
type Collector struct {
	operation string
	startTime time.Time
}

// NewCollector creates a new metrics collector for an operation
func NewCollector(operation string) *Collector {
	return &Collector{
		operation: operation,
		startTime: time.Now(),
	}
}

// Operation returns the operation label this collector records under
func (c *Collector) Operation() string {
	return c.operation
}

// StartTime returns when the collector was created
func (c *Collector) StartTime() time.Time {
	return c.startTime
}

// RecordRows adds to the processed-row counter with the given status
func (c *Collector) RecordRows(n float64, status string) {
	RowsProcessed.WithLabelValues(c.operation, status).Add(n)
}

// ObserveLatency records a completed operation's duration
func (c *Collector) ObserveLatency(d time.Duration) {
	ApplyLatency.WithLabelValues(c.operation).Observe(d.Seconds())
}

// SetActiveWorkers records the current worker fan-out
func (c *Collector) SetActiveWorkers(n int) {
	ActiveWorkers.WithLabelValues(c.operation).Set(float64(n))
}

// SetDatasetRows records the current size of a named dataset
func SetDatasetRows(dataset string, n int) {
	DatasetRows.WithLabelValues(dataset).Set(float64(n))
}

// Timer measures one operation's duration against the latency histogram
type Timer struct {
	collector *Collector
	start     time.Time
}

// StartTimer begins timing an operation
func (c *Collector) StartTimer() *Timer {
	return &Timer{collector: c, start: time.Now()}
}

// ObserveDuration stops the timer and records the elapsed time
func (t *Timer) ObserveDuration() time.Duration {
	d := time.Since(t.start)
	t.collector.ObserveLatency(d)
	return d
}
