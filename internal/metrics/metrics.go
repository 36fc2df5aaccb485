// Package metrics defines the Prometheus collectors recorded by the request
// pipeline.
//
// Collectors are registered on a caller-supplied registry so that tests and
// embedders never share global state.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Compile results used as the "result" label.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Registry holds the compile collectors.
type Registry struct {
	// CompilesTotal counts compiles by result and error code.
	CompilesTotal *prometheus.CounterVec

	// CompileDuration observes compile latency in seconds.
	CompileDuration prometheus.Histogram

	// ReadDepth observes the nesting depth of each compiled root read.
	ReadDepth prometheus.Histogram

	// ReadFields observes the number of leaf fields in each root read.
	ReadFields prometheus.Histogram

	// RootOperations counts compiled root operations by kind ("read" or
	// "node") and entity.
	RootOperations *prometheus.CounterVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Registry {
	r := &Registry{}

	r.CompilesTotal = promauto.With(reg).NewCounterVec(
		prometheus.CounterOpts{
			Name: "resolvetree_compiles_total",
			Help: "Total number of compile requests",
		},
		[]string{"result", "code"},
	)

	r.CompileDuration = promauto.With(reg).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "resolvetree_compile_duration_seconds",
			Help:    "Compile duration in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		},
	)

	r.ReadDepth = promauto.With(reg).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "resolvetree_read_depth",
			Help:    "Nesting depth of compiled root reads",
			Buckets: []float64{1, 2, 3, 4, 6, 8, 12},
		},
	)

	r.ReadFields = promauto.With(reg).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "resolvetree_read_fields",
			Help:    "Leaf fields selected per compiled root read",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250},
		},
	)

	r.RootOperations = promauto.With(reg).NewCounterVec(
		prometheus.CounterOpts{
			Name: "resolvetree_root_operations_total",
			Help: "Total number of compiled root operations",
		},
		[]string{"kind", "entity"},
	)

	return r
}

// ObserveCompile records one compile. code is empty on success.
func (r *Registry) ObserveCompile(code string, d time.Duration) {
	if r == nil {
		return
	}
	result := ResultOK
	if code != "" {
		result = ResultError
	}
	r.CompilesTotal.WithLabelValues(result, code).Inc()
	r.CompileDuration.Observe(d.Seconds())
}

// ObserveRead records the shape of one compiled root read.
func (r *Registry) ObserveRead(kind, entity string, depth, fields int) {
	if r == nil {
		return
	}
	r.RootOperations.WithLabelValues(kind, entity).Inc()
	r.ReadDepth.Observe(float64(depth))
	r.ReadFields.Observe(float64(fields))
}
