// Package metrics records solve outcomes on a private Prometheus registry.
// A CLI process is short-lived, so the registry is written to a
// node-exporter textfile instead of being scraped.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "climbdiet"

// Recorder holds the solve collectors.
type Recorder struct {
	registry *prometheus.Registry

	solves      *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	nodes       *prometheus.HistogramVec
	modelVars   *prometheus.GaugeVec
	modelRows   *prometheus.GaugeVec
	cost        *prometheus.GaugeVec
	skipped     *prometheus.CounterVec
	lastSuccess prometheus.Gauge
}

// Solve is one finished solve as seen by the recorder.
type Solve struct {
	Variant     string
	Status      string
	Elapsed     time.Duration
	Nodes       int
	Vars        int
	Constraints int
	// Cost is only recorded for optimal solves.
	Cost    *float64
	Skipped []string
}

// NewRecorder creates a recorder on its own registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		solves: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "solves_total",
				Help:      "Solves by variant and terminal status",
			},
			[]string{"variant", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "solve_duration_seconds",
				Help:      "Wall-clock time spent in the solver",
				Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
			},
			[]string{"variant"},
		),
		nodes: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "solve_nodes",
				Help:      "Branch-and-bound nodes explored per solve",
				Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
			},
			[]string{"variant"},
		),
		modelVars: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "model_variables",
				Help:      "Variables in the last model built",
			},
			[]string{"variant"},
		),
		modelRows: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "model_constraints",
				Help:      "Constraints in the last model built",
			},
			[]string{"variant"},
		),
		cost: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "diet_cost_euros",
				Help:      "Cost of the last optimal diet",
			},
			[]string{"variant"},
		),
		skipped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rules_skipped_total",
				Help:      "Optional rules left out because the catalog lacked their foods",
			},
			[]string{"variant"},
		),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_optimal_timestamp_seconds",
			Help:      "Unix time of the last optimal solve",
		}),
	}

	r.registry.MustRegister(
		r.solves, r.duration, r.nodes, r.modelVars, r.modelRows, r.cost, r.skipped, r.lastSuccess,
	)
	return r
}

// Registry exposes the underlying registry, e.g. for a textfile write.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// Observe records s. A nil recorder ignores it.
func (r *Recorder) Observe(s Solve) {
	if r == nil {
		return
	}
	r.solves.WithLabelValues(s.Variant, s.Status).Inc()
	r.duration.WithLabelValues(s.Variant).Observe(s.Elapsed.Seconds())
	r.nodes.WithLabelValues(s.Variant).Observe(float64(s.Nodes))
	r.modelVars.WithLabelValues(s.Variant).Set(float64(s.Vars))
	r.modelRows.WithLabelValues(s.Variant).Set(float64(s.Constraints))
	r.skipped.WithLabelValues(s.Variant).Add(float64(len(s.Skipped)))
	if s.Cost != nil {
		r.cost.WithLabelValues(s.Variant).Set(*s.Cost)
		r.lastSuccess.SetToCurrentTime()
	}
}

// WriteTextfile atomically writes the registry in the text exposition format.
// An empty path is a no-op.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}
