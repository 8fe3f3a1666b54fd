// Package metrics holds the Prometheus metrics of an optimizer run.
//
// Every Metrics value has its own registry, so runs in the same process (and tests) do not share
// counters. A run can dump its registry to a text file at the end.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "motifsat"

type Metrics struct {
	Registry *prometheus.Registry

	// RuleApplications counts merges caused by each rule.
	// Labels: rule
	RuleApplications *prometheus.CounterVec
	// Iterations counts completed saturation iterations.
	Iterations prometheus.Counter
	// IterationSeconds measures the duration of one search-apply-rebuild iteration.
	IterationSeconds prometheus.Histogram
	// Classes and Nodes track the size of the e-graph after each iteration.
	Classes prometheus.Gauge
	Nodes   prometheus.Gauge
	// Stops counts why saturation ended.
	// Labels: reason (saturated, iteration_limit, node_limit, time_limit)
	Stops *prometheus.CounterVec
	// CostEntries is the number of patterns and formulas in the cost table.
	CostEntries prometheus.Gauge
	// BestCost is the cost of the extracted expression.
	BestCost prometheus.Gauge
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		Registry: reg,
		RuleApplications: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "saturate",
			Name:      "rule_applications_total",
			Help:      "Number of class merges caused by each rewrite rule",
		}, []string{"rule"}),
		Iterations: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "saturate",
			Name:      "iterations_total",
			Help:      "Number of completed saturation iterations",
		}),
		IterationSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "saturate",
			Name:      "iteration_seconds",
			Help:      "Duration of one saturation iteration in seconds",
			Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10, 30, 60},
		}),
		Classes: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "egraph",
			Name:      "classes",
			Help:      "Number of equivalence classes",
		}),
		Nodes: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "egraph",
			Name:      "nodes",
			Help:      "Number of nodes over all classes",
		}),
		Stops: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "saturate",
			Name:      "stops_total",
			Help:      "Number of saturation runs by stop reason",
		}, []string{"reason"}),
		CostEntries: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "costs",
			Name:      "entries",
			Help:      "Number of patterns and formulas in the cost table",
		}),
		BestCost: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "extract",
			Name:      "best_cost",
			Help:      "Cost of the extracted expression",
		}),
	}
}

// WriteTextfile writes every metric in the Prometheus text format to path.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.Registry)
}
