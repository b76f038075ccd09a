// Package metrics exposes Prometheus counters for risk calculations.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/secmon-lab/riskcalc/pkg/domain/types"
)

// Failure kinds used as the "kind" label of the failure counter
const (
	KindInvalidInput  = "invalid_input"
	KindInvalidConfig = "invalid_config"
	KindInternal      = "internal"
)

// Metrics owns its registry so several instances can coexist (one per test)
type Metrics struct {
	registry     *prometheus.Registry
	calculations *prometheus.CounterVec
	failures     *prometheus.CounterVec
	scores       *prometheus.HistogramVec
}

// New creates a Metrics with Go runtime and process collectors registered
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	m := &Metrics{
		registry: reg,
		calculations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "riskcalc_calculations_total",
			Help: "Successful risk calculations by formula and category",
		}, []string{"formula", "category"}),
		failures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "riskcalc_calculation_failures_total",
			Help: "Rejected or failed risk calculations by formula and failure kind",
		}, []string{"formula", "kind"}),
		scores: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "riskcalc_score",
			Help:    "Distribution of rounded risk scores",
			Buckets: []float64{0.05, 0.1, 0.2, 0.3, 0.5, 0.7, 1, 2, 5, 10},
		}, []string{"formula"}),
	}

	// expose every formula/category pair from the start so rate() has a zero baseline
	for _, f := range types.AllFormulaNames() {
		for _, c := range types.AllCategories() {
			m.calculations.WithLabelValues(f.String(), c.String())
		}
	}

	return m
}

// ObserveCalculation records a successful calculation
func (m *Metrics) ObserveCalculation(formula types.FormulaName, category types.Category, score float64) {
	if m == nil {
		return
	}
	m.calculations.WithLabelValues(formula.String(), category.String()).Inc()
	m.scores.WithLabelValues(formula.String()).Observe(score)
}

// ObserveFailure records a failed calculation
func (m *Metrics) ObserveFailure(formula types.FormulaName, kind string) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(formula.String(), kind).Inc()
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
