// Package metrics exposes resolution and logging counters in the Prometheus
// text format.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ai-calories/internal/models"
)

const namespace = "calorie_log"

// Metrics implements tracker.Recorder on a private registry.
type Metrics struct {
	registry    *prometheus.Registry
	resolutions *prometheus.CounterVec
	meals       *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolutions_total",
			Help:      "Food name resolutions by strategy and outcome.",
		}, []string{"strategy", "outcome"}),
		meals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "meals_total",
			Help:      "Processed meal descriptions by lane and result status.",
		}, []string{"lane", "status"}),
	}
	m.registry.MustRegister(m.resolutions, m.meals)
	m.registry.MustRegister(collectors.NewGoCollector())
	return m
}

func (m *Metrics) ObserveResolution(strategy, outcome string) {
	m.resolutions.WithLabelValues(strategy, outcome).Inc()
}

func (m *Metrics) ObserveMeal(lane string, status models.Status) {
	m.meals.WithLabelValues(lane, string(status)).Inc()
}

// Handler serves the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
