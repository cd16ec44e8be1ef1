package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"seamark-hq/meridian/pkg/config"
)

// EventMetrics tracks host-platform event dispatching.
//
// Metrics:
//   - meridian_events_total: dispatched events by kind and outcome
type EventMetrics struct {
	eventsTotal *prometheus.CounterVec
}

// NewEventMetrics creates and registers event metrics with the provided
// registry.
func NewEventMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *EventMetrics {
	em := &EventMetrics{
		eventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "events_total",
				Help:      "Total number of host platform events received",
			},
			[]string{"kind", "outcome"},
		),
	}

	registry.MustRegister(em.eventsTotal)

	return em
}

// RecordEvent records a received event. Outcome is "handled",
// "deduplicated", or "error".
func (em *EventMetrics) RecordEvent(kind, outcome string) {
	em.eventsTotal.WithLabelValues(kind, outcome).Inc()
}
