package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jwebster45206/nevermore/pkg/dialogue"
)

// Metrics counts dialogue activity for one process. Each instance owns its
// registry so tests and multiple sessions do not collide.
type Metrics struct {
	registry *prometheus.Registry

	events       *prometheus.CounterVec
	choices      *prometheus.CounterVec
	completions  *prometheus.CounterVec
	brokenLinks  prometheus.Counter
	faults       prometheus.Counter
	journal      prometheus.Counter
	activeDialog prometheus.Gauge
}

// Ensure Metrics implements dialogue.Observer
var _ dialogue.Observer = (*Metrics)(nil)

func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		events: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "nevermore_dialogue_events_total",
			Help: "Dialogue events, partitioned by kind.",
		}, []string{"kind"}),
		choices: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "nevermore_choices_total",
			Help: "Options chosen, partitioned by node.",
		}, []string{"node"}),
		completions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "nevermore_completions_total",
			Help: "Completion markers set for the first time.",
		}, []string{"marker"}),
		brokenLinks: factory.NewCounter(prometheus.CounterOpts{
			Name: "nevermore_broken_links_total",
			Help: "Missing nodes replaced by the fallback line.",
		}),
		faults: factory.NewCounter(prometheus.CounterOpts{
			Name: "nevermore_authoring_errors_total",
			Help: "Story content failures that stopped a dialogue.",
		}),
		journal: factory.NewCounter(prometheus.CounterOpts{
			Name: "nevermore_journal_entries_total",
			Help: "Distinct journal entries recorded.",
		}),
		activeDialog: factory.NewGauge(prometheus.GaugeOpts{
			Name: "nevermore_dialogue_active",
			Help: "1 while a dialogue is presenting.",
		}),
	}
}

// Observe updates counters for a dialogue event.
func (m *Metrics) Observe(ev dialogue.Event) {
	m.events.WithLabelValues(string(ev.Kind)).Inc()

	switch ev.Kind {
	case dialogue.EventStarted:
		m.activeDialog.Set(1)
	case dialogue.EventClosed:
		m.activeDialog.Set(0)
	case dialogue.EventChose:
		m.choices.WithLabelValues(ev.NodeID).Inc()
	case dialogue.EventCompleted:
		m.completions.WithLabelValues(ev.Text).Inc()
	case dialogue.EventBrokenLink:
		m.brokenLinks.Inc()
	case dialogue.EventFaulted:
		m.faults.Inc()
		m.activeDialog.Set(0)
	case dialogue.EventJournal:
		m.journal.Inc()
	}
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
