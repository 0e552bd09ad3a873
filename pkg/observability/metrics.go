package observability

import (
	"context"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors fed by engine lifecycle hooks.
type Metrics struct {
	TreeLoads           *prometheus.CounterVec
	ItemsServed         prometheus.Counter
	TraversalsStarted   prometheus.Counter
	TraversalsExhausted prometheus.Counter
}

// NewMetrics creates the collectors and registers them on reg.
// Pass prometheus.NewRegistry() in tests to avoid global state.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		TreeLoads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "arbor",
				Name:      "tree_loads_total",
				Help:      "Number of tree loads by result (ok, error).",
			},
			[]string{"result"},
		),
		ItemsServed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "arbor",
			Name:      "items_served_total",
			Help:      "Number of items returned by persisted traversals.",
		}),
		TraversalsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "arbor",
			Name:      "traversals_started_total",
			Help:      "Number of persisted traversals started.",
		}),
		TraversalsExhausted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "arbor",
			Name:      "traversals_exhausted_total",
			Help:      "Number of persisted traversals that ran out of items.",
		}),
	}

	for _, c := range []prometheus.Collector{m.TreeLoads, m.ItemsServed, m.TraversalsStarted, m.TraversalsExhausted} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Hooks returns lifecycle hooks that update the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTreeLoad: func(_ context.Context, e *domain.TreeEvent) {
			result := "ok"
			if e.Err != nil {
				result = "error"
			}
			m.TreeLoads.WithLabelValues(result).Inc()
		},
		OnTraversalStart: func(context.Context, *domain.TraversalEvent) {
			m.TraversalsStarted.Inc()
		},
		OnItem: func(context.Context, *domain.TraversalEvent) {
			m.ItemsServed.Inc()
		},
		OnExhausted: func(context.Context, *domain.TraversalEvent) {
			m.TraversalsExhausted.Inc()
		},
	}
}
