// Package observability exposes engine activity as Prometheus metrics.
// The collector plugs into the engine through lifecycle hooks, so the
// traversal code stays free of metrics calls.
package observability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/formflow-go/formflow/pkg/domain"
)

const namespace = "formflow"

// Metrics collects traversal counters. Safe for concurrent use; the
// underlying Prometheus vectors handle synchronization.
type Metrics struct {
	sectionsEntered *prometheus.CounterVec
	rulesEvaluated  *prometheus.CounterVec
	outcomes        *prometheus.CounterVec
}

// NewMetrics creates and registers the traversal metrics. Pass
// prometheus.DefaultRegisterer for the global registry, or a private
// registry for isolation in tests.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registry)

	return &Metrics{
		sectionsEntered: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sections_entered_total",
			Help:      "Sections shown to respondents, by section ID.",
		}, []string{"section_id"}),

		rulesEvaluated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rules_evaluated_total",
			Help:      "Condition rule evaluations, by result.",
		}, []string{"result"}),

		outcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outcomes_total",
			Help:      "Terminal outcomes reached, by kind and reason.",
		}, []string{"kind", "reason"}),
	}
}

// Hooks returns lifecycle hooks feeding this collector. Compose with
// other hooks via Merge when several observers listen to one engine.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnSectionEnter: func(_ context.Context, ev *domain.SectionEvent) {
			m.sectionsEntered.WithLabelValues(ev.SectionID).Inc()
		},
		OnRuleEvaluated: func(_ context.Context, ev *domain.RuleEvent) {
			result := "false"
			if ev.Result {
				result = "true"
			}
			m.rulesEvaluated.WithLabelValues(result).Inc()
		},
		OnOutcome: func(_ context.Context, ev *domain.OutcomeEvent) {
			m.outcomes.WithLabelValues(string(ev.Outcome.Kind), ev.Outcome.Reason).Inc()
		},
	}
}

// Merge fans one engine's events out to several hook sets.
func Merge(hooks ...domain.LifecycleHooks) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnSectionEnter: func(ctx context.Context, ev *domain.SectionEvent) {
			for _, h := range hooks {
				if h.OnSectionEnter != nil {
					h.OnSectionEnter(ctx, ev)
				}
			}
		},
		OnRuleEvaluated: func(ctx context.Context, ev *domain.RuleEvent) {
			for _, h := range hooks {
				if h.OnRuleEvaluated != nil {
					h.OnRuleEvaluated(ctx, ev)
				}
			}
		},
		OnOutcome: func(ctx context.Context, ev *domain.OutcomeEvent) {
			for _, h := range hooks {
				if h.OnOutcome != nil {
					h.OnOutcome(ctx, ev)
				}
			}
		},
	}
}
