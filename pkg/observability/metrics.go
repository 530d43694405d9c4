package observability

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/aplus/pkg/domain"
)

// Metrics records lifecycle and match metrics in its own Prometheus registry.
type Metrics struct {
	registry           *prometheus.Registry
	transitions        *prometheus.CounterVec
	transitionDuration *prometheus.HistogramVec
	stepDuration       *prometheus.HistogramVec
	observerErrors     *prometheus.CounterVec
	stackEmptied       prometheus.Counter
	matches            prometheus.Counter
	roundsPlayed       prometheus.Histogram
}

// NewMetrics creates and registers the aplus metrics.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aplus_transitions_total",
				Help: "Total number of stack transitions",
			},
			[]string{"kind", "result"},
		),
		transitionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "aplus_transition_duration_seconds",
				Help: "Duration of stack transitions",
			},
			[]string{"kind"},
		),
		stepDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "aplus_step_duration_seconds",
				Help:    "Duration of lifecycle micro-steps",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
			},
			[]string{"step"},
		),
		observerErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aplus_observer_errors_total",
				Help: "Total number of failed observer notifications",
			},
			[]string{"state"},
		),
		stackEmptied: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "aplus_stack_emptied_total",
			Help: "Total number of times a stack was emptied",
		}),
		matches: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "aplus_matches_total",
			Help: "Total number of finished matches",
		}),
		roundsPlayed: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "aplus_match_rounds",
			Help:    "Rounds played per finished match",
			Buckets: prometheus.LinearBuckets(1, 1, 10),
		}),
	}
	m.registry.MustRegister(
		m.transitions, m.transitionDuration, m.stepDuration,
		m.observerErrors, m.stackEmptied, m.matches, m.roundsPlayed,
	)
	return m
}

// Registry returns the registry the metrics are registered in.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Hooks returns lifecycle hooks feeding the metrics.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTransitionEnd: func(_ context.Context, e *domain.TransitionEvent) {
			result := "ok"
			if e.Err != nil {
				result = "error"
			}
			m.transitions.WithLabelValues(string(e.Kind), result).Inc()
			m.transitionDuration.WithLabelValues(string(e.Kind)).Observe(e.Duration.Seconds())
		},
		OnStep: func(_ context.Context, e *domain.StepEvent) {
			m.stepDuration.WithLabelValues(e.Step.String()).Observe(e.Duration.Seconds())
		},
		OnObserverError: func(_ context.Context, e *domain.ObserverEvent) {
			m.observerErrors.WithLabelValues(e.State).Inc()
		},
		OnStackEmptied: func(context.Context, *domain.TransitionEvent) {
			m.stackEmptied.Inc()
		},
	}
}

// MatchFinished records a finished match.
func (m *Metrics) MatchFinished(record *domain.MatchRecord) {
	m.matches.Inc()
	m.roundsPlayed.Observe(float64(record.RoundsPlayed))
}
