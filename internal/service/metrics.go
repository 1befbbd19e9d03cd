package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeApplied  = "applied"
	outcomeRejected = "rejected"
	outcomeFailed   = "failed"
)

type Metrics struct {
	transitions         *prometheus.CounterVec
	roundsAdvanced      prometheus.Counter
	tournamentsFinished prometheus.Counter
	commentary          *prometheus.CounterVec
}

// NewMetrics registers the collectors on reg. A nil registerer keeps them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bracket_master",
			Name:      "state_transitions_total",
			Help:      "Tournament state transitions by operation and outcome.",
		}, []string{"operation", "outcome"}),
		roundsAdvanced: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "bracket_master",
			Name:      "rounds_advanced_total",
			Help:      "Knockout rounds advanced.",
		}),
		tournamentsFinished: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "bracket_master",
			Name:      "tournaments_finished_total",
			Help:      "Tournaments that produced a champion.",
		}),
		commentary: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bracket_master",
			Name:      "commentary_requests_total",
			Help:      "Commentary requests by outcome.",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) transition(operation, outcome string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(operation, outcome).Inc()
}

func (m *Metrics) roundAdvanced() {
	if m == nil {
		return
	}
	m.roundsAdvanced.Inc()
}

func (m *Metrics) tournamentFinished() {
	if m == nil {
		return
	}
	m.tournamentsFinished.Inc()
}

func (m *Metrics) commentaryRequest(outcome string) {
	if m == nil {
		return
	}
	m.commentary.WithLabelValues(outcome).Inc()
}
