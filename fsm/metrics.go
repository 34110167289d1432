package fsm

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts ticks and transitions per machine. It implements Observer.
type Metrics struct {
	ticks       *prometheus.CounterVec
	transitions *prometheus.CounterVec
}

// NewMetrics registers the fsm collectors with reg. A nil reg uses the
// default prometheus registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		ticks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "fsm_ticks_total",
			Help: "Total number of ticks by machine and active state",
		}, []string{"machine", "state"}),
		transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "fsm_transitions_total",
			Help: "Total number of transitions taken by machine, from_state and to_state",
		}, []string{"machine", "from", "to"}),
	}
}

func (m *Metrics) ObserveTick(machine, state string) {
	if m == nil {
		return
	}
	m.ticks.WithLabelValues(machine, state).Inc()
}

func (m *Metrics) ObserveTransition(ev TransitionEvent) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(ev.Machine, ev.FromName, ev.ToName).Inc()
}
