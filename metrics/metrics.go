package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "chatsync"

// Metrics groups the client collectors. A nil *Metrics is valid and records
// nothing, so packages can take it as an optional dependency.
type Metrics struct {
	reconnectAttempts prometheus.Counter
	connectionState   prometheus.Gauge
	eventsDispatched  *prometheus.CounterVec
	callbackFailures  *prometheus.CounterVec
	messageSends      *prometheus.CounterVec
	staleResponses    prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		reconnectAttempts: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconnect_attempts_total",
			Help:      "Transport reconnection attempts.",
		}),
		connectionState: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connection_state",
			Help:      "Transport state: 0 disconnected, 1 connecting, 2 connected, 3 failed.",
		}),
		eventsDispatched: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_dispatched_total",
			Help:      "Events dispatched to local callbacks by category.",
		}, []string{"category"}),
		callbackFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "callback_failures_total",
			Help:      "Callbacks that panicked while handling an event.",
		}, []string{"category"}),
		messageSends: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "message_sends_total",
			Help:      "Optimistic message sends by outcome.",
		}, []string{"outcome"}),
		staleResponses: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stale_responses_total",
			Help:      "History responses dropped because the conversation moved on.",
		}),
	}
}

func (m *Metrics) ReconnectAttempt() {
	if m == nil {
		return
	}
	m.reconnectAttempts.Inc()
}

func (m *Metrics) ConnectionState(state int) {
	if m == nil {
		return
	}
	m.connectionState.Set(float64(state))
}

func (m *Metrics) EventDispatched(category string) {
	if m == nil {
		return
	}
	m.eventsDispatched.WithLabelValues(category).Inc()
}

func (m *Metrics) CallbackFailed(category string) {
	if m == nil {
		return
	}
	m.callbackFailures.WithLabelValues(category).Inc()
}

func (m *Metrics) MessageSent(outcome string) {
	if m == nil {
		return
	}
	m.messageSends.WithLabelValues(outcome).Inc()
}

func (m *Metrics) StaleResponse() {
	if m == nil {
		return
	}
	m.staleResponses.Inc()
}
