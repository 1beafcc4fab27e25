// Package metrics exposes Prometheus counters for the conversation core.
// The session feeds them by observing the action and alert streams.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics is the instrument set for one session.
type Metrics struct {
	EngagementsStarted *prometheus.CounterVec
	MessagesSent       prometheus.Counter
	MessagesFailed     prometheus.Counter
	AlertDecisions     *prometheus.CounterVec
	SocketEvents       prometheus.Counter
}

// New registers the instrument set on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		EngagementsStarted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "engage",
			Name:      "engagements_started_total",
			Help:      "Engagement flows started, by medium.",
		}, []string{"kind"}),
		MessagesSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "engage",
			Name:      "messages_sent_total",
			Help:      "Visitor messages confirmed delivered.",
		}),
		MessagesFailed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "engage",
			Name:      "messages_failed_total",
			Help:      "Visitor message sends that failed.",
		}),
		AlertDecisions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "engage",
			Name:      "alert_decisions_total",
			Help:      "Alert gate outcomes, by decision.",
		}, []string{"decision"}),
		SocketEvents: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "engage",
			Name:      "socket_events_total",
			Help:      "Live socket events delivered to the core.",
		}),
	}
}
