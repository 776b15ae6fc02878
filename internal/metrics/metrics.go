// Package metrics provides Prometheus instrumentation for the chat bot. It
// exposes counters for inbound message throughput and moderation outcomes,
// and a histogram for moderation latency.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// MessagesTotal counts inbound messages, labeled by platform and by
	// outcome: "received" or "invalid".
	MessagesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bot_messages_total",
		Help: "Total number of inbound messages",
	}, []string{"platform", "type"}) // type = "received", "invalid"

	// CensoredTotal counts messages whose content was censored.
	CensoredTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bot_censored_total",
		Help: "Total number of censored messages",
	}, []string{"platform"})

	// ModerationErrorsTotal counts failed moderation passes, labeled by the
	// failing step: "settings", "notify" or "delete".
	ModerationErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bot_moderation_errors_total",
		Help: "Total number of failed moderation steps",
	}, []string{"platform", "step"})

	// ModerationLatency records the duration of a moderation pass in seconds.
	ModerationLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "bot_moderation_latency_seconds",
		Help:    "Moderation pass latency in seconds",
		Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
	})

	// OutboundTotal counts events published to platform gateways, labeled by
	// action: "send", "reply" or "delete".
	OutboundTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bot_outbound_total",
		Help: "Total number of events published to platform gateways",
	}, []string{"platform", "action"})
)

func init() {
	prometheus.MustRegister(
		MessagesTotal,
		CensoredTotal,
		ModerationErrorsTotal,
		ModerationLatency,
		OutboundTotal,
	)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
