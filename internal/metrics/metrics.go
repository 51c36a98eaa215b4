// internal/metrics/metrics.go
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Reminder pipeline counters, labelled by lobby kind.
var (
	RemindersScheduled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arbiter_reminders_scheduled_total",
		Help: "Lobbies transitioned pending -> scheduled by the scan job.",
	}, []string{"kind"})

	RemindersSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arbiter_reminders_sent_total",
		Help: "Reminder send jobs that delivered every destination.",
	}, []string{"kind"})

	RemindersFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arbiter_reminders_failed_total",
		Help: "Reminder send jobs that exhausted their delivery attempts.",
	}, []string{"kind"})

	ScanConflicts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arbiter_scan_conflicts_total",
		Help: "Scan races lost to a concurrent scan invocation.",
	}, []string{"kind"})
)

// Interactive operation counters.
var (
	ClaimConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arbiter_claim_conflicts_total",
		Help: "Referee claims that lost the compare-and-swap race.",
	})

	InteractionReplies = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arbiter_interaction_replies_total",
		Help: "Interaction replies, by outcome.",
	}, []string{"action", "outcome"})
)

// Handler exposes the default registry for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
