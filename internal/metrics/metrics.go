// Package metrics provides Prometheus instrumentation for the chat
// moderation server: gauges for presence and ban counts, counters for
// moderation and push activity.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ActiveSessions tracks the current number of presence records.
	ActiveSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "chat_active_sessions",
		Help: "Current number of active chat sessions",
	})

	// BannedDevices tracks the current number of ban records.
	BannedDevices = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "chat_banned_devices",
		Help: "Current number of banned devices",
	})

	// ReportsTotal counts report workflow activity, labeled by action:
	// "filed" or the status a moderator transitioned to.
	ReportsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "chat_reports_total",
		Help: "Total number of report workflow actions",
	}, []string{"action"})

	// BroadcastsTotal counts published broadcast notifications.
	BroadcastsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "chat_broadcasts_total",
		Help: "Total number of broadcast notifications published",
	})

	// PushDeliveriesTotal counts individual push delivery outcomes, labeled
	// by result: "success", "failed", or "pruned".
	PushDeliveriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "chat_push_deliveries_total",
		Help: "Total number of push delivery attempts by outcome",
	}, []string{"result"})
)

func init() {
	prometheus.MustRegister(
		ActiveSessions,
		BannedDevices,
		ReportsTotal,
		BroadcastsTotal,
		PushDeliveriesTotal,
	)
}

// Handler returns the HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
