// Package metrics provides Prometheus metrics for the protected player.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// IncidentsTotal counts overlays shown to the child, by source (auto/manual).
	IncidentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "safeview_incidents_total",
		Help: "Total number of playback interruptions, by source.",
	}, []string{"source"})

	// IncidentLogEntries tracks the size of the parent-facing incident log.
	IncidentLogEntries = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "safeview_incident_log_entries",
		Help: "Current number of entries in the incident log.",
	})

	TicksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "safeview_player_ticks_total",
		Help: "Total number of clock ticks that advanced playback.",
	})

	ElapsedSeconds = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "safeview_player_elapsed_seconds",
		Help: "Simulated playback position of the current session.",
	})

	// OverlayDecisionsTotal counts how the overlay was dismissed (resume/skip_further).
	OverlayDecisionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "safeview_overlay_decisions_total",
		Help: "Total number of overlay dismissals, by decision.",
	}, []string{"decision"})

	CommandsRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "safeview_commands_rejected_total",
		Help: "Total number of player commands rejected at the session boundary, by reason.",
	}, []string{"reason"})

	PublishErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "safeview_publish_errors_total",
		Help: "Total number of failed MQTT publishes, by payload kind.",
	}, []string{"kind"})
)
