// Package metrics exposes the daemon's Prometheus instruments.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// evaluations counts orchestrator evaluations.
	// Labels: trigger (event name), outcome (applied, noop, failed)
	evaluations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "automute",
		Name:      "evaluations_total",
		Help:      "Orchestrator evaluations by trigger and outcome",
	}, []string{"trigger", "outcome"})

	// ringerChanges counts state written to the ringer port.
	// Labels: kind (ringer_mode, interruption_filter), value
	ringerChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "automute",
		Name:      "ringer_changes_total",
		Help:      "Ringer mode and interruption filter changes applied",
	}, []string{"kind", "value"})

	// portFailures counts failed port calls.
	// Labels: port (ringer, scheduler, store), kind (error taxonomy kind)
	portFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "automute",
		Name:      "port_failures_total",
		Help:      "Port call failures by port and error kind",
	}, []string{"port", "kind"})

	pendingAlarms = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "automute",
		Name:      "pending_alarms",
		Help:      "Alarms currently armed in the alarm clock",
	})
)

// RecordEvaluation records one finished evaluation.
func RecordEvaluation(trigger, outcome string) {
	evaluations.WithLabelValues(trigger, outcome).Inc()
}

// RecordRingerChange records a value written to the ringer port.
//
// Inputs:
//
//	kind - "ringer_mode" or "interruption_filter".
//	value - The mode or filter written.
func RecordRingerChange(kind, value string) {
	ringerChanges.WithLabelValues(kind, value).Inc()
}

// RecordPortFailure records a failed port call.
func RecordPortFailure(port, kind string) {
	portFailures.WithLabelValues(port, kind).Inc()
}

// SetPendingAlarms sets the armed alarm gauge.
func SetPendingAlarms(n int) {
	pendingAlarms.Set(float64(n))
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
