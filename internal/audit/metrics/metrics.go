package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AttemptsTotal tracks executed attempts per strategy and outcome.
	AttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auditor_attempts_total",
			Help: "Total number of audit attempts",
		},
		[]string{"strategy", "outcome"},
	)

	// AttemptDuration tracks attempt duration per strategy.
	AttemptDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "auditor_attempt_duration_seconds",
			Help:    "Audit attempt duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		},
		[]string{"strategy"},
	)

	// RequestsTotal tracks orchestration runs by terminal outcome.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auditor_requests_total",
			Help: "Total number of audit requests by terminal outcome",
		},
		[]string{"outcome"},
	)

	// RequestsInFlight tracks currently running orchestrations.
	RequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "auditor_requests_in_flight",
			Help: "Number of audit requests currently being processed",
		},
	)

	// PreflightTotal tracks preflight snapshot fetches by result.
	PreflightTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auditor_preflight_total",
			Help: "Total number of preflight snapshot fetches",
		},
		[]string{"result"},
	)

	// BrowserLaunchesTotal tracks browser process launches and teardowns.
	// The two series staying equal is the leak indicator.
	BrowserLaunchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auditor_browser_lifecycle_total",
			Help: "Total number of browser process lifecycle events",
		},
		[]string{"event"},
	)
)
