// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cuppa Contributors

package command

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Status constants for dispatch metrics.
const (
	StatusAcknowledged = "acknowledged"
	StatusSuppressed   = "suppressed"
	StatusInvalid      = "invalid"
	StatusNotFound     = "not_found"
	StatusRejected     = "rejected"
	StatusError        = "error"
)

// unmatchedLabel is the word label for dispatches that never matched an entry.
const unmatchedLabel = "-"

// CommandDispatches is the counter for dispatched commands.
// Use RegisterMetrics to register this with a Prometheus registry.
var CommandDispatches = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "cuppa_command_dispatches_total",
		Help: "Total number of dispatched commands by table word, kind and status",
	},
	[]string{"word", "kind", "status"},
)

// CommandDuration is the histogram for dispatch duration.
// Use RegisterMetrics to register this with a Prometheus registry.
var CommandDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "cuppa_command_duration_seconds",
		Help:    "Command dispatch duration in seconds",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"kind"},
)

// CommandsPropagated is the counter for lines forwarded to the propagation stream.
// Use RegisterMetrics to register this with a Prometheus registry.
var CommandsPropagated = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "cuppa_propagated_total",
		Help: "Total number of command lines forwarded to the propagation stream",
	},
)

// RegisterMetrics registers command package metrics with the given Prometheus registry.
// Panics if registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(CommandDispatches)
	reg.MustRegister(CommandDuration)
	reg.MustRegister(CommandsPropagated)
}

// RecordDispatch increments the dispatch counter.
// Parameters:
//   - word: the matched table word ("*" for the wildcard, "-" if unmatched)
//   - kind: the matched descriptor kind
//   - status: dispatch result (use Status* constants)
func RecordDispatch(word, kind, status string) {
	CommandDispatches.WithLabelValues(word, kind, status).Inc()
}

// RecordDuration records how long a dispatch took.
func RecordDuration(kind string, duration time.Duration) {
	CommandDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// RecordPropagation increments the propagated line counter.
func RecordPropagation() {
	CommandsPropagated.Inc()
}
