// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cuppa Contributors

package response

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Channel labels for response metrics.
const (
	ChannelPrimary    = "primary"
	ChannelDiagnostic = "diagnostic"
)

// ResponsesEmitted is the counter for response lines written.
// Use RegisterMetrics to register this with a Prometheus registry.
var ResponsesEmitted = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "cuppa_responses_total",
		Help: "Total number of response lines written by tag and channel",
	},
	[]string{"tag", "channel"},
)

// RegisterMetrics registers response package metrics with the given Prometheus registry.
// Panics if registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(ResponsesEmitted)
}

func recordResponse(tag Tag, channel string) {
	ResponsesEmitted.WithLabelValues(tag.String(), channel).Inc()
}
