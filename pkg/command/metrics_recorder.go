// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cuppa Contributors

package command

import (
	"time"

	"github.com/MattWindsor91/cuppa/pkg/fault"
)

// MetricsRecorder tracks metrics for a single dispatch.
type MetricsRecorder struct {
	startTime time.Time
	word      string
	kind      string
	status    string
}

// NewMetricsRecorder initializes a recorder for a single dispatch.
func NewMetricsRecorder() *MetricsRecorder {
	return &MetricsRecorder{
		startTime: time.Now(),
		word:      unmatchedLabel,
		kind:      unmatchedLabel,
		status:    StatusError,
	}
}

// SetDescriptor sets the matched descriptor for metrics.
func (m *MetricsRecorder) SetDescriptor(d Descriptor) {
	m.word = d.Label()
	m.kind = d.Kind().String()
}

// SetStatus sets the dispatch status for metrics.
func (m *MetricsRecorder) SetStatus(status string) {
	m.status = status
}

// SetError derives the status from a dispatch failure.
func (m *MetricsRecorder) SetError(err error) {
	switch fault.KindOf(err) {
	case fault.NoSuchCommand:
		m.status = StatusNotFound
	case fault.CommandRejected:
		m.status = StatusRejected
	case fault.NoWord, fault.UnexpectedArgument, fault.MissingArgument:
		m.status = StatusInvalid
	default:
		m.status = StatusError
	}
}

// Record writes the collected metrics.
func (m *MetricsRecorder) Record() {
	RecordDispatch(m.word, m.kind, m.status)
	RecordDuration(m.kind, time.Since(m.startTime))
}
