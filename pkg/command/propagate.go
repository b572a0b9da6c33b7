// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cuppa Contributors

package command

import (
	"io"
	"sync"

	"github.com/MattWindsor91/cuppa/pkg/fault"
)

// flusher is implemented by buffered writers such as *bufio.Writer.
type flusher interface {
	Flush() error
}

// Propagator forwards command lines to a cooperating process.
// Each line is written and flushed before Forward returns, so forwarded
// commands reach the stream in the order they were issued.
type Propagator struct {
	w  io.Writer
	mu sync.Mutex
}

// NewPropagator creates a propagator writing to w.
func NewPropagator(w io.Writer) *Propagator {
	return &Propagator{w: w}
}

// Forward writes line as "word[ arg]\n" and flushes the stream.
func (p *Propagator) Forward(line Line) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	buf := make([]byte, 0, len(line.Word)+len(line.Arg)+2)
	buf = append(buf, line.String()...)
	buf = append(buf, '\n')

	if _, err := p.w.Write(buf); err != nil {
		return fault.Wrapf(fault.WriteFailed, err, "propagating "+line.Word)
	}
	if f, ok := p.w.(flusher); ok {
		if err := f.Flush(); err != nil {
			return fault.Wrapf(fault.WriteFailed, err, "flushing propagated "+line.Word)
		}
	}

	RecordPropagation()
	return nil
}
