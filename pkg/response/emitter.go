// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cuppa Contributors

package response

import (
	"errors"
	"io"
	"sync"

	"github.com/samber/oops"
)

// CodeUnknownTag is the error code for emitting a tag missing from the registry.
const CodeUnknownTag = "UNKNOWN_TAG"

// Emitter renders response lines and routes them according to the registry.
// Writes are synchronous and whole-line; an Emitter is safe for concurrent use.
type Emitter struct {
	primary    io.Writer
	diagnostic io.Writer
	mu         sync.Mutex
}

// NewEmitter creates an emitter writing client-facing lines to primary and
// log-facing lines to diagnostic. Either writer may be nil, in which case
// lines routed to it are dropped.
func NewEmitter(primary, diagnostic io.Writer) *Emitter {
	return &Emitter{
		primary:    primary,
		diagnostic: diagnostic,
	}
}

// Emit writes "<tag> <message>\n" to every channel the tag is routed to.
// The message is written verbatim; it is never interpreted as a format.
// A failure on one channel does not prevent the write to the other.
func (e *Emitter) Emit(tag Tag, message string) error {
	d, ok := Lookup(tag)
	if !ok {
		return oops.Code(CodeUnknownTag).
			With("tag", int(tag)).
			Errorf("unknown response tag %d", int(tag))
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	var errs []error
	if d.Primary && e.primary != nil {
		if err := writeLine(e.primary, d, message); err != nil {
			errs = append(errs, oops.With("tag", d.Name, "channel", ChannelPrimary).Wrap(err))
		} else {
			recordResponse(tag, ChannelPrimary)
		}
	}
	if d.Diagnostic && e.diagnostic != nil {
		if err := writeLine(e.diagnostic, d, message); err != nil {
			errs = append(errs, oops.With("tag", d.Name, "channel", ChannelDiagnostic).Wrap(err))
		} else {
			recordResponse(tag, ChannelDiagnostic)
		}
	}
	return errors.Join(errs...)
}

// Debug emits a dbug line.
func (e *Emitter) Debug(message string) error {
	return e.Emit(Dbug, message)
}

// writeLine renders a fresh line for w so each destination gets its own copy.
func writeLine(w io.Writer, d Descriptor, message string) error {
	_, err := w.Write(Render(d.Tag, message))
	//nolint:wrapcheck // wrapped with channel context by the caller
	return err
}

// Render returns the wire form of a response line, including the terminator.
// An empty message renders as the bare tag.
func Render(tag Tag, message string) []byte {
	name := tag.String()
	line := make([]byte, 0, len(name)+len(message)+2)
	line = append(line, name...)
	if message != "" {
		line = append(line, ' ')
		line = append(line, message...)
	}
	return append(line, '\n')
}
