// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cuppa Contributors

package fault

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/MattWindsor91/cuppa/pkg/response"
)

// FallbackMessage replaces an error detail that could not be rendered.
const FallbackMessage = "(ran out of memory to write error!)"

// DefaultDetailLimit is the default size in bytes of the buffer error details
// are rendered into.
const DefaultDetailLimit = 4096

// errDetailTooLong reports that a detail outgrew the rendering buffer.
var errDetailTooLong = errors.New("error detail exceeds rendering buffer")

// RenderFunc writes an error detail to w.
type RenderFunc func(w io.Writer) error

// Reporter renders errors and emits them under the response tag their blame
// maps to. Reporting never fails: problems rendering or emitting are logged
// and otherwise swallowed.
type Reporter struct {
	emitter *response.Emitter
	logger  *slog.Logger
	limit   int
}

// ReporterOption configures a Reporter during construction.
type ReporterOption func(*Reporter)

// WithLogger sets the logger used for problems the reporter cannot surface.
func WithLogger(logger *slog.Logger) ReporterOption {
	return func(r *Reporter) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithDetailLimit bounds the buffer details are rendered into. Details that
// do not fit are replaced with FallbackMessage.
func WithDetailLimit(limit int) ReporterOption {
	return func(r *Reporter) {
		if limit > 0 {
			r.limit = limit
		}
	}
}

// NewReporter creates a reporter that emits through emitter.
func NewReporter(emitter *response.Emitter, opts ...ReporterOption) *Reporter {
	r := &Reporter{
		emitter: emitter,
		logger:  slog.Default(),
		limit:   DefaultDetailLimit,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Report emits "<NAME> <detail>" for kind and returns the matching error.
func (r *Reporter) Report(ctx context.Context, kind Kind, detail string) error {
	r.ReportFunc(ctx, kind, func(w io.Writer) error {
		_, err := io.WriteString(w, detail)
		//nolint:wrapcheck // surfaced only as a fallback trigger
		return err
	})
	return New(kind, detail)
}

// ReportError emits err under its classified kind and returns that kind.
func (r *Reporter) ReportError(ctx context.Context, err error) Kind {
	kind := KindOf(err)
	r.ReportFunc(ctx, kind, func(w io.Writer) error {
		_, werr := io.WriteString(w, err.Error())
		//nolint:wrapcheck // surfaced only as a fallback trigger
		return werr
	})
	return kind
}

// ReportFunc emits an error of the given kind whose detail is produced by
// render. If render fails, panics, or overflows the detail buffer, the
// detail becomes FallbackMessage.
func (r *Reporter) ReportFunc(ctx context.Context, kind Kind, render RenderFunc) {
	d := Lookup(kind)
	detail := r.renderDetail(ctx, d, render)

	if r.emitter == nil {
		return
	}
	if err := r.emitter.Emit(d.Blame.Response(), d.Name+" "+detail); err != nil {
		r.logger.WarnContext(ctx, "failed to emit error response",
			"kind", d.Name,
			"error", err,
		)
	}
}

func (r *Reporter) renderDetail(ctx context.Context, d Descriptor, render RenderFunc) (detail string) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.WarnContext(ctx, "panic while rendering error detail",
				"kind", d.Name,
				"panic", rec,
			)
			detail = FallbackMessage
		}
	}()

	buf := &boundedBuffer{limit: r.limit}
	if err := render(buf); err != nil {
		r.logger.WarnContext(ctx, "could not render error detail",
			"kind", d.Name,
			"error", err,
		)
		return FallbackMessage
	}
	return flatten(buf.String())
}

// flatten keeps a detail on one response line.
func flatten(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' {
			return ' '
		}
		return r
	}, s)
}

// boundedBuffer refuses writes past its limit instead of growing.
type boundedBuffer struct {
	sb    strings.Builder
	limit int
}

func (b *boundedBuffer) Write(p []byte) (int, error) {
	if b.sb.Len()+len(p) > b.limit {
		return 0, errDetailTooLong
	}
	return b.sb.Write(p)
}

func (b *boundedBuffer) String() string {
	return b.sb.String()
}
