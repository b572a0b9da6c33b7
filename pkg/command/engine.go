// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cuppa Contributors

package command

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/MattWindsor91/cuppa/pkg/fault"
	"github.com/MattWindsor91/cuppa/pkg/response"
)

var tracer = otel.Tracer("cuppa/command")

// Readiness reports, without blocking, whether input is waiting.
type Readiness func() bool

// AlwaysReady is a Readiness for streams where blocking reads are acceptable.
func AlwaysReady() bool { return true }

// Outcome is the result of one engine call.
type Outcome int

// Outcomes.
const (
	Idle         Outcome = iota // no input was waiting; nothing was read
	EndOfInput                  // the input stream ended; no response was sent
	Acknowledged                // the command succeeded and "okay" was sent
	Suppressed                  // the command succeeded without an acknowledgement
	Failed                      // the command failed and an error response was sent
)

// String returns a lower-case name for the outcome.
func (o Outcome) String() string {
	switch o {
	case Idle:
		return "idle"
	case EndOfInput:
		return "end_of_input"
	case Acknowledged:
		return "acknowledged"
	case Suppressed:
		return "suppressed"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Engine reads commands from one input stream and dispatches them against
// a command table. It is not safe for concurrent use: callers serialize
// calls for a given input stream.
type Engine struct {
	in         *bufio.Reader
	ready      Readiness
	emitter    *response.Emitter
	reporter   *fault.Reporter
	propagator *Propagator
	logger     *slog.Logger
	trace      bool
}

// Option configures an Engine during construction.
type Option func(*Engine)

// WithReadiness sets the predicate Check consults before reading.
// If not provided, input is always considered ready.
func WithReadiness(ready Readiness) Option {
	return func(e *Engine) {
		if ready != nil {
			e.ready = ready
		}
	}
}

// WithPropagation configures the stream propagated commands are written to.
// If not provided (or nil), propagate entries fail with NoPropagationTarget.
func WithPropagation(w io.Writer) Option {
	return func(e *Engine) {
		if w != nil {
			e.propagator = NewPropagator(w)
		}
	}
}

// WithLogger sets the logger. If not provided, slog.Default() is used.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithReporter sets the error reporter. If not provided, one is built on
// the engine's emitter.
func WithReporter(r *fault.Reporter) Option {
	return func(e *Engine) {
		e.reporter = r
	}
}

// WithDebugTrace makes the engine emit dbug lines for each command.
func WithDebugTrace(enabled bool) Option {
	return func(e *Engine) {
		e.trace = enabled
	}
}

// NewEngine creates an engine reading from in and responding through emitter.
// Returns an error if in or emitter is nil.
func NewEngine(in io.Reader, emitter *response.Emitter, opts ...Option) (*Engine, error) {
	if in == nil {
		return nil, ErrNilInput
	}
	if emitter == nil {
		return nil, ErrNilEmitter
	}

	e := &Engine{
		in:      bufio.NewReader(in),
		ready:   AlwaysReady,
		emitter: emitter,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.reporter == nil {
		e.reporter = fault.NewReporter(emitter, fault.WithLogger(e.logger))
	}
	return e, nil
}

// Emitter returns the engine's response emitter, for push responses.
func (e *Engine) Emitter() *response.Emitter {
	return e.emitter
}

// Check handles one command if input is waiting, and returns Idle without
// reading otherwise. Bytes already buffered by the engine count as waiting.
func (e *Engine) Check(ctx context.Context, table Table) (Outcome, error) {
	if e.in.Buffered() == 0 && !e.ready() {
		return Idle, nil
	}
	return e.Handle(ctx, table)
}

// Handle reads one command, blocking until a full line or the end of the
// stream, and dispatches it.
func (e *Engine) Handle(ctx context.Context, table Table) (Outcome, error) {
	line, err := ReadLine(e.in)
	if errors.Is(err, ErrEndOfInput) {
		e.logger.DebugContext(ctx, "command input ended")
		return EndOfInput, nil
	}
	if err != nil {
		rec := NewMetricsRecorder()
		defer rec.Record()
		rec.SetError(err)
		return e.fail(ctx, err)
	}
	return e.Execute(ctx, table, line)
}

// Execute dispatches an already tokenized line.
// Every outcome is reported through the emitter before Execute returns;
// the returned error is the classified failure, already sent to the client.
func (e *Engine) Execute(ctx context.Context, table Table, line Line) (outcome Outcome, err error) {
	rec := NewMetricsRecorder()
	defer rec.Record()

	ctx, span := tracer.Start(ctx, "command.dispatch",
		trace.WithAttributes(attribute.String("command.word", line.Word)),
	)
	defer func() {
		span.SetAttributes(attribute.String("command.outcome", outcome.String()))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, fault.KindOf(err).String())
		}
		span.End()
	}()

	e.debug(ctx, "got command: "+line.String())
	defer e.debug(ctx, "command processed")

	d, err := table.Match(line.Word)
	if err != nil {
		rec.SetError(err)
		return e.fail(ctx, err)
	}
	rec.SetDescriptor(d)
	span.SetAttributes(
		attribute.String("command.entry", d.Label()),
		attribute.String("command.kind", d.Kind().String()),
	)

	suppressed, err := e.run(ctx, d, line)
	if err != nil {
		rec.SetError(err)
		return e.fail(ctx, err)
	}

	if suppressed {
		rec.SetStatus(StatusSuppressed)
		return Suppressed, nil
	}

	rec.SetStatus(StatusAcknowledged)
	if emitErr := e.emitter.Emit(response.Okay, line.String()); emitErr != nil {
		e.logger.WarnContext(ctx, "failed to acknowledge command",
			"word", line.Word,
			"error", emitErr,
		)
	}
	return Acknowledged, nil
}

// run performs d's action. It reports suppressed=true for successes that
// must not be acknowledged.
func (e *Engine) run(ctx context.Context, d Descriptor, line Line) (suppressed bool, err error) {
	switch a := d.Action.(type) {
	case NullaryAction:
		if line.HasArg() {
			return false, errUnexpectedArgument(line.Word)
		}
		if a.Fn == nil {
			return false, errNoAction(line.Word)
		}
		return false, fault.Wrap(fault.Unknown, a.Fn(ctx))

	case UnaryAction:
		if !line.HasArg() {
			return false, errMissingArgument(line.Word)
		}
		if a.Fn == nil {
			return false, errNoAction(line.Word)
		}
		return false, fault.Wrap(fault.Unknown, a.Fn(ctx, line.Arg))

	case RejectAction:
		return false, errRejected(line.Word, a.Reason)

	case IgnoreAction:
		return true, nil

	case PropagateAction:
		if e.propagator == nil {
			return false, errNoPropagationTarget(line.Word)
		}
		return true, e.propagator.Forward(line)

	default:
		return false, errNoAction(line.Word)
	}
}

// fail reports err to the client and returns it classified.
func (e *Engine) fail(ctx context.Context, err error) (Outcome, error) {
	err = fault.Wrap(fault.Unknown, err)
	kind := e.reporter.ReportError(ctx, err)

	d := fault.Lookup(kind)
	level := slog.LevelDebug
	if d.Blame == fault.Environment || d.Blame == fault.Programmer {
		level = slog.LevelWarn
	}
	e.logger.Log(ctx, level, "command failed",
		"kind", d.Name,
		"blame", d.Blame.String(),
		"severity", d.Severity.String(),
		"error", err,
	)
	return Failed, err
}

func (e *Engine) debug(ctx context.Context, message string) {
	if !e.trace {
		return
	}
	if err := e.emitter.Debug(message); err != nil {
		e.logger.DebugContext(ctx, "failed to emit debug trace", "error", err)
	}
}
