// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cuppa Contributors

package command

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MattWindsor91/cuppa/pkg/errutil"
	"github.com/MattWindsor91/cuppa/pkg/fault"
	"github.com/MattWindsor91/cuppa/pkg/response"
)

// harness wires an engine to in-memory streams.
type harness struct {
	engine      *Engine
	primary     *bytes.Buffer
	diagnostic  *bytes.Buffer
	propagation *bytes.Buffer
}

func newHarness(t *testing.T, input string, opts ...Option) *harness {
	t.Helper()
	h := &harness{
		primary:     &bytes.Buffer{},
		diagnostic:  &bytes.Buffer{},
		propagation: &bytes.Buffer{},
	}
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	opts = append([]Option{WithLogger(quiet)}, opts...)

	e, err := NewEngine(strings.NewReader(input), response.NewEmitter(h.primary, h.diagnostic), opts...)
	require.NoError(t, err)
	h.engine = e
	return h
}

func (h *harness) withPropagation(t *testing.T, input string) *harness {
	t.Helper()
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	e, err := NewEngine(strings.NewReader(input), response.NewEmitter(h.primary, h.diagnostic),
		WithLogger(quiet), WithPropagation(h.propagation))
	require.NoError(t, err)
	h.engine = e
	return h
}

func TestNewEngine_NilArguments(t *testing.T) {
	_, err := NewEngine(nil, response.NewEmitter(nil, nil))
	errutil.AssertErrorCode(t, err, CodeNilInput)

	_, err = NewEngine(strings.NewReader(""), nil)
	errutil.AssertErrorCode(t, err, CodeNilEmitter)
}

func TestEngine_NullaryCommand(t *testing.T) {
	called := 0
	table := Table{Nullary("play", func(context.Context) error {
		called++
		return nil
	})}

	h := newHarness(t, "play\n")
	outcome, err := h.engine.Handle(context.Background(), table)

	require.NoError(t, err)
	assert.Equal(t, Acknowledged, outcome)
	assert.Equal(t, 1, called)
	assert.Equal(t, "okay play\n", h.primary.String())
}

func TestEngine_NullaryCommandRejectsArgument(t *testing.T) {
	called := false
	table := Table{Nullary("play", func(context.Context) error {
		called = true
		return nil
	})}

	h := newHarness(t, "play foo\n")
	outcome, err := h.engine.Handle(context.Background(), table)

	assert.Equal(t, Failed, outcome)
	errutil.AssertKind(t, err, fault.UnexpectedArgument)
	assert.False(t, called)
	assert.Equal(t, "what UNEXPECTED_ARGUMENT "+MsgUnexpectedArgument+"\n", h.primary.String())
}

func TestEngine_UnaryCommand(t *testing.T) {
	var got string
	table := Table{Unary("seek", func(_ context.Context, arg string) error {
		got = arg
		return nil
	})}

	h := newHarness(t, "seek 10\n")
	outcome, err := h.engine.Handle(context.Background(), table)

	require.NoError(t, err)
	assert.Equal(t, Acknowledged, outcome)
	assert.Equal(t, "10", got)
	assert.Equal(t, "okay seek 10\n", h.primary.String())
}

func TestEngine_UnaryCommandEchoesArgumentVerbatim(t *testing.T) {
	table := Table{Unary("load", func(context.Context, string) error { return nil })}

	h := newHarness(t, "  load   My Song  (live).mp3 \t\n")
	_, err := h.engine.Handle(context.Background(), table)

	require.NoError(t, err)
	assert.Equal(t, "okay load My Song  (live).mp3\n", h.primary.String())
}

func TestEngine_UnaryCommandRequiresArgument(t *testing.T) {
	called := false
	table := Table{Unary("seek", func(context.Context, string) error {
		called = true
		return nil
	})}

	for _, input := range []string{"seek\n", "seek    \n"} {
		h := newHarness(t, input)
		outcome, err := h.engine.Handle(context.Background(), table)

		assert.Equal(t, Failed, outcome)
		errutil.AssertKind(t, err, fault.MissingArgument)
		assert.Equal(t, "what MISSING_ARGUMENT "+MsgMissingArgument+"\n", h.primary.String())
	}
	assert.False(t, called)
}

func TestEngine_RejectCommand(t *testing.T) {
	called := false
	handler := func(context.Context) error {
		called = true
		return nil
	}
	table := Table{
		Reject("quit", "obsolete, use stop"),
		Nullary("stop", handler),
	}

	for _, input := range []string{"quit\n", "quit now\n"} {
		h := newHarness(t, input)
		outcome, err := h.engine.Handle(context.Background(), table)

		assert.Equal(t, Failed, outcome)
		errutil.AssertKind(t, err, fault.CommandRejected)
		assert.Equal(t, "nope COMMAND_REJECTED obsolete, use stop\n", h.primary.String())
		assert.Empty(t, h.diagnostic.String())
	}
	assert.False(t, called)
}

func TestEngine_IgnoreCommand(t *testing.T) {
	table := Table{Ignore("ping")}

	for _, input := range []string{"ping\n", "ping pong\n"} {
		h := newHarness(t, input)
		outcome, err := h.engine.Handle(context.Background(), table)

		require.NoError(t, err)
		assert.Equal(t, Suppressed, outcome)
		assert.Empty(t, h.primary.String())
	}
}

func TestEngine_PropagateCommand(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"foo\n", "foo\n"},
		{"foo bar\n", "foo bar\n"},
		{"  foo   bar  baz  \n", "foo bar  baz\n"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			h := newHarness(t, "")
			h.withPropagation(t, tt.input)

			outcome, err := h.engine.Handle(context.Background(), Table{Propagate("foo")})

			require.NoError(t, err)
			assert.Equal(t, Suppressed, outcome)
			assert.Equal(t, tt.want, h.propagation.String())
			assert.Empty(t, h.primary.String())
		})
	}
}

func TestEngine_PropagateWithoutTarget(t *testing.T) {
	h := newHarness(t, "foo\n")
	outcome, err := h.engine.Handle(context.Background(), Table{Propagate("foo")})

	assert.Equal(t, Failed, outcome)
	errutil.AssertKind(t, err, fault.NoPropagationTarget)
	assert.False(t, fault.IsFatal(err))
	want := "oops NO_PROPAGATION_TARGET " + MsgNoPropagationTarget + "\n"
	assert.Equal(t, want, h.primary.String())
	assert.Equal(t, want, h.diagnostic.String())
}

func TestEngine_PropagateWriteFailure(t *testing.T) {
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	var primary bytes.Buffer
	e, err := NewEngine(strings.NewReader("foo\n"), response.NewEmitter(&primary, nil),
		WithLogger(quiet), WithPropagation(errWriter{}))
	require.NoError(t, err)

	outcome, err := e.Handle(context.Background(), Table{Propagate(Wildcard)})
	assert.Equal(t, Failed, outcome)
	errutil.AssertKind(t, err, fault.WriteFailed)
	assert.True(t, strings.HasPrefix(primary.String(), "fail WRITE_FAILED "))
}

func TestEngine_PropagateFlushesBufferedTarget(t *testing.T) {
	var sink bytes.Buffer
	buffered := bufio.NewWriterSize(&sink, 4096)

	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	e, err := NewEngine(strings.NewReader("a\nb 1\n"), response.NewEmitter(nil, nil),
		WithLogger(quiet), WithPropagation(buffered))
	require.NoError(t, err)

	table := Table{Propagate(Wildcard)}
	_, err = e.Handle(context.Background(), table)
	require.NoError(t, err)
	assert.Equal(t, "a\n", sink.String(), "forwarded line must be flushed before Handle returns")

	_, err = e.Handle(context.Background(), table)
	require.NoError(t, err)
	assert.Equal(t, "a\nb 1\n", sink.String())
}

func TestEngine_NoSuchCommand(t *testing.T) {
	h := newHarness(t, "frob\n")
	outcome, err := h.engine.Handle(context.Background(), Table{Nullary("play", noop)})

	assert.Equal(t, Failed, outcome)
	errutil.AssertKind(t, err, fault.NoSuchCommand)
	assert.Equal(t, "what NO_SUCH_COMMAND command not recognised: frob\n", h.primary.String())
}

func TestEngine_NoWord(t *testing.T) {
	h := newHarness(t, "   \n")
	outcome, err := h.engine.Handle(context.Background(), Table{Nullary("play", noop)})

	assert.Equal(t, Failed, outcome)
	errutil.AssertKind(t, err, fault.NoWord)
	assert.Equal(t, "what NO_WORD "+MsgNoWord+"\n", h.primary.String())
}

func TestEngine_EndOfInputIsQuiet(t *testing.T) {
	h := newHarness(t, "")
	outcome, err := h.engine.Handle(context.Background(), Table{Nullary("play", noop)})

	require.NoError(t, err)
	assert.Equal(t, EndOfInput, outcome)
	assert.Empty(t, h.primary.String())
	assert.Empty(t, h.diagnostic.String())
}

func TestEngine_ReadFailureIsFatal(t *testing.T) {
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	var primary, diagnostic bytes.Buffer
	e, err := NewEngine(errReader{errors.New("EIO")}, response.NewEmitter(&primary, &diagnostic), WithLogger(quiet))
	require.NoError(t, err)

	outcome, err := e.Handle(context.Background(), Table{})
	assert.Equal(t, Failed, outcome)
	errutil.AssertKind(t, err, fault.ReadFailed)
	assert.True(t, fault.IsFatal(err))
	assert.Contains(t, diagnostic.String(), "fail READ_FAILED")
}

func TestEngine_HandlerFaultKeepsKind(t *testing.T) {
	table := Table{Nullary("play", func(context.Context) error {
		return fault.New(fault.BadState, "nothing loaded")
	})}

	h := newHarness(t, "play\n")
	outcome, err := h.engine.Handle(context.Background(), table)

	assert.Equal(t, Failed, outcome)
	errutil.AssertKind(t, err, fault.BadState)
	assert.Equal(t, "what BAD_STATE nothing loaded\n", h.primary.String())
}

func TestEngine_HandlerPlainErrorIsUnknown(t *testing.T) {
	table := Table{Unary("load", func(context.Context, string) error {
		return errors.New("decoder exploded")
	})}

	h := newHarness(t, "load x\n")
	outcome, err := h.engine.Handle(context.Background(), table)

	assert.Equal(t, Failed, outcome)
	errutil.AssertKind(t, err, fault.Unknown)
	assert.Equal(t, "oops UNKNOWN decoder exploded\n", h.primary.String())
	assert.Equal(t, "oops UNKNOWN decoder exploded\n", h.diagnostic.String())
}

func TestEngine_DescriptorWithoutAction(t *testing.T) {
	h := newHarness(t, "play\n")
	outcome, err := h.engine.Handle(context.Background(), Table{{Word: "play"}})

	assert.Equal(t, Failed, outcome)
	errutil.AssertKind(t, err, fault.Unreachable)
	assert.Contains(t, h.primary.String(), "oops UNREACHABLE")
}

func TestEngine_WildcardDispatch(t *testing.T) {
	var hits []string
	record := func(name string) NullaryFunc {
		return func(context.Context) error {
			hits = append(hits, name)
			return nil
		}
	}

	after := Table{
		Nullary("play", record("play")),
		Nullary("stop", record("stop")),
		Nullary(Wildcard, record("any")),
	}
	h := newHarness(t, "play\nstop\neject\n")
	for range 3 {
		_, err := h.engine.Handle(context.Background(), after)
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"play", "stop", "any"}, hits)
	assert.Equal(t, "okay play\nokay stop\nokay eject\n", h.primary.String(),
		"the acknowledgement echoes the word actually sent")

	hits = nil
	before := Table{
		Nullary(Wildcard, record("any")),
		Nullary("play", record("play")),
		Nullary("stop", record("stop")),
	}
	h = newHarness(t, "play\nstop\n")
	for range 2 {
		_, err := h.engine.Handle(context.Background(), before)
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"any", "any"}, hits)
}

func TestEngine_CheckIdleDoesNotRead(t *testing.T) {
	reads := 0
	in := readerFunc(func(p []byte) (int, error) {
		reads++
		return copy(p, "play\n"), nil
	})

	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	var primary bytes.Buffer
	e, err := NewEngine(in, response.NewEmitter(&primary, nil),
		WithLogger(quiet), WithReadiness(func() bool { return false }))
	require.NoError(t, err)

	outcome, err := e.Check(context.Background(), Table{Nullary("play", noop)})
	require.NoError(t, err)
	assert.Equal(t, Idle, outcome)
	assert.Zero(t, reads)
	assert.Empty(t, primary.String())
}

func TestEngine_CheckReadyHandles(t *testing.T) {
	h := newHarness(t, "play\n", WithReadiness(func() bool { return true }))

	outcome, err := h.engine.Check(context.Background(), Table{Nullary("play", noop)})
	require.NoError(t, err)
	assert.Equal(t, Acknowledged, outcome)
}

func TestEngine_CheckDrainsBufferedLines(t *testing.T) {
	ready := true
	h := newHarness(t, "play\nstop\n", WithReadiness(func() bool { return ready }))
	table := Table{Nullary("play", noop), Nullary("stop", noop)}

	outcome, err := h.engine.Check(context.Background(), table)
	require.NoError(t, err)
	assert.Equal(t, Acknowledged, outcome)

	// The descriptor has nothing left, but the second line is already buffered.
	ready = false
	outcome, err = h.engine.Check(context.Background(), table)
	require.NoError(t, err)
	assert.Equal(t, Acknowledged, outcome)
	assert.Equal(t, "okay play\nokay stop\n", h.primary.String())

	outcome, err = h.engine.Check(context.Background(), table)
	require.NoError(t, err)
	assert.Equal(t, Idle, outcome)
}

func TestEngine_DebugTrace(t *testing.T) {
	h := newHarness(t, "play\n", WithDebugTrace(true))
	_, err := h.engine.Handle(context.Background(), Table{Nullary("play", noop)})
	require.NoError(t, err)

	assert.Equal(t, "dbug got command: play\ndbug command processed\n", h.diagnostic.String())
	assert.Equal(t, "okay play\n", h.primary.String())
}

func TestEngine_Execute(t *testing.T) {
	h := newHarness(t, "")
	outcome, err := h.engine.Execute(context.Background(), Table{Ignore(Wildcard)}, Line{Word: "x"})
	require.NoError(t, err)
	assert.Equal(t, Suppressed, outcome)
}

func TestEngine_RecordsDispatchMetrics(t *testing.T) {
	before := testutil.ToFloat64(CommandDispatches.WithLabelValues("metricsplay", "nullary", StatusAcknowledged))
	beforeMissing := testutil.ToFloat64(CommandDispatches.WithLabelValues(unmatchedLabel, unmatchedLabel, StatusNotFound))

	h := newHarness(t, "metricsplay\nnothere\n")
	table := Table{Nullary("metricsplay", noop)}
	_, _ = h.engine.Handle(context.Background(), table)
	_, _ = h.engine.Handle(context.Background(), table)

	assert.Equal(t, before+1, testutil.ToFloat64(CommandDispatches.WithLabelValues("metricsplay", "nullary", StatusAcknowledged)))
	assert.Equal(t, beforeMissing+1, testutil.ToFloat64(CommandDispatches.WithLabelValues(unmatchedLabel, unmatchedLabel, StatusNotFound)))
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "end_of_input", EndOfInput.String())
	assert.Equal(t, "acknowledged", Acknowledged.String())
	assert.Equal(t, "suppressed", Suppressed.String())
	assert.Equal(t, "failed", Failed.String())
	assert.Equal(t, "unknown", Outcome(99).String())
}

type errWriter struct{}

func (errWriter) Write([]byte) (int, error) { return 0, errors.New("EPIPE") }

type readerFunc func(p []byte) (int, error)

func (f readerFunc) Read(p []byte) (int, error) { return f(p) }
