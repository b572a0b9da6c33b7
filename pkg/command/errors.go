// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cuppa Contributors

package command

import (
	"github.com/samber/oops"

	"github.com/MattWindsor91/cuppa/pkg/fault"
)

// Error codes for misuse of the package API. These are not dispatch
// failures and are never sent to clients.
const (
	CodeNilInput          = "NIL_INPUT"
	CodeNilEmitter        = "NIL_EMITTER"
	CodeInvalidWord       = "INVALID_WORD"
	CodeInvalidDescriptor = "INVALID_DESCRIPTOR"
)

// ErrNilInput is returned when an engine is created without an input stream.
var ErrNilInput = oops.Code(CodeNilInput).Errorf("input stream cannot be nil")

// ErrNilEmitter is returned when an engine is created without an emitter.
var ErrNilEmitter = oops.Code(CodeNilEmitter).Errorf("response emitter cannot be nil")

// Detail messages sent after the error name.
const (
	MsgNoWord              = "need at least a command word"
	MsgUnexpectedArgument  = "expecting no argument, got one"
	MsgMissingArgument     = "expecting an argument, didn't get one"
	MsgNoSuchCommand       = "command not recognised"
	MsgNoPropagationTarget = "command type is propagate, but no propagation target is configured"
	MsgNoAction            = "matched a command with no action"
)

func errNoWord() error {
	return fault.New(fault.NoWord, MsgNoWord)
}

func errUnexpectedArgument(word string) error {
	return fault.With(fault.UnexpectedArgument, MsgUnexpectedArgument, "word", word)
}

func errMissingArgument(word string) error {
	return fault.With(fault.MissingArgument, MsgMissingArgument, "word", word)
}

func errNoSuchCommand(word string) error {
	return fault.With(fault.NoSuchCommand, MsgNoSuchCommand+": "+word, "word", word)
}

func errRejected(word, reason string) error {
	return fault.With(fault.CommandRejected, reason, "word", word)
}

func errNoPropagationTarget(word string) error {
	return fault.With(fault.NoPropagationTarget, MsgNoPropagationTarget, "word", word)
}

func errNoAction(word string) error {
	return fault.With(fault.Unreachable, MsgNoAction, "word", word)
}
