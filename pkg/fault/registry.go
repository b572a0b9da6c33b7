// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cuppa Contributors

// Package fault provides the error registry, error classification, and the
// reporter that turns errors into tagged response lines.
package fault

import "github.com/MattWindsor91/cuppa/pkg/response"

// Kind enumerates the errors the engine and its hosts can report.
type Kind int

// Error kinds.
//
// NOTE: every kind needs an entry in registry below.
const (
	// User errors
	NoWord Kind = iota
	UnexpectedArgument
	MissingArgument
	NoSuchCommand
	BadArgument
	BadState
	NoFile
	// Policy errors
	CommandRejected
	// Environment errors
	ReadFailed
	WriteFailed
	BadFile
	BadConfig
	BackendInit
	NoMemory
	// Programmer errors
	NoPropagationTarget
	Unreachable
	Internal
	Unknown

	numKinds
)

// Blame is the party an error is attributed to.
type Blame int

// Blame categories.
const (
	User Blame = iota
	Policy
	Environment
	Programmer
)

// Severity says whether an error should end the host process.
// The engine never exits on its own; the host decides.
type Severity int

// Severities.
const (
	Normal Severity = iota
	Fatal
)

// Descriptor holds the static facts about one error kind.
type Descriptor struct {
	Kind     Kind
	Name     string
	Blame    Blame
	Severity Severity
}

// registry is indexed by Kind and never mutated.
var registry = [numKinds]Descriptor{
	NoWord:              {NoWord, "NO_WORD", User, Normal},
	UnexpectedArgument:  {UnexpectedArgument, "UNEXPECTED_ARGUMENT", User, Normal},
	MissingArgument:     {MissingArgument, "MISSING_ARGUMENT", User, Normal},
	NoSuchCommand:       {NoSuchCommand, "NO_SUCH_COMMAND", User, Normal},
	BadArgument:         {BadArgument, "BAD_ARGUMENT", User, Normal},
	BadState:            {BadState, "BAD_STATE", User, Normal},
	NoFile:              {NoFile, "NO_FILE", User, Normal},
	CommandRejected:     {CommandRejected, "COMMAND_REJECTED", Policy, Normal},
	ReadFailed:          {ReadFailed, "READ_FAILED", Environment, Fatal},
	WriteFailed:         {WriteFailed, "WRITE_FAILED", Environment, Normal},
	BadFile:             {BadFile, "BAD_FILE", Environment, Normal},
	BadConfig:           {BadConfig, "BAD_CONFIG", Environment, Normal},
	BackendInit:         {BackendInit, "BACKEND_INIT", Environment, Fatal},
	NoMemory:            {NoMemory, "NO_MEMORY", Environment, Fatal},
	NoPropagationTarget: {NoPropagationTarget, "NO_PROPAGATION_TARGET", Programmer, Normal},
	Unreachable:         {Unreachable, "UNREACHABLE", Programmer, Normal},
	Internal:            {Internal, "INTERNAL", Programmer, Normal},
	Unknown:             {Unknown, "UNKNOWN", Programmer, Normal},
}

// blameResponses maps blame to the response tag errors are sent under.
var blameResponses = [...]response.Tag{
	User:        response.What,
	Policy:      response.Nope,
	Environment: response.Fail,
	Programmer:  response.Oops,
}

// Lookup returns the descriptor for k. Kinds outside the registry describe
// themselves as Unknown.
func Lookup(k Kind) Descriptor {
	if k < 0 || k >= numKinds {
		return registry[Unknown]
	}
	return registry[k]
}

// Kinds returns every registered kind in declaration order.
func Kinds() []Kind {
	kinds := make([]Kind, 0, numKinds)
	for k := Kind(0); k < numKinds; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

// String returns the kind's registered name.
func (k Kind) String() string {
	return Lookup(k).Name
}

// Response returns the tag errors with this blame are emitted under.
func (b Blame) Response() response.Tag {
	if b < 0 || int(b) >= len(blameResponses) {
		return response.Oops
	}
	return blameResponses[b]
}

// String returns a lower-case name for the blame category.
func (b Blame) String() string {
	switch b {
	case User:
		return "user"
	case Policy:
		return "policy"
	case Environment:
		return "environment"
	case Programmer:
		return "programmer"
	default:
		return "unknown"
	}
}

// String returns a lower-case name for the severity.
func (s Severity) String() string {
	if s == Fatal {
		return "fatal"
	}
	return "normal"
}
