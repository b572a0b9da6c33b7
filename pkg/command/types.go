// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cuppa Contributors

// Package command provides the line tokenizer, command tables, and the engine
// that reads, matches, and executes one command per call.
package command

import "context"

// Wildcard is the word of a descriptor that matches any word not matched by
// an earlier entry. Tokenized words are never empty, so it cannot collide
// with a real command.
const Wildcard = ""

// Kind classifies what a descriptor does when matched.
type Kind int

// Descriptor kinds.
const (
	KindNullary   Kind = iota // handler takes no argument
	KindUnary                 // handler takes exactly one argument
	KindReject                // always refused with a reason
	KindPropagate             // forwarded to the cooperating process
	KindIgnore                // accepted silently
)

// String returns a lower-case name for the kind.
func (k Kind) String() string {
	switch k {
	case KindNullary:
		return "nullary"
	case KindUnary:
		return "unary"
	case KindReject:
		return "reject"
	case KindPropagate:
		return "propagate"
	case KindIgnore:
		return "ignore"
	default:
		return "unknown"
	}
}

// NullaryFunc handles a command that takes no argument.
// The context carries logging and tracing values only; the engine never cancels it.
type NullaryFunc func(ctx context.Context) error

// UnaryFunc handles a command that takes one argument.
type UnaryFunc func(ctx context.Context, arg string) error

// Action is the payload of a descriptor. It is implemented only by the
// action types in this package.
type Action interface {
	Kind() Kind
	action()
}

// NullaryAction invokes Fn when the command arrives without an argument.
type NullaryAction struct {
	Fn NullaryFunc
}

// UnaryAction invokes Fn with the command's argument.
type UnaryAction struct {
	Fn UnaryFunc
}

// RejectAction refuses the command, giving Reason to the client.
type RejectAction struct {
	Reason string
}

// PropagateAction forwards the command line to the propagation stream.
type PropagateAction struct{}

// IgnoreAction accepts the command without acknowledging it.
type IgnoreAction struct{}

// Kind implements Action.
func (NullaryAction) Kind() Kind { return KindNullary }

// Kind implements Action.
func (UnaryAction) Kind() Kind { return KindUnary }

// Kind implements Action.
func (RejectAction) Kind() Kind { return KindReject }

// Kind implements Action.
func (PropagateAction) Kind() Kind { return KindPropagate }

// Kind implements Action.
func (IgnoreAction) Kind() Kind { return KindIgnore }

func (NullaryAction) action()   {}
func (UnaryAction) action()     {}
func (RejectAction) action()    {}
func (PropagateAction) action() {}
func (IgnoreAction) action()    {}

// Descriptor is one entry of a command table.
type Descriptor struct {
	Word   string // exact word to match, or Wildcard
	Action Action
}

// IsWildcard reports whether d matches any word.
func (d Descriptor) IsWildcard() bool {
	return d.Word == Wildcard
}

// Kind returns the kind of d's action.
// Returns -1 if d has no action.
func (d Descriptor) Kind() Kind {
	if d.Action == nil {
		return -1
	}
	return d.Action.Kind()
}

// Label returns the word for logs and metrics, with "*" for the wildcard.
func (d Descriptor) Label() string {
	if d.IsWildcard() {
		return "*"
	}
	return d.Word
}

// Nullary describes a command that takes no argument.
func Nullary(word string, fn NullaryFunc) Descriptor {
	return Descriptor{Word: word, Action: NullaryAction{Fn: fn}}
}

// Unary describes a command that takes one argument.
func Unary(word string, fn UnaryFunc) Descriptor {
	return Descriptor{Word: word, Action: UnaryAction{Fn: fn}}
}

// Reject describes a command that is always refused with reason.
func Reject(word, reason string) Descriptor {
	return Descriptor{Word: word, Action: RejectAction{Reason: reason}}
}

// Propagate describes a command forwarded verbatim to the propagation stream.
func Propagate(word string) Descriptor {
	return Descriptor{Word: word, Action: PropagateAction{}}
}

// Ignore describes a command that is accepted and otherwise dropped.
func Ignore(word string) Descriptor {
	return Descriptor{Word: word, Action: IgnoreAction{}}
}
