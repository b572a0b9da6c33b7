// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cuppa Contributors

package fault

import (
	"github.com/samber/oops"
)

// Context keys attached to every fault error.
const (
	KeyKind     = "kind"
	KeyBlame    = "blame"
	KeySeverity = "severity"
)

func builder(kind Kind) oops.OopsErrorBuilder {
	d := Lookup(kind)
	return oops.Code(d.Name).With(
		KeyKind, d.Name,
		KeyBlame, d.Blame.String(),
		KeySeverity, d.Severity.String(),
	)
}

// New creates an error of the given kind. The detail is the human-readable
// text sent after the error name in the response line.
func New(kind Kind, detail string) error {
	return builder(kind).Errorf("%s", detail)
}

// With creates an error of the given kind carrying extra context.
// kv follows oops.With conventions (alternating keys and values).
func With(kind Kind, detail string, kv ...any) error {
	return builder(kind).With(kv...).Errorf("%s", detail)
}

// Wrap classifies err as the given kind. Errors that already carry a kind
// are returned unchanged so the original classification wins.
func Wrap(kind Kind, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := kindOf(err); ok {
		return err
	}
	return builder(kind).Wrap(err)
}

// Wrapf is Wrap with a detail message prefixed to the cause.
func Wrapf(kind Kind, err error, detail string) error {
	if err == nil {
		return nil
	}
	if _, ok := kindOf(err); ok {
		return err
	}
	return builder(kind).Wrapf(err, "%s", detail)
}

// KindOf classifies err. Errors that were not created by this package are
// Unknown, which blames the programmer: handlers should say what went wrong.
func KindOf(err error) Kind {
	if k, ok := kindOf(err); ok {
		return k
	}
	return Unknown
}

// Is reports whether err is classified as kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// IsFatal reports whether err has fatal severity.
func IsFatal(err error) bool {
	return err != nil && Lookup(KindOf(err)).Severity == Fatal
}

// ParseKind returns the kind with the given registered name.
func ParseKind(name string) (Kind, bool) {
	for _, d := range registry {
		if d.Name == name {
			return d.Kind, true
		}
	}
	return 0, false
}

func kindOf(err error) (Kind, bool) {
	if err == nil {
		return 0, false
	}
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return 0, false
	}
	name, ok := oopsErr.Context()[KeyKind].(string)
	if !ok {
		return 0, false
	}
	return ParseKind(name)
}
