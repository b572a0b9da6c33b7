// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cuppa Contributors

package command

import (
	"regexp"

	"github.com/samber/oops"
)

// wordPattern matches words a client can actually send: one or more
// printable, non-space ASCII characters.
var wordPattern = regexp.MustCompile(`^[!-~]+$`)

// ValidateWord checks that word could be produced by the tokenizer.
// The wildcard is not a word and fails validation.
func ValidateWord(word string) error {
	if word == Wildcard {
		return oops.Code(CodeInvalidWord).
			Errorf("command word cannot be empty")
	}

	if !wordPattern.MatchString(word) {
		return oops.Code(CodeInvalidWord).
			With("word", word).
			Errorf("command word %q must be printable ASCII without whitespace", word)
	}

	return nil
}

// validateDescriptor checks one table entry.
func validateDescriptor(d Descriptor) error {
	if !d.IsWildcard() {
		if err := ValidateWord(d.Word); err != nil {
			return err
		}
	}

	invalid := func(reason string) error {
		return oops.Code(CodeInvalidDescriptor).
			With("word", d.Label()).
			Errorf("command %s: %s", d.Label(), reason)
	}

	switch a := d.Action.(type) {
	case nil:
		return invalid("no action")
	case NullaryAction:
		if a.Fn == nil {
			return invalid("nil handler")
		}
	case UnaryAction:
		if a.Fn == nil {
			return invalid("nil handler")
		}
	case RejectAction:
		if a.Reason == "" {
			return invalid("empty rejection reason")
		}
	}
	return nil
}
