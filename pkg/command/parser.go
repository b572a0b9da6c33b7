// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cuppa Contributors

package command

import (
	"bufio"
	"errors"
	"io"
	"strings"

	"github.com/MattWindsor91/cuppa/pkg/fault"
)

// ErrEndOfInput signals that the input stream ended before a command began.
// It is a quiet termination condition, not a dispatch failure.
var ErrEndOfInput = errors.New("end of input")

// Line is a tokenized command line.
type Line struct {
	Word string // first whitespace-delimited token, never empty
	Arg  string // remainder with surrounding whitespace removed; empty if absent
}

// HasArg reports whether the line carries an argument.
// An argument made only of whitespace counts as absent.
func (l Line) HasArg() bool {
	return l.Arg != ""
}

// String renders the line in wire form without a terminator.
func (l Line) String() string {
	if !l.HasArg() {
		return l.Word
	}
	return l.Word + " " + l.Arg
}

// Parse splits one raw line, terminator included or not, into a word and
// an optional argument. The argument preserves internal whitespace.
func Parse(raw string) (Line, error) {
	s := strings.TrimLeftFunc(raw, isSpace)
	if s == "" {
		return Line{}, errNoWord()
	}

	end := strings.IndexFunc(s, isSpace)
	if end == -1 {
		return Line{Word: s}, nil
	}

	return Line{
		Word: s[:end],
		Arg:  strings.TrimFunc(s[end:], isSpace),
	}, nil
}

// isSpace reports whether r separates words on the wire. Only ASCII
// whitespace counts; other runes belong to the word or argument.
func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

// ReadLine reads and tokenizes one line from r. It blocks until a full line
// or the end of the stream is available. A final line without a terminator
// is still a command; a stream that ends before any byte yields
// ErrEndOfInput.
func ReadLine(r *bufio.Reader) (Line, error) {
	raw, err := r.ReadString('\n')
	if err != nil {
		if !errors.Is(err, io.EOF) {
			return Line{}, fault.Wrapf(fault.ReadFailed, err, "reading command")
		}
		if raw == "" {
			return Line{}, ErrEndOfInput
		}
	}
	return Parse(raw)
}
