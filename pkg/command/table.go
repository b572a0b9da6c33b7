// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cuppa Contributors

package command

import (
	"log/slog"
)

// Table is an ordered, host-owned sequence of descriptors. Order matters:
// the first matching entry wins, so a wildcard placed before specific
// entries makes them unreachable. Tables are read-only once built.
type Table []Descriptor

// NewTable validates entries and returns them as a table.
// Validation rejects entries that could never be dispatched correctly; it
// does not reject shadowed entries (see Shadowed).
func NewTable(entries ...Descriptor) (Table, error) {
	for _, d := range entries {
		if err := validateDescriptor(d); err != nil {
			return nil, err
		}
	}

	t := make(Table, len(entries))
	copy(t, entries)
	return t, nil
}

// Match returns the first descriptor whose word equals word, or the first
// wildcard reached before one. Returns a NoSuchCommand fault if nothing matches.
func (t Table) Match(word string) (Descriptor, error) {
	for _, d := range t {
		if d.IsWildcard() || d.Word == word {
			return d, nil
		}
	}
	return Descriptor{}, errNoSuchCommand(word)
}

// Shadowed returns the entries that can never match because an earlier
// wildcard or an earlier entry with the same word always wins.
func (t Table) Shadowed() []Descriptor {
	var shadowed []Descriptor
	seen := make(map[string]bool, len(t))
	wildcard := false

	for _, d := range t {
		if wildcard || seen[d.Word] {
			shadowed = append(shadowed, d)
			continue
		}
		if d.IsWildcard() {
			wildcard = true
		}
		seen[d.Word] = true
	}
	return shadowed
}

// WarnShadowed logs a warning for every shadowed entry.
func (t Table) WarnShadowed(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	for _, d := range t.Shadowed() {
		logger.Warn("command table entry is unreachable",
			"word", d.Label(),
			"kind", d.Kind().String(),
		)
	}
}
