// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cuppa Contributors

package playout

import (
	"github.com/MattWindsor91/cuppa/pkg/command"
)

// Reject is an operator-configured refusal for a word.
type Reject struct {
	Word   string
	Reason string
}

// TableOptions shapes the player's command table.
type TableOptions struct {
	// Rejects come first, so they override the player's own words.
	Rejects []Reject
	// Propagate adds a trailing wildcard that forwards every other word.
	Propagate bool
}

// Table builds the command table for p.
func (p *Player) Table(opts TableOptions) (command.Table, error) {
	entries := make([]command.Descriptor, 0, len(opts.Rejects)+8)
	for _, r := range opts.Rejects {
		entries = append(entries, command.Reject(r.Word, r.Reason))
	}

	entries = append(entries,
		command.Unary("load", p.Load),
		command.Nullary("ejct", p.Eject),
		command.Nullary("play", p.Play),
		command.Nullary("stop", p.Stop),
		command.Unary("seek", p.Seek),
		command.Nullary("quit", p.Quit),
		command.Ignore("ping"),
	)
	if opts.Propagate {
		entries = append(entries, command.Propagate(command.Wildcard))
	}

	return command.NewTable(entries...)
}
