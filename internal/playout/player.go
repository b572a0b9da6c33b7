// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cuppa Contributors

// Package playout is a small demonstration host: a toy audio player whose
// transport controls are driven through the command engine. It tracks state
// and position only; no audio is decoded.
package playout

import (
	"context"
	"log/slog"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/MattWindsor91/cuppa/pkg/fault"
	"github.com/MattWindsor91/cuppa/pkg/response"
)

// State is the player's transport state.
type State int

// Player states.
const (
	Ejected State = iota
	Stopped
	Playing
)

// String returns the state as sent in stat responses.
func (s State) String() string {
	switch s {
	case Ejected:
		return "ejected"
	case Stopped:
		return "stopped"
	case Playing:
		return "playing"
	default:
		return "unknown"
	}
}

// Player holds the transport state for one session.
type Player struct {
	mu       sync.Mutex
	emitter  *response.Emitter
	logger   *slog.Logger
	state    State
	file     string
	position time.Duration
	reported time.Duration
	done     bool
}

// Option configures a Player.
type Option func(*Player)

// WithLogger sets the logger. If not provided, slog.Default() is used.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Player) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewPlayer creates an ejected player that pushes stat and time responses
// through emitter.
func NewPlayer(emitter *response.Emitter, opts ...Option) *Player {
	p := &Player{
		emitter: emitter,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// State returns the current transport state.
func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// File returns the loaded file, or "" when ejected.
func (p *Player) File() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.file
}

// Position returns the playback position.
func (p *Player) Position() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.position
}

// Done reports whether quit has been requested.
func (p *Player) Done() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}

// Load loads path and stops at its start.
func (p *Player) Load(ctx context.Context, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fault.Wrapf(fault.BadFile, err, "cannot load "+path)
	}
	if !info.Mode().IsRegular() {
		return fault.With(fault.BadFile, "not a regular file: "+path, "path", path)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.file = path
	p.position = 0
	p.reported = 0
	p.setState(ctx, Stopped)
	return nil
}

// Eject unloads the current file.
func (p *Player) Eject(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.requireFile("ejct"); err != nil {
		return err
	}
	p.file = ""
	p.position = 0
	p.setState(ctx, Ejected)
	return nil
}

// Play starts playback.
func (p *Player) Play(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.requireFile("play"); err != nil {
		return err
	}
	if p.state == Playing {
		return fault.With(fault.BadState, "already playing", "word", "play")
	}
	p.setState(ctx, Playing)
	return nil
}

// Stop pauses playback, keeping the position.
func (p *Player) Stop(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.requireFile("stop"); err != nil {
		return err
	}
	if p.state != Playing {
		return fault.With(fault.BadState, "not playing", "word", "stop")
	}
	p.setState(ctx, Stopped)
	return nil
}

// Seek moves to the position given in microseconds.
func (p *Player) Seek(ctx context.Context, arg string) error {
	usec, err := strconv.ParseUint(arg, 10, 63)
	if err != nil {
		return fault.With(fault.BadArgument, "position must be a whole number of microseconds", "arg", arg)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.requireFile("seek"); err != nil {
		return err
	}
	p.position = time.Duration(usec) * time.Microsecond //nolint:gosec // bounded to 63 bits above
	p.reported = p.position
	p.emit(ctx, response.Time, formatUsec(p.position))
	return nil
}

// Quit asks the host to end the session once the command is acknowledged.
func (p *Player) Quit(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.done = true
	return nil
}

// Advance moves the position on by elapsed if playing, pushing a time
// response each time a whole second is crossed.
func (p *Player) Advance(ctx context.Context, elapsed time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != Playing || elapsed <= 0 {
		return
	}
	p.position += elapsed
	if p.position/time.Second > p.reported/time.Second {
		p.reported = p.position
		p.emit(ctx, response.Time, formatUsec(p.position))
	}
}

// requireFile must be called with mu held.
func (p *Player) requireFile(word string) error {
	if p.state == Ejected {
		return fault.With(fault.NoFile, "no file loaded", "word", word)
	}
	return nil
}

// setState must be called with mu held.
func (p *Player) setState(ctx context.Context, s State) {
	p.state = s
	p.emit(ctx, response.Stat, s.String())
}

func (p *Player) emit(ctx context.Context, tag response.Tag, message string) {
	if p.emitter == nil {
		return
	}
	if err := p.emitter.Emit(tag, message); err != nil {
		p.logger.WarnContext(ctx, "failed to push player response",
			"tag", tag.String(),
			"error", err,
		)
	}
}

func formatUsec(d time.Duration) string {
	return strconv.FormatInt(d.Microseconds(), 10)
}
