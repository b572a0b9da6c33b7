// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cuppa Contributors

// Package relay opens the stream that propagated commands are forwarded to.
//
// A target is one of:
//
//	tcp://host:port    a TCP listener run by the cooperating process
//	unix:///path       a Unix domain socket
//	/path/or/file      a FIFO (opened once a reader is attached) or a plain file
//
// Network and FIFO targets are retried with exponential backoff, since the
// cooperating process is often started alongside this one.
package relay

import (
	"context"
	"io"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"

	"github.com/MattWindsor91/cuppa/pkg/fault"
)

// Defaults for Open.
const (
	DefaultAttempts = 5
	DefaultBackoff  = 100 * time.Millisecond
	maxBackoff      = 2 * time.Second
)

// Scheme prefixes accepted in targets.
const (
	schemeTCP  = "tcp://"
	schemeUnix = "unix://"
)

// Target is a parsed propagation target.
type Target struct {
	Network string // "tcp", "unix" or "file"
	Address string
}

// String returns the target in the form accepted by ParseTarget.
func (t Target) String() string {
	switch t.Network {
	case "tcp":
		return schemeTCP + t.Address
	case "unix":
		return schemeUnix + t.Address
	default:
		return t.Address
	}
}

// ParseTarget parses a target string.
func ParseTarget(s string) (Target, error) {
	s = strings.TrimSpace(s)
	var t Target
	switch {
	case strings.HasPrefix(s, schemeTCP):
		t = Target{Network: "tcp", Address: strings.TrimPrefix(s, schemeTCP)}
	case strings.HasPrefix(s, schemeUnix):
		t = Target{Network: "unix", Address: strings.TrimPrefix(s, schemeUnix)}
	case strings.Contains(s, "://"):
		return Target{}, fault.With(fault.BadConfig, "unsupported propagation target scheme", "target", s)
	default:
		t = Target{Network: "file", Address: s}
	}
	if t.Address == "" {
		return Target{}, fault.With(fault.BadConfig, "propagation target has no address", "target", s)
	}
	return t, nil
}

type options struct {
	attempts uint64
	backoff  time.Duration
	logger   *slog.Logger
}

// Option configures Open.
type Option func(*options)

// WithAttempts sets how many times Open tries before giving up. Values
// below one mean one.
func WithAttempts(n int) Option {
	return func(o *options) {
		if n < 1 {
			n = 1
		}
		o.attempts = uint64(n)
	}
}

// WithBackoff sets the initial delay between attempts.
func WithBackoff(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.backoff = d
		}
	}
}

// WithLogger sets the logger used to report retries.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Open connects to target. Failures after the last attempt are
// BACKEND_INIT faults, which are fatal: a host configured to propagate
// cannot run without its cooperating process.
func Open(ctx context.Context, target string, opts ...Option) (io.WriteCloser, error) {
	t, err := ParseTarget(target)
	if err != nil {
		return nil, err
	}

	o := options{
		attempts: DefaultAttempts,
		backoff:  DefaultBackoff,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	backoff := retry.NewExponential(o.backoff)
	backoff = retry.WithCappedDuration(maxBackoff, backoff)
	backoff = retry.WithMaxRetries(o.attempts-1, backoff)

	var w io.WriteCloser
	attempt := 0
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		conn, openErr := open(ctx, t)
		if openErr == nil {
			w = conn
			return nil
		}
		if !retryable(openErr) {
			return openErr
		}
		o.logger.DebugContext(ctx, "propagation target not ready",
			"target", t.String(),
			"attempt", attempt,
			"error", openErr,
		)
		return retry.RetryableError(openErr)
	})
	if err != nil {
		return nil, fault.Wrapf(fault.BackendInit,
			oops.With("target", t.String(), "attempts", attempt).Wrap(err),
			"cannot open propagation target "+t.String())
	}

	o.logger.InfoContext(ctx, "propagation target open", "target", t.String(), "attempts", attempt)
	return w, nil
}

func open(ctx context.Context, t Target) (io.WriteCloser, error) {
	if t.Network == "file" {
		return openFile(t.Address)
	}
	var d net.Dialer
	conn, err := d.DialContext(ctx, t.Network, t.Address)
	if err != nil {
		return nil, err //nolint:wrapcheck // wrapped once by Open
	}
	return conn, nil
}
