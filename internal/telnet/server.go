// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cuppa Contributors

// Package telnet exposes the command engine over plain TCP line streams.
// Connections are served one at a time, in accept order: the engine owns a
// single input stream, and later clients wait in the listen backlog.
package telnet

import (
	"context"
	"log/slog"
	"net"
	"sync"

	"github.com/samber/oops"

	"github.com/MattWindsor91/cuppa/internal/observability"
)

// transport is the metrics label for connections served here.
const transport = "telnet"

// Server is a sequential line-protocol server.
type Server struct {
	addr     string
	listener net.Listener
	session  SessionFunc
	logger   *slog.Logger
	metrics  *observability.Metrics
	mu       sync.RWMutex
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger. If not provided, slog.Default() is used.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics records connection counts in m.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// NewServer creates a server that runs session for each connection.
func NewServer(addr string, session SessionFunc, opts ...Option) *Server {
	s := &Server{
		addr:    addr,
		session: session,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Addr returns the server's listen address.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Run starts the server and blocks until context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return oops.With("addr", s.addr).Wrapf(err, "failed to listen")
	}

	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "telnet server started", "addr", listener.Addr().String())

	stop := context.AfterFunc(ctx, func() {
		if closeErr := listener.Close(); closeErr != nil {
			s.logger.Debug("error closing listener", "error", closeErr)
		}
	})
	defer stop()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				s.logger.InfoContext(ctx, "telnet server stopped")
				return nil
			}
			s.logger.ErrorContext(ctx, "accept failed", "error", err)
			continue
		}

		s.track(func() {
			NewConnectionHandler(conn, s.session, s.logger).Handle(ctx)
		})
	}
}

func (s *Server) track(serve func()) {
	if s.metrics == nil {
		serve()
		return
	}
	s.metrics.ConnectionsTotal.WithLabelValues(transport).Inc()
	s.metrics.SessionsActive.Inc()
	defer s.metrics.SessionsActive.Dec()
	serve()
}
