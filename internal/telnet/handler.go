// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cuppa Contributors

package telnet

import (
	"context"
	"log/slog"
	"net"

	"github.com/oklog/ulid/v2"

	"github.com/MattWindsor91/cuppa/pkg/errutil"
)

// Conn is one client connection. The session reads commands from it and
// writes primary responses back to it.
type Conn struct {
	net.Conn
	ID ulid.ULID
}

// SessionFunc serves one connection until its input ends. A non-nil error
// ends the session and is logged; the server carries on accepting.
type SessionFunc func(ctx context.Context, conn *Conn) error

// ConnectionHandler handles a single connection.
type ConnectionHandler struct {
	conn    *Conn
	session SessionFunc
	logger  *slog.Logger
}

// NewConnectionHandler creates a new handler with a fresh connection id.
func NewConnectionHandler(conn net.Conn, session SessionFunc, logger *slog.Logger) *ConnectionHandler {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Conn{Conn: conn, ID: ulid.Make()}
	return &ConnectionHandler{
		conn:    c,
		session: session,
		logger: logger.With(
			"conn_id", c.ID.String(),
			"remote", conn.RemoteAddr().String(),
		),
	}
}

// ID returns the connection id.
func (h *ConnectionHandler) ID() ulid.ULID {
	return h.conn.ID
}

// Handle runs the session and closes the connection. Cancelling ctx closes
// the connection, which unblocks any pending read.
func (h *ConnectionHandler) Handle(ctx context.Context) {
	stop := context.AfterFunc(ctx, func() {
		_ = h.conn.Close()
	})
	defer func() {
		stop()
		if err := h.conn.Close(); err != nil {
			h.logger.Debug("error closing connection", "error", err)
		}
	}()

	h.logger.InfoContext(ctx, "session started")

	if h.session == nil {
		return
	}
	if err := h.session(ctx, h.conn); err != nil && ctx.Err() == nil {
		errutil.LogError(h.logger, "session ended with error", err)
		return
	}
	h.logger.InfoContext(ctx, "session ended")
}
