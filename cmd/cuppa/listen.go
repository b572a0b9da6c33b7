// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cuppa Contributors

package main

import (
	"context"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/MattWindsor91/cuppa/internal/telnet"
	"github.com/MattWindsor91/cuppa/pkg/command"
	"github.com/MattWindsor91/cuppa/pkg/fault"
)

// NewListenCmd creates the listen subcommand.
func NewListenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "listen",
		Short: "Take commands over TCP, one client at a time",
		Long: `Accept TCP connections on --listen-addr and run a session for each,
one at a time. Primary responses go to the client; the diagnostic stream is
standard error.`,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runListen(ctx, cmd)
		},
	}
}

func runListen(ctx context.Context, cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		cmd.PrintErrln("cuppa:", err)
		return err
	}

	logger := setupLogging(cfg, cmd.ErrOrStderr())
	logger.InfoContext(ctx, "starting command host", "mode", "listen", "addr", cfg.Listen.Addr)

	var running atomic.Bool
	metricsSrv, stopMetrics := startMetrics(cfg, logger, running.Load)
	defer stopMetrics()

	propagation, err := openPropagation(ctx, cfg, logger, streams{diagnostic: cmd.ErrOrStderr()})
	if err != nil {
		return err
	}
	h := &host{cfg: cfg, logger: logger}
	if propagation != nil {
		defer func() { _ = propagation.Close() }()
		h.propagation = propagation
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	session := func(ctx context.Context, conn *telnet.Conn) error {
		err := h.serve(ctx, streams{
			in:         conn,
			ready:      command.AlwaysReady,
			primary:    conn,
			diagnostic: cmd.ErrOrStderr(),
		})
		// A fatal fault in one session is fatal for the host, except for the
		// client's own stream failing underneath it.
		if err != nil && fault.IsFatal(err) && !fault.Is(err, fault.ReadFailed) {
			cancel()
		}
		return err
	}

	opts := []telnet.Option{telnet.WithLogger(logger)}
	if metricsSrv != nil {
		opts = append(opts, telnet.WithMetrics(metricsSrv.Metrics()))
	}
	srv := telnet.NewServer(cfg.Listen.Addr, session, opts...)

	running.Store(true)
	defer running.Store(false)

	if err := srv.Run(ctx); err != nil {
		logger.ErrorContext(ctx, "listener failed", "error", err)
		return err //nolint:wrapcheck // already carries the listen address
	}
	return nil
}
