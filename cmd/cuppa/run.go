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

	"github.com/MattWindsor91/cuppa/internal/poll"
	"github.com/MattWindsor91/cuppa/pkg/command"
)

// NewRunCmd creates the run subcommand.
func NewRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Take commands on standard input",
		Long: `Read commands from standard input, answer on standard output and mirror
failures and traces to standard error. Exits when input ends, on quit, or
on a fatal error.`,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runStdio(ctx, cmd)
		},
	}
}

func runStdio(ctx context.Context, cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		cmd.PrintErrln("cuppa:", err)
		return err
	}

	s := streams{
		in:         cmd.InOrStdin(),
		ready:      command.AlwaysReady,
		primary:    cmd.OutOrStdout(),
		diagnostic: cmd.ErrOrStderr(),
	}
	if f, ok := s.in.(*os.File); ok {
		s.ready = poll.Ready(f)
	}

	logger := setupLogging(cfg, cmd.ErrOrStderr())
	logger.InfoContext(ctx, "starting command host", "mode", "run", "propagate", cfg.Propagate.Target)

	var running atomic.Bool
	_, stopMetrics := startMetrics(cfg, logger, running.Load)
	defer stopMetrics()

	propagation, err := openPropagation(ctx, cfg, logger, s)
	if err != nil {
		return err
	}
	if propagation != nil {
		defer func() { _ = propagation.Close() }()
	}

	h := &host{cfg: cfg, logger: logger}
	if propagation != nil {
		h.propagation = propagation
	}

	running.Store(true)
	defer running.Store(false)

	if err := h.serve(ctx, s); err != nil {
		logger.ErrorContext(ctx, "command host stopped on fatal error", "error", err)
		return err
	}
	logger.InfoContext(ctx, "command host finished")
	return nil
}
