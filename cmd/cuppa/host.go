// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cuppa Contributors

package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/MattWindsor91/cuppa/internal/config"
	"github.com/MattWindsor91/cuppa/internal/logging"
	"github.com/MattWindsor91/cuppa/internal/observability"
	"github.com/MattWindsor91/cuppa/internal/playout"
	"github.com/MattWindsor91/cuppa/internal/relay"
	"github.com/MattWindsor91/cuppa/pkg/command"
	"github.com/MattWindsor91/cuppa/pkg/fault"
	"github.com/MattWindsor91/cuppa/pkg/response"
)

const serviceName = "cuppa"

// streams are the three byte streams a session talks over.
type streams struct {
	in         io.Reader
	ready      command.Readiness
	primary    io.Writer
	diagnostic io.Writer
}

// host runs playout sessions with shared configuration.
type host struct {
	cfg         *config.Config
	logger      *slog.Logger
	propagation io.Writer
}

// setupLogging configures the default slog logger from cfg.
func setupLogging(cfg *config.Config, w io.Writer) *slog.Logger {
	return logging.SetDefault(logging.Options{
		Service: serviceName,
		Version: version,
		Format:  cfg.Log.Format,
		Level:   cfg.LogLevel(),
		Writer:  w,
	})
}

// openPropagation opens the configured propagation target, if any.
// A failure is reported on s as a fatal fault before being returned.
func openPropagation(ctx context.Context, cfg *config.Config, logger *slog.Logger, s streams) (io.WriteCloser, error) {
	if cfg.Propagate.Target == "" {
		return nil, nil
	}
	w, err := relay.Open(ctx, cfg.Propagate.Target,
		relay.WithAttempts(cfg.Propagate.Attempts),
		relay.WithLogger(logger),
	)
	if err != nil {
		reporter := fault.NewReporter(response.NewEmitter(s.primary, s.diagnostic), fault.WithLogger(logger))
		reporter.ReportError(ctx, err)
		return nil, err //nolint:wrapcheck // already a BACKEND_INIT fault
	}
	return w, nil
}

// startMetrics starts the observability server if an address is configured.
// The returned stop function is always safe to call.
func startMetrics(cfg *config.Config, logger *slog.Logger, ready observability.ReadinessChecker) (*observability.Server, func()) {
	if cfg.Metrics.Addr == "" {
		return nil, func() {}
	}
	srv := observability.NewServer(cfg.Metrics.Addr, ready)
	if _, err := srv.Start(); err != nil {
		logger.Warn("metrics disabled: observability server failed to start", "error", err)
		return nil, func() {}
	}
	return srv, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Stop(shutdownCtx); err != nil {
			logger.Warn("error stopping observability server", "error", err)
		}
	}
}

// serve runs one session: greet, dispatch until the input ends, quit is
// requested, ctx is cancelled or a fatal error occurs, then say goodbye.
// Only fatal errors are returned.
func (h *host) serve(ctx context.Context, s streams) error {
	emitter := response.NewEmitter(s.primary, s.diagnostic)
	player := playout.NewPlayer(emitter, playout.WithLogger(h.logger))

	rejects := make([]playout.Reject, 0, len(h.cfg.Reject))
	for _, r := range h.cfg.Reject {
		rejects = append(rejects, playout.Reject{Word: r.Word, Reason: r.Reason})
	}
	table, err := player.Table(playout.TableOptions{
		Rejects:   rejects,
		Propagate: h.propagation != nil,
	})
	if err != nil {
		return fault.Wrap(fault.BadConfig, err)
	}
	table.WarnShadowed(h.logger)

	engine, err := command.NewEngine(s.in, emitter,
		command.WithReadiness(s.ready),
		command.WithPropagation(h.propagation),
		command.WithLogger(h.logger),
		command.WithDebugTrace(h.cfg.Trace),
	)
	if err != nil {
		return fault.Wrap(fault.Internal, err)
	}

	h.push(ctx, emitter, response.Ohai, serviceName+" "+version)
	defer h.push(ctx, emitter, response.Ttfn, "")

	ticker := time.NewTicker(h.cfg.PollInterval())
	defer ticker.Stop()
	last := time.Now()

	for !player.Done() {
		outcome, err := engine.Check(ctx, table)
		if err != nil && fault.IsFatal(err) {
			return err
		}
		if outcome == command.EndOfInput {
			return nil
		}

		now := time.Now()
		player.Advance(ctx, now.Sub(last))
		last = now

		if outcome != command.Idle {
			continue
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
	return nil
}

func (h *host) push(ctx context.Context, emitter *response.Emitter, tag response.Tag, message string) {
	if err := emitter.Emit(tag, message); err != nil {
		h.logger.WarnContext(ctx, "failed to push response", "tag", tag.String(), "error", err)
	}
}
