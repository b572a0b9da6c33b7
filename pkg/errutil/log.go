// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cuppa Contributors

package errutil

import (
	"log/slog"

	"github.com/samber/oops"

	"github.com/MattWindsor91/cuppa/pkg/fault"
)

// LogError logs an error with structured context if it's an oops error.
// Fault errors additionally log their kind, blame and severity; errors that
// carry no kind are logged as UNKNOWN.
func LogError(logger *slog.Logger, msg string, err error) {
	d := fault.Lookup(fault.KindOf(err))
	attrs := []any{
		"kind", d.Name,
		"blame", d.Blame.String(),
		"severity", d.Severity.String(),
	}

	if oopsErr, ok := oops.AsOops(err); ok {
		attrs = append(attrs, "error", oopsErr.Error())
		if code := oopsErr.Code(); code != nil {
			attrs = append(attrs, "code", code)
		}
		if ctx := oopsErr.Context(); len(ctx) > 0 {
			attrs = append(attrs, "context", ctx)
		}
	} else {
		attrs = append(attrs, "error", err)
	}
	logger.Error(msg, attrs...)
}
