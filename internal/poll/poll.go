// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cuppa Contributors

// Package poll answers "is input waiting?" for a file descriptor without
// blocking, so a host can interleave command handling with other work.
package poll

import (
	"os"

	"github.com/MattWindsor91/cuppa/pkg/command"
)

// Ready returns a readiness predicate for f. End of stream and descriptor
// errors count as ready so the next read can surface them.
func Ready(f *os.File) command.Readiness {
	if f == nil {
		return command.AlwaysReady
	}
	fd := f.Fd()
	return func() bool {
		return pending(fd)
	}
}
