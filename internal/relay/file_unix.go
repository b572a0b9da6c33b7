// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cuppa Contributors

//go:build unix

package relay

import (
	"errors"
	"io"
	"net"
	"os"

	"golang.org/x/sys/unix"
)

// openFile opens path for appending. FIFOs are opened non-blocking so that a
// missing reader fails with ENXIO, which is retried, instead of hanging.
func openFile(path string) (io.WriteCloser, error) {
	flags := os.O_WRONLY | os.O_APPEND
	info, err := os.Stat(path)
	switch {
	case err == nil && info.Mode()&os.ModeNamedPipe != 0:
		flags |= unix.O_NONBLOCK
	case errors.Is(err, os.ErrNotExist):
		flags |= os.O_CREATE
	case err != nil:
		return nil, err //nolint:wrapcheck // wrapped once by Open
	}
	return os.OpenFile(path, flags, 0o644) //nolint:gosec,wrapcheck // operator-supplied path; wrapped by Open
}

func retryable(err error) bool {
	if errors.Is(err, unix.ENXIO) || errors.Is(err, unix.ECONNREFUSED) || errors.Is(err, unix.ENOENT) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
