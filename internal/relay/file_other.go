// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cuppa Contributors

//go:build !unix

package relay

import (
	"errors"
	"io"
	"net"
	"os"
)

func openFile(path string) (io.WriteCloser, error) {
	return os.OpenFile(path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644) //nolint:gosec,wrapcheck // operator-supplied path; wrapped by Open
}

func retryable(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr)
}
