// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cuppa Contributors

//go:build unix

package poll

import (
	"errors"

	"golang.org/x/sys/unix"
)

const readyEvents = unix.POLLIN | unix.POLLHUP | unix.POLLERR | unix.POLLNVAL

// pending polls fd with a zero timeout.
func pending(fd uintptr) bool {
	fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}} //nolint:gosec // descriptors fit in int32
	n, err := unix.Poll(fds, 0)
	if errors.Is(err, unix.EINTR) {
		return false
	}
	if err != nil {
		return true
	}
	return n > 0 && fds[0].Revents&readyEvents != 0
}
