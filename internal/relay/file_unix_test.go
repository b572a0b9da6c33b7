// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cuppa Contributors

//go:build unix

package relay

import (
	"bufio"
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/MattWindsor91/cuppa/pkg/errutil"
	"github.com/MattWindsor91/cuppa/pkg/fault"
)

func TestOpen_FIFOWithReader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "player.fifo")
	require.NoError(t, unix.Mkfifo(path, 0o600))

	// O_RDWR keeps the reader open without waiting for a writer.
	r, err := os.OpenFile(path, os.O_RDWR, 0)
	require.NoError(t, err)
	defer func() { _ = r.Close() }()

	w, err := Open(context.Background(), path, WithBackoff(time.Millisecond))
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	_, err = w.Write([]byte("ejct\n"))
	require.NoError(t, err)

	line, err := bufio.NewReader(r).ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "ejct\n", line)
}

func TestOpen_FIFOWithoutReader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "player.fifo")
	require.NoError(t, unix.Mkfifo(path, 0o600))

	_, err := Open(context.Background(), path, WithAttempts(2), WithBackoff(time.Millisecond))
	errutil.AssertKind(t, err, fault.BackendInit)
}

func TestOpen_UnixSocket(t *testing.T) {
	path := filepath.Join(t.TempDir(), "player.sock")
	ln, err := net.Listen("unix", path)
	require.NoError(t, err)
	defer func() { _ = ln.Close() }()

	go func() {
		conn, acceptErr := ln.Accept()
		if acceptErr == nil {
			_ = conn.Close()
		}
	}()

	w, err := Open(context.Background(), "unix://"+path)
	require.NoError(t, err)
	assert.NoError(t, w.Close())
}

func TestRetryable(t *testing.T) {
	assert.True(t, retryable(&os.PathError{Op: "open", Err: unix.ENXIO}))
	assert.True(t, retryable(&net.OpError{Op: "dial", Err: os.NewSyscallError("connect", unix.ECONNREFUSED)}))
	assert.False(t, retryable(&os.PathError{Op: "open", Err: unix.EACCES}))
}
