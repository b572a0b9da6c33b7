// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cuppa Contributors

//go:build !unix

package poll

// pending always reports input: reads simply block on platforms without poll(2).
func pending(uintptr) bool {
	return true
}
