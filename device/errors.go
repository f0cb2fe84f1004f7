// SPDX-License-Identifier: EPL-2.0

package device

import "errors"

var (
	// ErrInvalidBufferSize indicates a buffer size schedule entry below one frame.
	ErrInvalidBufferSize = errors.New("invalid buffer size")

	// ErrInvalidChannels indicates a channel layout with no channels.
	ErrInvalidChannels = errors.New("invalid channel count")

	// ErrChannelMismatch indicates an input source or sink with a channel
	// count different from the device's.
	ErrChannelMismatch = errors.New("channel count mismatch")
)
