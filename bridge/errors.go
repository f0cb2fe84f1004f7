// SPDX-License-Identifier: EPL-2.0

package bridge

import "errors"

var (
	// ErrQueueFull indicates the control queue has no free slot.
	ErrQueueFull = errors.New("control queue is full")

	// ErrInvalidChannels indicates an unusable channel configuration.
	ErrInvalidChannels = errors.New("invalid channel configuration")

	// ErrNotCompiled indicates Start was called before any program compiled.
	ErrNotCompiled = errors.New("no compiled program")
)
