// SPDX-License-Identifier: EPL-2.0

package blockbridge

import "errors"

var (
	// ErrInvalidRenderOptions indicates a render with no length, no output
	// channels or an unusable sample rate.
	ErrInvalidRenderOptions = errors.New("invalid render options")

	// ErrNoInput indicates an input file was given for a node without input
	// channels.
	ErrNoInput = errors.New("node has no input channels")
)
