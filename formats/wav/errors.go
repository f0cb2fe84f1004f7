// SPDX-License-Identifier: EPL-2.0

package wav

import "errors"

var (
	ErrNotWavFile           = errors.New("not a WAV file")
	ErrUnsupportedWavLayout = errors.New("unsupported WAV layout")
	ErrUnsupportedBitDepth  = errors.New("unsupported WAV bit depth")
	ErrChannelMismatch      = errors.New("sample buffer does not match writer channels")
	ErrWriterClosed         = errors.New("WAV writer is closed")
)
