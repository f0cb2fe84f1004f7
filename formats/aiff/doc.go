// SPDX-License-Identifier: EPL-2.0

// Package aiff decodes uncompressed AIFF files into an audio.Source using
// github.com/go-audio/aiff.
//
// 8, 16, 24 and 32-bit signed PCM are supported. AIFF-C compressed
// variants are rejected with ErrNotAiffFile or ErrUnsupportedAiffLayout.
package aiff
