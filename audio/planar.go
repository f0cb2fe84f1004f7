// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
	"io"

	"github.com/tphakala/simd/f32"
)

// Interleave writes the first frames samples of each planar channel into dst
// frame by frame. dst must hold frames*len(planar) samples.
func Interleave(dst []float32, planar [][]float32, frames int) {
	switch len(planar) {
	case 0:
		return
	case 1:
		copy(dst[:frames], planar[0][:frames])
	case 2:
		f32.Interleave2(dst[:2*frames], planar[0][:frames], planar[1][:frames])
	default:
		channels := len(planar)
		for c, ch := range planar {
			for f, v := range ch[:frames] {
				dst[f*channels+c] = v
			}
		}
	}
}

// Deinterleave splits the interleaved src into the first frames samples of
// each planar channel.
func Deinterleave(planar [][]float32, src []float32, frames int) {
	channels := len(planar)
	for c, ch := range planar {
		for f := range ch[:frames] {
			ch[f] = src[f*channels+c]
		}
	}
}

// FrameReader reads a Source into planar buffers.
type FrameReader struct {
	src   Source
	buf   []float32
	views [][]float32
	eof   bool
}

func NewFrameReader(src Source) *FrameReader {
	return &FrameReader{src: src}
}

func (r *FrameReader) Source() Source { return r.src }

// ReadFrames fills every channel of dst with the next len(dst[0]) frames.
// dst must have one slice per source channel. Frames past the end of the
// source are silent. It returns the number of frames read from the source,
// and io.EOF once the source is exhausted.
func (r *FrameReader) ReadFrames(dst [][]float32) (int, error) {
	channels := r.src.Channels()
	if len(dst) != channels {
		return 0, fmt.Errorf("%w: %d buffers for %d channels", ErrChannelMismatch, len(dst), channels)
	}

	frames := len(dst[0])
	if len(r.views) != channels {
		r.views = make([][]float32, channels)
	}
	if cap(r.buf) < frames*channels {
		r.buf = make([]float32, frames*channels)
	}

	read := 0
	for read < frames && !r.eof {
		chunk := r.buf[:(frames-read)*channels]
		n, err := r.src.ReadSamples(chunk)
		got := n / channels

		for c, ch := range dst {
			r.views[c] = ch[read:]
		}
		Deinterleave(r.views, chunk, got)
		read += got

		if errors.Is(err, io.EOF) {
			r.eof = true
		} else if err != nil {
			return read, fmt.Errorf("%w", err)
		} else if n == 0 {
			break
		}
	}

	for _, ch := range dst {
		clear(ch[read:frames])
	}

	if r.eof {
		return read, io.EOF
	}
	return read, nil
}
