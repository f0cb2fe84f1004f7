// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/ik5/blockbridge/audio"
	"github.com/ik5/blockbridge/utils"
)

// Writer encodes float32 samples in [-1,1] as a PCM WAV file of 8, 16, 24
// or 32 bits with any number of channels. Samples outside [-1,1] are
// clipped.
type Writer struct {
	enc      *wav.Encoder
	buf      *goaudio.IntBuffer
	inter    []float32
	channels int
	bitDepth int
	frames   int64
	closed   bool
}

// NewWriter starts a WAV file on w. The header sizes are filled in by Close,
// which is why w must be seekable.
func NewWriter(w io.WriteSeeker, sampleRate, bitDepth, channels int) (*Writer, error) {
	switch bitDepth {
	case 8, 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, bitDepth)
	}
	if channels <= 0 || sampleRate <= 0 {
		return nil, fmt.Errorf("%w: %d channels at %d Hz", ErrUnsupportedWavLayout, channels, sampleRate)
	}

	return &Writer{
		enc: wav.NewEncoder(w, sampleRate, bitDepth, channels, formatPCM),
		buf: &goaudio.IntBuffer{
			Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
			SourceBitDepth: bitDepth,
		},
		channels: channels,
		bitDepth: bitDepth,
	}, nil
}

func (w *Writer) Channels() int { return w.channels }
func (w *Writer) BitDepth() int { return w.bitDepth }
func (w *Writer) Frames() int64 { return w.frames }

// WriteSamples appends interleaved samples; len(samples) must be a multiple
// of the channel count.
func (w *Writer) WriteSamples(samples []float32) error {
	if w.closed {
		return ErrWriterClosed
	}
	if len(samples)%w.channels != 0 {
		return fmt.Errorf("%w: %d samples for %d channels", ErrChannelMismatch, len(samples), w.channels)
	}
	if len(samples) == 0 {
		return nil
	}

	if cap(w.buf.Data) < len(samples) {
		w.buf.Data = make([]int, len(samples))
	}
	w.buf.Data = w.buf.Data[:len(samples)]

	for i, s := range samples {
		v := utils.FloatToPCM(s, w.bitDepth)
		if w.bitDepth == 8 {
			v += 128
		}
		w.buf.Data[i] = v
	}

	if err := w.enc.Write(w.buf); err != nil {
		return fmt.Errorf("%w", err)
	}
	w.frames += int64(len(samples) / w.channels)
	return nil
}

// WriteFrames appends the first frames samples of each planar channel.
func (w *Writer) WriteFrames(planar [][]float32, frames int) error {
	if len(planar) != w.channels {
		return fmt.Errorf("%w: %d buffers for %d channels", ErrChannelMismatch, len(planar), w.channels)
	}

	n := frames * w.channels
	if cap(w.inter) < n {
		w.inter = make([]float32, n)
	}
	audio.Interleave(w.inter[:n], planar, frames)
	return w.WriteSamples(w.inter[:n])
}

// Close writes the final header. It does not close the underlying writer.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	if w.frames == 0 {
		// The encoder writes its header with the first buffer.
		w.buf.Data = w.buf.Data[:0]
		if err := w.enc.Write(w.buf); err != nil {
			return fmt.Errorf("%w", err)
		}
	}
	if err := w.enc.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}
