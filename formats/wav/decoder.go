// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/ik5/blockbridge/audio"
	"github.com/ik5/blockbridge/utils"
)

const (
	formatPCM   = 1
	formatFloat = 3
)

type wavSource struct {
	dec        *wav.Decoder
	sampleRate int
	channels   int
	bitDepth   int
	float      bool

	buf *goaudio.IntBuffer
	eof bool
}

func (s *wavSource) SampleRate() int { return s.sampleRate }
func (s *wavSource) Channels() int   { return s.channels }
func (s *wavSource) BufSize() int    { return 4096 }
func (s *wavSource) BitDepth() int   { return s.bitDepth }
func (s *wavSource) Close() error    { return nil }

func (s *wavSource) sample(v int) float32 {
	switch {
	case s.float:
		return math.Float32frombits(uint32(v))
	case s.bitDepth == 8:
		// 8-bit WAV is unsigned.
		return utils.PCMToFloat(v-128, 8)
	default:
		return utils.PCMToFloat(v, s.bitDepth)
	}
}

func (s *wavSource) ReadSamples(dst []float32) (int, error) {
	if s.eof {
		return 0, io.EOF
	}

	want := len(dst) - len(dst)%s.channels
	if cap(s.buf.Data) < want {
		s.buf.Data = make([]int, want)
	}
	s.buf.Data = s.buf.Data[:want]

	n, err := s.dec.PCMBuffer(s.buf)
	if err != nil && !errors.Is(err, io.EOF) {
		return 0, fmt.Errorf("%w", err)
	}

	for i, v := range s.buf.Data[:n] {
		dst[i] = s.sample(v)
	}

	if n < want || errors.Is(err, io.EOF) {
		s.eof = true
		return n, io.EOF
	}
	return n, nil
}

// Decoder reads PCM WAV files of 8, 16, 24 or 32 bits and 32-bit float WAV
// files.
type Decoder struct{}

// Decode reads the WAV header from r. The decoder needs to seek; readers
// that cannot are read into memory first.
func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("%w", err)
		}
		rs = bytes.NewReader(data)
	}

	dec := wav.NewDecoder(rs)
	dec.ReadInfo()
	if err := dec.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotWavFile, err)
	}
	// The same header checks as IsValidFile, which also rejects files with
	// no sample data.
	if dec.NumChans < 1 || dec.BitDepth < 8 || dec.SampleRate == 0 {
		return nil, fmt.Errorf("%w: no usable fmt chunk", ErrNotWavFile)
	}
	if err := dec.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedWavLayout, err)
	}

	bitDepth := int(dec.BitDepth)
	float := dec.WavAudioFormat == formatFloat
	switch {
	case float && bitDepth != 32:
		return nil, fmt.Errorf("%w: %d-bit float", ErrUnsupportedBitDepth, bitDepth)
	case bitDepth != 8 && bitDepth != 16 && bitDepth != 24 && bitDepth != 32:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, bitDepth)
	}

	format := dec.Format()
	return &wavSource{
		dec:        dec,
		sampleRate: format.SampleRate,
		channels:   format.NumChannels,
		bitDepth:   bitDepth,
		float:      float,
		buf: &goaudio.IntBuffer{
			Format:         format,
			SourceBitDepth: bitDepth,
		},
	}, nil
}
