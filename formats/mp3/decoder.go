// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"

	"github.com/ik5/blockbridge/audio"
	"github.com/ik5/blockbridge/utils"
)

// go-mp3 always produces 16-bit little-endian stereo.
const (
	channels       = 2
	bytesPerSample = 2
)

// mp3Reader is an interface for gomp3.Decoder to allow testing
type mp3Reader interface {
	Read([]byte) (int, error)
	SampleRate() int
	Length() int64
}

type source struct {
	dec    mp3Reader
	closer io.Closer
	buf    []byte
	// pending holds a trailing odd byte from the previous read.
	pending []byte
	eof     bool
}

func (s *source) SampleRate() int { return s.dec.SampleRate() }
func (s *source) Channels() int   { return channels }
func (s *source) BufSize() int    { return cap(s.buf) / bytesPerSample }

// Frames returns the stream length in frames, or -1 when it is unknown.
func (s *source) Frames() int64 {
	n := s.dec.Length()
	if n < 0 {
		return -1
	}
	return n / (channels * bytesPerSample)
}

func (s *source) Close() error {
	if s.closer == nil {
		return nil
	}
	if err := s.closer.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

func (s *source) ReadSamples(dst []float32) (int, error) {
	if s.eof {
		return 0, io.EOF
	}

	need := len(dst) * bytesPerSample
	if cap(s.buf) < need {
		s.buf = make([]byte, need)
	}
	buf := s.buf[:need]

	have := copy(buf, s.pending)
	s.pending = s.pending[:0]

	n, err := s.dec.Read(buf[have:])
	n += have
	if err != nil && !errors.Is(err, io.EOF) {
		return 0, fmt.Errorf("%w", err)
	}

	samples := n / bytesPerSample
	if rest := n % bytesPerSample; rest != 0 {
		s.pending = append(s.pending, buf[n-rest:n]...)
	}

	for i := range samples {
		v := int16(binary.LittleEndian.Uint16(buf[i*bytesPerSample:]))
		dst[i] = utils.PCMToFloat(int(v), 16)
	}

	if errors.Is(err, io.EOF) {
		s.eof = true
		return samples, io.EOF
	}
	return samples, nil
}

// Decoder decodes MPEG-1/2 Layer III streams into 16-bit stereo.
type Decoder struct{}

// Decode reads the first frame header from r. If r is an io.Closer, closing
// the returned source closes r.
func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotMP3File, err)
	}

	closer, _ := r.(io.Closer)
	return &source{
		dec:    dec,
		closer: closer,
		buf:    make([]byte, 8192),
	}, nil
}
