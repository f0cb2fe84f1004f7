// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"errors"
	"fmt"
	"io"

	"github.com/jfreymuth/oggvorbis"

	"github.com/ik5/blockbridge/audio"
)

// oggReader is an interface for oggvorbis.Reader to allow testing
type oggReader interface {
	SampleRate() int
	Channels() int
	Length() int64
	Read([]float32) (int, error)
}

type source struct {
	dec      oggReader
	closer   io.Closer
	channels int
	bufSize  int
	eof      bool
}

func (s *source) SampleRate() int { return s.dec.SampleRate() }
func (s *source) Channels() int   { return s.channels }
func (s *source) BufSize() int    { return s.bufSize }

// Frames returns the stream length in frames, or 0 when the reader cannot
// seek to find it.
func (s *source) Frames() int64 { return s.dec.Length() }

func (s *source) Close() error {
	if s.closer == nil {
		return nil
	}
	if err := s.closer.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

// ReadSamples decodes straight into dst. Only whole frames are requested so
// a channel never straddles two calls.
func (s *source) ReadSamples(dst []float32) (int, error) {
	if s.eof {
		return 0, io.EOF
	}

	want := len(dst) - len(dst)%s.channels
	if want == 0 {
		return 0, nil
	}

	// Read counts samples across all channels, not frames.
	n, err := s.dec.Read(dst[:want])
	if errors.Is(err, io.EOF) {
		s.eof = true
		return n, io.EOF
	}
	if err != nil {
		return n, fmt.Errorf("%w", err)
	}

	return n, nil
}

// Decoder decodes Ogg Vorbis streams.
type Decoder struct{}

// Decode reads the Vorbis headers from r. If r is an io.Closer, closing the
// returned source closes r.
func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotVorbisFile, err)
	}

	closer, _ := r.(io.Closer)
	return &source{
		dec:      dec,
		closer:   closer,
		channels: dec.Channels(),
		bufSize:  4096,
	}, nil
}
