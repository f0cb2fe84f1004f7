// SPDX-License-Identifier: EPL-2.0

// Package audiotest provides generated sources for tests.
package audiotest

import (
	"errors"
	"io"
	"math"
)

// ErrBroken is returned by sources built with Broken.
var ErrBroken = errors.New("broken source")

// MockSource generates audio from a waveform function. It implements
// audio.Source (without importing it to avoid cycles).
type MockSource struct {
	sampleRate int
	channels   int
	frames     int
	generated  int
	waveform   func(frame int, channel int) float32

	// MaxRead caps the samples returned per ReadSamples call to simulate
	// short reads. Zero means no cap.
	MaxRead int
	// Err, when set, is returned by every ReadSamples call.
	Err error

	Closed bool
}

// NewMockSource creates a source of the given length in frames.
func NewMockSource(sampleRate, channels, frames int, waveform func(frame int, channel int) float32) *MockSource {
	return &MockSource{
		sampleRate: sampleRate,
		channels:   channels,
		frames:     frames,
		waveform:   waveform,
	}
}

func NewSilentSource(sampleRate, channels, frames int) *MockSource {
	return NewConstantSource(sampleRate, channels, frames, 0)
}

func NewSineSource(sampleRate, channels, frames int, frequency float64) *MockSource {
	return NewMockSource(sampleRate, channels, frames, func(frame int, _ int) float32 {
		t := float64(frame) / float64(sampleRate)
		return float32(math.Sin(2 * math.Pi * frequency * t))
	})
}

func NewConstantSource(sampleRate, channels, frames int, value float32) *MockSource {
	return NewMockSource(sampleRate, channels, frames, func(int, int) float32 { return value })
}

// NewRampSource encodes position in every sample: frame/1000 + channel/10.
func NewRampSource(sampleRate, channels, frames int) *MockSource {
	return NewMockSource(sampleRate, channels, frames, Ramp)
}

// Ramp is the waveform of NewRampSource.
func Ramp(frame, channel int) float32 {
	return float32(frame)/1000 + float32(channel)/10
}

// Broken returns a source whose reads always fail with ErrBroken.
func Broken(sampleRate, channels int) *MockSource {
	s := NewSilentSource(sampleRate, channels, 1)
	s.Err = ErrBroken
	return s
}

func (m *MockSource) SampleRate() int { return m.sampleRate }
func (m *MockSource) Channels() int   { return m.channels }
func (m *MockSource) BufSize() int    { return 4096 }

func (m *MockSource) Close() error {
	m.Closed = true
	return nil
}

// Reset rewinds the source.
func (m *MockSource) Reset() {
	m.generated = 0
}

func (m *MockSource) ReadSamples(dst []float32) (int, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	if m.generated >= m.frames {
		return 0, io.EOF
	}

	n := min(len(dst)/m.channels, m.frames-m.generated)
	if m.MaxRead > 0 {
		n = min(n, m.MaxRead/m.channels)
	}

	for f := range n {
		for c := range m.channels {
			dst[f*m.channels+c] = m.waveform(m.generated+f, c)
		}
	}
	m.generated += n

	if m.generated >= m.frames {
		return n * m.channels, io.EOF
	}
	return n * m.channels, nil
}

// SampleReader is the read half of audio.Source.
type SampleReader interface {
	ReadSamples(dst []float32) (int, error)
}

// ReadAll drains r with reads of chunk samples.
func ReadAll(r SampleReader, chunk int) ([]float32, error) {
	var out []float32
	buf := make([]float32, chunk)
	for {
		n, err := r.ReadSamples(buf)
		out = append(out, buf[:n]...)
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, err
		}
	}
}
