// SPDX-License-Identifier: EPL-2.0

package device

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Stats summarizes the output a device has rendered.
type Stats struct {
	Frames    int64
	Callbacks int
	// Peak and RMS are per output channel, in normalized sample units.
	Peak []float64
	RMS  []float64

	sumSquares []float64
	scratch    []float64
}

func newStats(channels int) *Stats {
	return &Stats{
		Peak:       make([]float64, channels),
		RMS:        make([]float64, channels),
		sumSquares: make([]float64, channels),
	}
}

func (s *Stats) add(out [][]float32, frames int) {
	if cap(s.scratch) < frames {
		s.scratch = make([]float64, frames)
	}
	x := s.scratch[:frames]

	for c, ch := range out {
		for i, v := range ch[:frames] {
			x[i] = float64(v)
		}
		if frames > 0 {
			s.Peak[c] = math.Max(s.Peak[c], math.Max(floats.Max(x), -floats.Min(x)))
		}
		s.sumSquares[c] += floats.Dot(x, x)
	}

	s.Frames += int64(frames)
	s.Callbacks++
}

func (s *Stats) finish() Stats {
	if s.Frames > 0 {
		for c, sum := range s.sumSquares {
			s.RMS[c] = math.Sqrt(sum / float64(s.Frames))
		}
	}

	return Stats{
		Frames:    s.Frames,
		Callbacks: s.Callbacks,
		Peak:      append([]float64(nil), s.Peak...),
		RMS:       append([]float64(nil), s.RMS...),
	}
}

// PeakDBFS returns the loudest channel peak in dB relative to full scale,
// or -Inf for silence.
func (s Stats) PeakDBFS() float64 {
	if len(s.Peak) == 0 {
		return math.Inf(-1)
	}
	peak := floats.Max(s.Peak)
	if peak == 0 {
		return math.Inf(-1)
	}
	return 20 * math.Log10(peak)
}
