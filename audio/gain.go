// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"math"

	"github.com/tphakala/simd/f32"
)

// Gain multiplies every sample of a source by a constant factor.
type Gain struct {
	src  Source
	gain float32
}

func NewGain(src Source, gain float32) *Gain {
	return &Gain{src: src, gain: gain}
}

func (g *Gain) SampleRate() int { return g.src.SampleRate() }
func (g *Gain) Channels() int   { return g.src.Channels() }
func (g *Gain) BufSize() int    { return g.src.BufSize() }
func (g *Gain) Factor() float32 { return g.gain }

func (g *Gain) Close() error {
	if err := g.src.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

func (g *Gain) ReadSamples(dst []float32) (int, error) {
	n, err := g.src.ReadSamples(dst)
	if n > 0 && g.gain != 1 {
		f32.Scale(dst[:n], dst[:n], g.gain)
	}
	return n, err
}

// DecibelsToGain converts a level in dB to a linear factor.
func DecibelsToGain(db float64) float32 {
	return float32(math.Pow(10, db/20))
}
