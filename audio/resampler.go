// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/ik5/blockbridge/utils"
)

// Resampler streams src at another sample rate using cubic interpolation.
// Works on interleaved samples and keeps the channel count. When
// downsampling, input frames pass through a one-pole low-pass filter below
// the new Nyquist frequency first. Equal rates pass samples through.
type Resampler struct {
	src      Source
	srcRate  int64
	rate     int
	channels int

	// hist holds source frames idx-1, idx, idx+1 and idx+2. Output frame k
	// sits at source position k*srcRate/rate, computed exactly in integers,
	// and is interpolated between hist[1] and hist[2].
	hist   [4][]float32
	idx    int
	out    int64
	primed bool

	// total is the number of source frames, known once src hit EOF.
	total int
	eof   bool

	buf      []float32
	bufStart int
	bufEnd   int

	alpha   float32
	lpState []float32
}

func NewResampler(src Source, dstRate int) *Resampler {
	channels := src.Channels()

	r := &Resampler{
		src:      src,
		srcRate:  int64(src.SampleRate()),
		rate:     dstRate,
		channels: channels,
		total:    -1,
		buf:      make([]float32, max(src.BufSize(), 1024)/max(channels, 1)*max(channels, 1)),
	}
	for i := range r.hist {
		r.hist[i] = make([]float32, channels)
	}

	if src.SampleRate() > dstRate {
		cutoff := 0.45 * float64(dstRate)
		r.alpha = float32(1 - math.Exp(-2*math.Pi*cutoff/float64(src.SampleRate())))
		r.lpState = make([]float32, channels)
	}
	return r
}

func (r *Resampler) SampleRate() int { return r.rate }
func (r *Resampler) Channels() int   { return r.channels }
func (r *Resampler) BufSize() int    { return r.src.BufSize() }

func (r *Resampler) Close() error {
	if err := r.src.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

// nextFrame copies the next source frame into dst. It returns false at the
// end of the source.
func (r *Resampler) nextFrame(dst []float32) (bool, error) {
	for r.bufStart+r.channels > r.bufEnd {
		if r.eof {
			return false, nil
		}

		n, err := r.src.ReadSamples(r.buf)
		r.bufStart, r.bufEnd = 0, n-n%r.channels
		if errors.Is(err, io.EOF) {
			r.eof = true
		} else if err != nil {
			return false, fmt.Errorf("%w", err)
		}
	}

	copy(dst, r.buf[r.bufStart:r.bufStart+r.channels])
	r.bufStart += r.channels

	if r.lpState != nil {
		for c := range dst {
			r.lpState[c] += r.alpha * (dst[c] - r.lpState[c])
			dst[c] = r.lpState[c]
		}
	}
	return true, nil
}

// fill loads hist[i] from the source, or repeats hist[i-1] past the end.
func (r *Resampler) fill(i int, read int) error {
	ok, err := r.nextFrame(r.hist[i])
	if err != nil {
		return err
	}
	if !ok {
		if r.total < 0 {
			r.total = read
		}
		copy(r.hist[i], r.hist[i-1])
	}
	return nil
}

func (r *Resampler) prime() (bool, error) {
	ok, err := r.nextFrame(r.hist[1])
	if err != nil || !ok {
		return false, err
	}
	if r.lpState != nil {
		// Start the filter settled on the first frame.
		copy(r.lpState, r.hist[1])
	}
	copy(r.hist[0], r.hist[1])

	if err := r.fill(2, 1); err != nil {
		return false, err
	}
	if err := r.fill(3, 2); err != nil {
		return false, err
	}
	r.primed = true
	return true, nil
}

func (r *Resampler) advance() error {
	first := r.hist[0]
	copy(r.hist[:], r.hist[1:])
	r.hist[3] = first
	r.idx++
	return r.fill(3, r.idx+2)
}

// ReadSamples produces dst samples at the target rate.
// dst length should be a multiple of the channel count.
func (r *Resampler) ReadSamples(dst []float32) (int, error) {
	if len(dst)%r.channels != 0 {
		return 0, ErrInvalidDstSize
	}
	if r.srcRate == int64(r.rate) {
		return r.src.ReadSamples(dst)
	}

	if !r.primed {
		ok, err := r.prime()
		if err != nil {
			return 0, err
		}
		if !ok {
			return 0, io.EOF
		}
	}

	rate := int64(r.rate)
	written := 0
	for written < len(dst) {
		num := r.out * r.srcRate
		for int64(r.idx) < num/rate {
			if err := r.advance(); err != nil {
				return written, err
			}
		}
		if r.total >= 0 && r.idx >= r.total {
			return written, io.EOF
		}

		x := float32(float64(num%rate) / float64(rate))
		for c := range r.channels {
			dst[written+c] = utils.CubicInterpolate(r.hist[0][c], r.hist[1][c], r.hist[2][c], r.hist[3][c], x)
		}
		written += r.channels
		r.out++
	}
	return written, nil
}
