// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"

	"github.com/tphakala/simd/f32"
)

// ChannelMapper changes the channel count of a source.
//
// Mapping to one channel averages all source channels. Otherwise output
// channel c copies source channel c, and output channels past the source's
// repeat them in order (mono feeds every channel, stereo alternates L/R).
// Source channels past the output count are dropped.
type ChannelMapper struct {
	src      Source
	channels int
	tmp      []float32
}

func NewChannelMapper(src Source, channels int) (*ChannelMapper, error) {
	if channels <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidChannels, channels)
	}

	return &ChannelMapper{
		src:      src,
		channels: channels,
		tmp:      make([]float32, 4096),
	}, nil
}

func (m *ChannelMapper) SampleRate() int { return m.src.SampleRate() }
func (m *ChannelMapper) Channels() int   { return m.channels }
func (m *ChannelMapper) BufSize() int    { return m.src.BufSize() }

func (m *ChannelMapper) Close() error {
	if err := m.src.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

func (m *ChannelMapper) ReadSamples(dst []float32) (int, error) {
	if len(dst)%m.channels != 0 {
		return 0, ErrInvalidDstSize
	}
	if len(dst) == 0 {
		return 0, nil
	}

	srcChannels := m.src.Channels()
	if srcChannels == m.channels {
		return m.src.ReadSamples(dst)
	}

	frames := len(dst) / m.channels
	needed := frames * srcChannels
	if cap(m.tmp) < needed {
		m.tmp = make([]float32, needed)
	}
	tmp := m.tmp[:needed]

	n, err := m.src.ReadSamples(tmp)
	frames = n / srcChannels
	if frames == 0 {
		return 0, err
	}

	if m.channels == 1 {
		inv := 1 / float32(srcChannels)
		for f := range frames {
			dst[f] = f32.Sum(tmp[f*srcChannels:(f+1)*srcChannels]) * inv
		}
		return frames, err
	}

	for f := range frames {
		in := tmp[f*srcChannels : (f+1)*srcChannels]
		out := dst[f*m.channels : (f+1)*m.channels]
		for c := range out {
			out[c] = in[c%srcChannels]
		}
	}
	return frames * m.channels, err
}
