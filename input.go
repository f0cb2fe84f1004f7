// SPDX-License-Identifier: EPL-2.0

package blockbridge

import (
	"fmt"
	"os"

	"github.com/ik5/blockbridge/audio"
	"github.com/ik5/blockbridge/formats/aiff"
	"github.com/ik5/blockbridge/formats/mp3"
	"github.com/ik5/blockbridge/formats/vorbis"
	"github.com/ik5/blockbridge/formats/wav"
)

// Decoders returns a registry with every bundled input format.
func Decoders() *audio.Registry {
	reg := audio.NewRegistry()
	reg.Register(wav.Decoder{}, "wav", "wave")
	reg.Register(mp3.Decoder{}, "mp3")
	reg.Register(vorbis.Decoder{}, "ogg", "oga")
	reg.Register(aiff.Decoder{}, "aiff", "aif")
	return reg
}

// OpenInput decodes the audio file at path and adapts it to a device with
// the given rate and channel count, applying gainDB of gain. The format is
// picked by the file extension. Closing the returned source closes the file.
func OpenInput(reg *audio.Registry, path string, sampleRate, channels int, gainDB float64) (audio.Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	src, err := reg.Decode(path, f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w", err)
	}

	mapped, err := audio.NewChannelMapper(src, channels)
	if err != nil {
		src.Close()
		return nil, fmt.Errorf("%w", err)
	}

	var out audio.Source = audio.NewResampler(mapped, sampleRate)
	if gainDB != 0 {
		out = audio.NewGain(out, audio.DecibelsToGain(gainDB))
	}
	return out, nil
}
