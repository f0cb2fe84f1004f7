// SPDX-License-Identifier: EPL-2.0

// Package wav provides WAV audio file decoding and encoding.
//
// Both directions use github.com/go-audio/wav for the RIFF handling.
//
// # Supported Formats
//
//   - PCM 8-bit (unsigned), 16-bit, 24-bit and 32-bit
//   - IEEE float 32-bit (decoding only)
//   - Any channel count and sample rate
//
// # Decoding WAV Files
//
//	file, _ := os.Open("audio.wav")
//	source, err := wav.Decoder{}.Decode(file)
//	if err != nil {
//	    // Handle error
//	}
//
//	buf := make([]float32, 4096)
//	n, err := source.ReadSamples(buf)
//
// The decoder returns an audio.Source that provides samples as float32
// values in the range [-1.0, 1.0]. It needs to seek in the input; other
// readers are buffered in memory first.
//
// # Writing WAV Files
//
// Writer encodes planar or interleaved float32 samples. The header sizes are
// patched in by Close, so the output must be an io.WriteSeeker:
//
//	file, _ := os.Create("render.wav")
//	w, err := wav.NewWriter(file, 48000, 16, 2)
//	if err != nil {
//	    // Handle error
//	}
//	err = w.WriteFrames(planar, frames)
//	err = w.Close()
//
// # Error Handling
//
//   - ErrNotWavFile: the input is not a RIFF/WAVE file with a usable fmt chunk
//   - ErrUnsupportedBitDepth: a bit depth other than 8, 16, 24 or 32
//   - ErrUnsupportedWavLayout: no data chunk, or a Writer with no channels or sample rate
//   - ErrChannelMismatch: Writer got samples for the wrong channel count
package wav
