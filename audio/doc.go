// SPDX-License-Identifier: EPL-2.0

// Package audio provides the streaming primitives that feed files into a
// node's input and collect its output.
//
// # Source Interface
//
// Every decoder and processor is a Source of interleaved float32 samples in
// [-1, 1]:
//
//	type Source interface {
//	    SampleRate() int
//	    Channels() int
//	    ReadSamples(dst []float32) (int, error)
//	    BufSize() int
//	    Close() error
//	}
//
// Processors wrap a Source and are chained into pipelines:
//
//	src, err := registry.Decode("loop.mp3", f)
//	if err != nil {
//	    return err
//	}
//	res := audio.NewResampler(src, 48000)       // cubic interpolation
//	mapped, err := audio.NewChannelMapper(res, 2) // match the node's inputs
//	if err != nil {
//	    return err
//	}
//	in := audio.NewFrameReader(audio.NewGain(mapped, audio.DecibelsToGain(-6)))
//
// # Planar Buffers
//
// Devices exchange one slice per channel. FrameReader reads a Source into
// such buffers, and Interleave/Deinterleave convert between the two layouts.
//
// # Format Registry
//
// The registry maps file extensions to decoders:
//
//	registry := audio.NewRegistry()
//	registry.Register(wav.Decoder{}, "wav", "wave")
//	src, err := registry.Decode("input.wav", f)
//
// # Error Handling
//
// Sources return io.EOF when no more data is available, possibly together
// with the last samples:
//
//	for {
//	    n, err := source.ReadSamples(buf)
//	    // Process n samples from buf
//	    if err == io.EOF {
//	        break
//	    }
//	    if err != nil {
//	        return err
//	    }
//	}
package audio
