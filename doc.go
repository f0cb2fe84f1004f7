// SPDX-License-Identifier: EPL-2.0

// Package blockbridge runs a block-based synthesis engine behind an audio
// device callback.
//
// An engine renders fixed blocks of ksmps frames. A device asks for
// whatever window length it likes on every callback. The bridge package
// moves samples between the two with partial-block carry-over, 0dBFS
// scaling and silence once the engine stops producing blocks:
//
//	e, _ := engine.Open("loopback")
//	node, _ := bridge.NewNode(e, 1, 2, bridge.WithSampleRate(48000))
//	_ = node.CompileProgram(orc)
//	_ = node.Start()
//
//	// from the device callback
//	node.Process(in, out)
//
// # Packages
//
//   - engine: the engine contract, block source and engine registry
//   - engine/loopback: a pure Go engine that passes input through and plays
//     a MIDI sine voice
//   - engine/csound: libcsound binding, built with -tags csound
//   - bridge: AudioBridge, Node and the control queue
//   - device: an offline device that drives a node without hardware
//   - audio and formats/*: decoding, resampling and channel mapping of input
//     files, and WAV output
//
// # Offline Rendering
//
// Render and RenderNode drive a node from device.Offline and write its
// output as WAV:
//
//	f, _ := os.Create("out.wav")
//	defer f.Close()
//	stats, err := blockbridge.Render(ctx, e, orc, f, 0, 2, blockbridge.RenderOptions{
//		SampleRate: 48000,
//		Frames:     48000 * 5,
//	})
//
// OpenInput prepares an audio file as node input at the device rate and
// channel count.
package blockbridge
