// SPDX-License-Identifier: EPL-2.0

/*
Package bridge connects a block-based synthesis engine to a pull-based audio
device.

The engine renders audio in fixed blocks of ksmps frames with channel
interleaved float64 samples. The device asks for windows of arbitrary length
with one float32 slice per channel. AudioBridge moves samples between the
two, fetching a new engine block whenever the current one is used up, so the
two sides may use unrelated buffer sizes.

Node puts the engine's control surface (compile, score, channels, MIDI) and
its lifecycle (Start, Stop, Reset, Destroy) on top of an AudioBridge and is
what a device callback normally drives:

	n, err := bridge.NewNode(eng, 2, 2, bridge.WithSampleRate(48000))
	if err != nil {
		return err
	}
	defer n.Destroy()

	if err := n.CompileProgram(orc); err != nil {
		return err
	}
	if err := n.Start(); err != nil {
		return err
	}

	// In the device callback:
	n.Process(in, out)

Control updates normally reach the engine from the caller's goroutine. With
WithControlQueue they are queued and applied on the audio goroutine at the
start of the next Process call instead.
*/
package bridge
