// SPDX-License-Identifier: EPL-2.0

package engine

import "strconv"

// RealtimeOptions returns the startup options that put an engine under host
// control: audio and MIDI flow through the block buffers and PushMidiEvent
// instead of the engine's own device drivers. A non-positive sampleRate
// leaves the engine's default rate in place.
func RealtimeOptions(sampleRate, inputChannels, outputChannels int) []string {
	opts := []string{
		"-odac",
		"-iadc",
		"-M0",
		"-+rtaudio=null",
		"-+rtmidi=null",
	}
	if sampleRate > 0 {
		opts = append(opts, "--sample-rate="+strconv.Itoa(sampleRate))
	}
	opts = append(opts,
		"--nchnls="+strconv.Itoa(outputChannels),
		"--nchnls_i="+strconv.Itoa(inputChannels),
	)
	return opts
}

// ApplyOptions sets every option on e, stopping at the first failure.
func ApplyOptions(e Engine, opts []string) error {
	for _, opt := range opts {
		if err := e.SetOption(opt); err != nil {
			return NewError("set option "+opt, ErrEngine, 0, err)
		}
	}
	return nil
}
