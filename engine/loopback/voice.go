// SPDX-License-Identifier: EPL-2.0

package loopback

import "math"

// voice is a monophonic sine oscillator following the last note on.
type voice struct {
	note  byte
	freq  float64
	amp   float64
	phase float64
}

// NoteFrequency is the equal-tempered frequency of a MIDI note, A4 (69) at
// 440 Hz.
func NoteFrequency(note byte) float64 {
	return 440 * math.Pow(2, (float64(note)-69)/12)
}

func (v *voice) handle(m [3]byte) {
	switch kind, note, velocity := m[0]&0xf0, m[1], m[2]; {
	case kind == 0x90 && velocity > 0:
		v.note = note
		v.freq = NoteFrequency(note)
		v.amp = 0.5 * float64(velocity) / 127
	case kind == 0x80 || kind == 0x90:
		if note == v.note {
			v.amp = 0
			v.phase = 0
		}
	case kind == 0xb0 && note == 123: // all notes off
		v.amp = 0
		v.phase = 0
	}
}
