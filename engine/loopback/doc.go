// SPDX-License-Identifier: EPL-2.0

// Package loopback implements engine.Engine in pure Go.
//
// The loopback engine does not interpret programs. Any non-blank program
// compiles, after which every block copies the input to the output (input
// channel c%inputs feeds output channel c) multiplied by the "gain" control
// channel, and adds a sine voice driven by MIDI note-on/note-off messages.
// A block limit makes PerformBlock report the end of the program, which is
// how tests and the offline renderer exercise the exhausted state.
//
// Importing the package registers it as "loopback":
//
//	import _ "github.com/ik5/blockbridge/engine/loopback"
//
//	eng, err := engine.Open("loopback")
//
// Besides the realtime options every engine understands (--sample-rate,
// --nchnls, --nchnls_i), SetOption accepts --ksmps=N, --0dbfs=X and
// --blocks=N. Other options are accepted and ignored.
package loopback
