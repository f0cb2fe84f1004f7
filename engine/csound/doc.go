// SPDX-License-Identifier: EPL-2.0

// Package csound binds libcsound 6 (double precision) as an engine.Engine.
//
// The package is only built with the csound build tag and needs the Csound
// headers and library installed:
//
//	go build -tags csound ./...
//
// Importing it registers the engine as "csound". Audio I/O is host
// implemented: Csound's spin/spout buffers are the block buffers, and MIDI
// pushed with PushMidiEvent is read by Csound through its external MIDI
// callbacks.
package csound
