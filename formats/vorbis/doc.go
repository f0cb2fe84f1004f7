// SPDX-License-Identifier: EPL-2.0

// Package vorbis decodes Ogg Vorbis streams into an audio.Source using
// github.com/jfreymuth/oggvorbis.
//
// Samples come out interleaved in [-1, 1] at the stream's own rate and
// channel count:
//
//	f, _ := os.Open("take.ogg")
//	src, err := vorbis.Decoder{}.Decode(f)
//	if err != nil {
//		return err
//	}
//	defer src.Close()
//
// Frames reports the stream length when the input is an io.ReadSeeker.
package vorbis
