// SPDX-License-Identifier: EPL-2.0

// Package mp3 decodes MPEG-1/2 Layer III streams into an audio.Source.
//
// Decoding is done by github.com/hajimehoshi/go-mp3, which always produces
// 16-bit stereo. Mono files come out with both channels equal; use
// audio.NewChannelMapper to fold them back when the engine expects one
// channel.
//
//	f, _ := os.Open("input.mp3")
//	src, err := mp3.Decoder{}.Decode(f)
//	if err != nil {
//		return err
//	}
//	defer src.Close()
//
// Closing the source closes the underlying file.
package mp3
