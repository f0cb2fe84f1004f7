// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"io"
	"slices"
	"testing"

	"github.com/ik5/blockbridge/internal/audiotest"
)

func TestInterleaveDeinterleave(t *testing.T) {
	t.Parallel()

	for channels := 1; channels <= 5; channels++ {
		const frames = 37

		planar := make([][]float32, channels)
		for c := range planar {
			planar[c] = make([]float32, frames+3)
			for f := range planar[c] {
				planar[c][f] = audiotest.Ramp(f, c)
			}
		}

		inter := make([]float32, frames*channels)
		Interleave(inter, planar, frames)
		for f := range frames {
			for c := range channels {
				if got, want := inter[f*channels+c], audiotest.Ramp(f, c); got != want {
					t.Fatalf("%d channels: inter[%d][%d] = %v, want %v", channels, f, c, got, want)
				}
			}
		}

		back := make([][]float32, channels)
		for c := range back {
			back[c] = make([]float32, frames)
		}
		Deinterleave(back, inter, frames)
		for c := range channels {
			if !slices.Equal(back[c], planar[c][:frames]) {
				t.Errorf("%d channels: channel %d did not round trip", channels, c)
			}
		}
	}
}

func TestFrameReader(t *testing.T) {
	t.Parallel()

	src := audiotest.NewRampSource(8000, 2, 50)
	src.MaxRead = 14 // forces several reads per window
	r := NewFrameReader(src)

	dst := [][]float32{make([]float32, 20), make([]float32, 20)}
	total := 0
	for window := 0; ; window++ {
		for c := range dst {
			for f := range dst[c] {
				dst[c][f] = 99
			}
		}

		n, err := r.ReadFrames(dst)
		for f := range 20 {
			for c := range 2 {
				want := float32(0)
				if f < n {
					want = audiotest.Ramp(total+f, c)
				}
				if dst[c][f] != want {
					t.Fatalf("window %d frame %d channel %d = %v, want %v", window, f, c, dst[c][f], want)
				}
			}
		}
		total += n

		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		if n != 20 {
			t.Fatalf("window %d: read %d frames before EOF", window, n)
		}
	}

	if total != 50 {
		t.Errorf("read %d frames, want 50", total)
	}

	n, err := r.ReadFrames(dst)
	if n != 0 || !errors.Is(err, io.EOF) || dst[0][0] != 0 {
		t.Errorf("after EOF: %d, %v, %v", n, err, dst[0][0])
	}
}

func TestFrameReader_Errors(t *testing.T) {
	t.Parallel()

	r := NewFrameReader(audiotest.NewSilentSource(8000, 2, 10))
	if _, err := r.ReadFrames([][]float32{make([]float32, 4)}); !errors.Is(err, ErrChannelMismatch) {
		t.Errorf("error = %v, want ErrChannelMismatch", err)
	}

	r = NewFrameReader(audiotest.Broken(8000, 1))
	if _, err := r.ReadFrames([][]float32{make([]float32, 4)}); !errors.Is(err, audiotest.ErrBroken) {
		t.Errorf("error = %v, want ErrBroken", err)
	}
}
