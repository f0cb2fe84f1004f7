// SPDX-License-Identifier: EPL-2.0

package bridge

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ik5/blockbridge/engine"
	"github.com/ik5/blockbridge/internal/enginetest"
)

const untouched = float32(7)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newFake(ksmps, in, out int) *enginetest.FakeEngine {
	f := enginetest.New(ksmps, in, out)
	f.Programs = []string{"instr 1\nendin"}
	return f
}

func startedBridge(t *testing.T, f *enginetest.FakeEngine) *AudioBridge {
	t.Helper()

	b := NewAudioBridge(engine.NewBlockSource(f), discardLogger())
	require.NoError(t, b.Start())
	return b
}

// window returns channels planar slices of frames samples set to fill.
func window(channels, frames int, fill float32) [][]float32 {
	w := make([][]float32, channels)
	for c := range w {
		w[c] = make([]float32, frames)
		for i := range w[c] {
			w[c][i] = fill
		}
	}
	return w
}

func ceilDiv(a, b int) int { return (a + b - 1) / b }

func TestProcess_NotStartedLeavesOutput(t *testing.T) {
	t.Parallel()

	f := newFake(32, 1, 2)
	b := NewAudioBridge(engine.NewBlockSource(f), discardLogger())

	out := window(2, 64, untouched)
	b.Process(window(1, 64, 0.5), out)

	assert.Equal(t, 0, f.Performed)
	for c := range out {
		for i, s := range out[c] {
			require.Equal(t, untouched, s, "out[%d][%d]", c, i)
		}
	}
}

func TestProcess_PauseIsIdempotent(t *testing.T) {
	t.Parallel()

	f := newFake(32, 1, 1)
	b := startedBridge(t, f)

	b.Process(window(1, 20, 0), window(1, 20, 0))
	b.Stop()

	cursor, performed := b.Cursor(), f.Performed
	for _, frames := range []int{1, 50, 128, 7} {
		out := window(1, frames, untouched)
		b.Process(window(1, frames, 0.25), out)

		assert.Equal(t, cursor, b.Cursor())
		assert.Equal(t, performed, f.Performed)
		for i, s := range out[0] {
			require.Equal(t, untouched, s, "frame %d written while stopped", i)
		}
	}
	assert.False(t, b.Running())
}

func TestProcess_BlockRequestCount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		ksmps   int
		windows []int
	}{
		{name: "window equals block", ksmps: 64, windows: []int{64, 64, 64}},
		{name: "window smaller than block", ksmps: 32, windows: []int{20, 20, 20, 20, 20}},
		{name: "window larger than block", ksmps: 10, windows: []int{128, 256, 128}},
		{name: "irregular windows", ksmps: 16, windows: []int{1, 15, 16, 17, 3, 100, 0, 33}},
		{name: "ksmps of one", ksmps: 1, windows: []int{5, 1, 9}},
		{name: "coprime sizes", ksmps: 48, windows: []int{441, 441, 441, 441}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFake(tt.ksmps, 1, 2)
			b := startedBridge(t, f)

			total := 0
			for _, frames := range tt.windows {
				b.Process(window(1, frames, 0), window(2, frames, 0))
				total += frames

				// Every started block is fetched on its first frame, none early.
				require.Equal(t, ceilDiv(total, tt.ksmps), f.Performed, "after %d frames", total)
				require.Equal(t, total%tt.ksmps, b.Cursor(), "after %d frames", total)
			}
		})
	}
}

func TestProcess_WindowsShorterThanBlock(t *testing.T) {
	t.Parallel()

	f := newFake(32, 1, 1)
	b := startedBridge(t, f)

	wantCursor := []int{20, 8, 28, 16}
	wantPerformed := []int{1, 2, 2, 3}

	for call := range 4 {
		if call == 1 {
			// The second block is fetched at frame 12 of the second window.
			b.Process(window(1, 12, 0), window(1, 12, 0))
			require.Equal(t, 1, f.Performed)
			b.Process(window(1, 8, 0), window(1, 8, 0))
		} else {
			b.Process(window(1, 20, 0), window(1, 20, 0))
		}

		assert.Equal(t, wantCursor[call], b.Cursor(), "call %d", call)
		assert.Equal(t, wantPerformed[call], f.Performed, "call %d", call)
	}
}

func TestProcess_FourBlocksPerWindow(t *testing.T) {
	t.Parallel()

	f := newFake(32, 2, 2)
	b := startedBridge(t, f)

	for call := 1; call <= 3; call++ {
		before := f.Performed
		b.Process(window(2, 128, 0), window(2, 128, 0))

		assert.Equal(t, 4, f.Performed-before, "call %d", call)
		assert.Equal(t, 0, b.Cursor(), "call %d", call)
	}
}

func TestProcess_SampleOrderAcrossBoundaries(t *testing.T) {
	t.Parallel()

	const channels = 2
	f := newFake(10, 0, channels)
	f.ZeroDBFS = 2
	b := startedBridge(t, f)

	g := 0
	for _, frames := range []int{7, 13, 3, 25, 1, 10, 11} {
		out := window(channels, frames, untouched)
		b.Process(nil, out)

		for i := range frames {
			for c := range channels {
				want := float32(g*channels+c) / 2
				require.Equal(t, want, out[c][i], "global frame %d channel %d", g, c)
			}
			g++
		}
	}
}

func TestProcess_InputScaling(t *testing.T) {
	t.Parallel()

	const (
		ksmps    = 8
		zeroDBFS = 32768.0
	)
	f := newFake(ksmps, 2, 1)
	f.ZeroDBFS = zeroDBFS
	b := startedBridge(t, f)

	sample := func(g, c int) float32 { return float32(g%ksmps)/16 - float32(c)/4 }

	// Three blocks in uneven windows; the last fetch consumes block two.
	g := 0
	for _, frames := range []int{5, 6, 6} {
		in := window(2, frames, 0)
		for i := range frames {
			for c := range 2 {
				in[c][i] = sample(g+i, c)
			}
		}
		b.Process(in, window(1, frames, 0))
		g += frames
	}

	require.Equal(t, 3, f.Performed)
	// Inputs[0] was taken before any frame was written.
	for block := 1; block < 3; block++ {
		for fr := range ksmps {
			for c := range 2 {
				want := float64(sample((block-1)*ksmps+fr, c)) * zeroDBFS
				assert.InDelta(t, want, f.Inputs[block][fr*2+c], 1e-9, "block %d frame %d ch %d", block, fr, c)
			}
		}
	}
}

func TestProcess_OutputScaling(t *testing.T) {
	t.Parallel()

	f := newFake(16, 0, 1)
	f.ZeroDBFS = 32768
	f.Render = func(_ int, _, out []float64) {
		for i := range out {
			out[i] = 16384
		}
	}
	b := startedBridge(t, f)

	out := window(1, 40, untouched)
	b.Process(nil, out)

	for i, s := range out[0] {
		require.InDelta(t, 0.5, s, 1e-7, "frame %d", i)
	}
}

func TestProcess_SilenceAfterEngineStops(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		code   int
		status engine.Status
	}{
		{name: "exhausted", code: 1, status: engine.StatusExhausted},
		{name: "failed", code: -1, status: engine.StatusFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFake(8, 1, 2)
			f.Codes = []int{0, tt.code, 0}
			b := startedBridge(t, f)

			out := window(2, 40, untouched)
			b.Process(window(1, 40, 0.9), out)

			for c := range 2 {
				for i := range 8 {
					require.Equal(t, float32(i*2+c), out[c][i])
				}
				for i := 8; i < 40; i++ {
					require.Zero(t, out[c][i], "out[%d][%d]", c, i)
				}
			}
			assert.Equal(t, tt.status, b.Status())
			assert.Equal(t, 2, f.Performed)

			// No further blocks are requested and silence continues.
			for range 5 {
				out = window(2, 33, untouched)
				b.Process(window(1, 33, 0.9), out)
				for c := range 2 {
					for i := range out[c] {
						require.Zero(t, out[c][i])
					}
				}
			}
			assert.Equal(t, 2, f.Performed)
			assert.Equal(t, 0, b.Cursor())
		})
	}
}

func TestProcess_ExtraDeviceChannels(t *testing.T) {
	t.Parallel()

	f := newFake(4, 1, 1)
	b := startedBridge(t, f)

	in := window(3, 8, 0.5)
	out := window(3, 8, untouched)
	b.Process(in, out)

	for i := range 8 {
		assert.Equal(t, float32(i), out[0][i])
		assert.Zero(t, out[1][i])
		assert.Zero(t, out[2][i])
	}
	require.Len(t, f.Inputs, 2)
	assert.Len(t, f.Inputs[1], 4)
	for _, v := range f.Inputs[1] {
		assert.InDelta(t, 0.5, v, 1e-9)
	}
}

func TestProcess_EngineInputsBeyondDeviceKeepStaleData(t *testing.T) {
	t.Parallel()

	f := newFake(4, 2, 1)
	b := startedBridge(t, f)

	for fr := range 4 {
		b.block.Input[fr*2+1] = 0.75
	}

	b.Process(window(1, 12, 0.25), window(1, 12, 0))

	require.Len(t, f.Inputs, 3)
	for block := 1; block < 3; block++ {
		for fr := range 4 {
			assert.InDelta(t, 0.25, f.Inputs[block][fr*2], 1e-9)
			assert.InDelta(t, 0.75, f.Inputs[block][fr*2+1], 1e-9)
		}
	}
}

func TestProcess_ResumePreservesCursor(t *testing.T) {
	t.Parallel()

	f := newFake(32, 0, 1)
	b := startedBridge(t, f)

	b.Process(nil, window(1, 20, 0))
	b.Stop()
	b.Process(nil, window(1, 64, 0))
	require.NoError(t, b.Start())

	assert.Equal(t, 20, b.Cursor())
	assert.Equal(t, 1, f.Performed)

	out := window(1, 13, untouched)
	b.Process(nil, out)

	// Frames 20..31 come from the preserved block, frame 32 from the next.
	for i := range 12 {
		assert.Equal(t, float32(20+i), out[0][i])
	}
	assert.Equal(t, float32(32), out[0][12])
	assert.Equal(t, 2, f.Performed)
}

func TestInvalidate(t *testing.T) {
	t.Parallel()

	f := newFake(16, 1, 1)
	b := startedBridge(t, f)
	b.Process(window(1, 5, 0), window(1, 5, 0))

	b.Invalidate()
	assert.False(t, b.Started())
	assert.False(t, b.Running())
	assert.Equal(t, 0, b.Cursor())

	out := window(1, 5, untouched)
	b.Process(window(1, 5, 0), out)
	assert.Equal(t, untouched, out[0][0])

	require.NoError(t, b.Start())
	assert.True(t, b.Started())
	assert.Equal(t, engine.StatusReady, b.Status())
}

func TestStart_PropagatesInitError(t *testing.T) {
	t.Parallel()

	b := NewAudioBridge(engine.NewBlockSource(enginetest.New(32, 1, 1)), nil)

	err := b.Start()
	require.ErrorIs(t, err, engine.ErrEngineInit)
	assert.False(t, b.Started())
	assert.False(t, b.Running())
}

func TestWindowLength(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, windowLength(nil, nil))
	assert.Equal(t, 5, windowLength(window(2, 5, 0), nil))
	assert.Equal(t, 3, windowLength(window(1, 5, 0), window(2, 3, 0)))
}
