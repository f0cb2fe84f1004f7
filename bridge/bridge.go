// SPDX-License-Identifier: EPL-2.0

package bridge

import (
	"log/slog"
	"sync/atomic"

	"github.com/ik5/blockbridge/engine"
)

// AudioBridge moves samples between fixed-size engine blocks and the
// variable-size planar windows of a pull-based audio device.
//
// Process must only be called from one goroutine at a time (the device
// callback). Start and Stop may be called from another goroutine; Stop takes
// effect at the next Process call.
type AudioBridge struct {
	src    *engine.BlockSource
	logger *slog.Logger

	block    engine.Block
	zeroDBFS float64

	// cursor is in [0, ksmps]; ksmps means the current block is used up.
	cursor  int
	status  engine.Status
	started bool
	running atomic.Bool
}

// NewAudioBridge creates a stopped bridge over src.
func NewAudioBridge(src *engine.BlockSource, logger *slog.Logger) *AudioBridge {
	if logger == nil {
		logger = slog.Default()
	}
	return &AudioBridge{
		src:    src,
		logger: logger,
		status: engine.StatusReady,
	}
}

// Start acquires the engine's block views on first use and marks the bridge
// running. After Stop, Start resumes from the preserved cursor.
func (b *AudioBridge) Start() error {
	if !b.started {
		block, err := b.src.Start()
		if err != nil {
			return err
		}

		b.block = block
		b.zeroDBFS = block.ZeroDBFS
		// The first frame processed fetches the first block.
		b.cursor = block.Ksmps
		b.status = engine.StatusReady
		b.started = true

		b.logger.Debug("bridge started",
			"ksmps", block.Ksmps,
			"inputChannels", block.InputChannels,
			"outputChannels", block.OutputChannels,
			"zeroDBFS", block.ZeroDBFS,
		)
	}

	b.running.Store(true)
	return nil
}

// Stop pauses processing. Engine state, block contents and cursor are kept.
func (b *AudioBridge) Stop() { b.running.Store(false) }

// Invalidate stops the bridge and drops the block views, e.g. before an
// engine reset. The next Start acquires fresh views.
func (b *AudioBridge) Invalidate() {
	b.running.Store(false)
	b.started = false
	b.block = engine.Block{}
	b.cursor = 0
	b.status = engine.StatusReady
}

func (b *AudioBridge) Running() bool         { return b.running.Load() }
func (b *AudioBridge) Started() bool         { return b.started }
func (b *AudioBridge) Status() engine.Status { return b.status }
func (b *AudioBridge) Ksmps() int            { return b.block.Ksmps }
func (b *AudioBridge) ZeroDBFS() float64     { return b.zeroDBFS }

// Cursor is the index of the next unread frame within the current block. A
// fully consumed block reads as 0: the next frame starts a new block.
func (b *AudioBridge) Cursor() int {
	if !b.started || b.block.Ksmps == 0 {
		return 0
	}
	return b.cursor % b.block.Ksmps
}

// Process is the device callback. in and out hold one slice per channel,
// all of the same frame length.
//
// Input samples are scaled by 0dBFS into the engine's input block; output
// samples are divided by 0dBFS into out. When the engine stops producing
// blocks (exhausted or failed) out is filled with silence. Device input
// channels beyond the engine's are dropped; engine inputs the device does not
// supply keep the previous block's values. Output channels the engine does
// not produce are silent.
func (b *AudioBridge) Process(in, out [][]float32) {
	if !b.running.Load() || !b.started {
		return
	}

	frames := windowLength(in, out)
	ksmps := b.block.Ksmps
	nIn := b.block.InputChannels
	nOut := b.block.OutputChannels
	inChannels := min(len(in), nIn)
	csIn := b.block.Input
	csOut := b.block.Output
	scale := b.zeroDBFS

	cursor := b.cursor
	status := b.status

	for i := range frames {
		if cursor == ksmps && status == engine.StatusReady {
			status = b.src.NextBlock()
			cursor = 0
		}

		if cursor < ksmps {
			base := cursor * nIn
			for c := range inChannels {
				csIn[base+c] = float64(in[c][i]) * scale
			}
		}

		if status == engine.StatusReady {
			base := cursor * nOut
			for c, ch := range out {
				if c < nOut {
					ch[i] = float32(csOut[base+c] / scale)
				} else {
					ch[i] = 0
				}
			}
		} else {
			for _, ch := range out {
				ch[i] = 0
			}
		}

		if cursor < ksmps {
			cursor++
		}
	}

	if status != b.status {
		b.logger.Warn("engine stopped producing blocks, output is silent", "status", status)
	}

	b.cursor = cursor
	b.status = status
}

// windowLength is the frame count every channel of the window can supply.
func windowLength(in, out [][]float32) int {
	n := -1
	for _, ch := range out {
		if n < 0 || len(ch) < n {
			n = len(ch)
		}
	}
	for _, ch := range in {
		if n < 0 || len(ch) < n {
			n = len(ch)
		}
	}
	return max(n, 0)
}
