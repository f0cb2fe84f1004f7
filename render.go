// SPDX-License-Identifier: EPL-2.0

package blockbridge

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/ik5/blockbridge/audio"
	"github.com/ik5/blockbridge/bridge"
	"github.com/ik5/blockbridge/device"
	"github.com/ik5/blockbridge/engine"
	"github.com/ik5/blockbridge/formats/wav"
)

// RenderOptions describes an offline render.
type RenderOptions struct {
	SampleRate int
	// BitDepth of the WAV output; 16 when zero.
	BitDepth int
	Frames   int64
	// BufferSizes is the device window schedule; 512 frames when empty.
	BufferSizes []int
	// Input feeds the node's input channels. It must match the node's rate
	// and channel count; see OpenInput.
	Input  audio.Source
	Logger *slog.Logger
}

func (o RenderOptions) withDefaults() RenderOptions {
	if o.BitDepth == 0 {
		o.BitDepth = 16
	}
	if len(o.BufferSizes) == 0 {
		o.BufferSizes = []int{512}
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// RenderNode starts a compiled node and renders opts.Frames frames of its
// output to w as WAV. The node is stopped again before RenderNode returns.
func RenderNode(ctx context.Context, node *bridge.Node, w io.WriteSeeker, opts RenderOptions) (device.Stats, error) {
	opts = opts.withDefaults()

	if opts.Frames <= 0 || opts.SampleRate <= 0 || node.OutputChannels() == 0 {
		return device.Stats{}, fmt.Errorf("%w: %d frames at %d Hz, %d output channels",
			ErrInvalidRenderOptions, opts.Frames, opts.SampleRate, node.OutputChannels())
	}
	if opts.Input != nil && node.InputChannels() == 0 {
		return device.Stats{}, ErrNoInput
	}

	out, err := wav.NewWriter(w, opts.SampleRate, opts.BitDepth, node.OutputChannels())
	if err != nil {
		return device.Stats{}, fmt.Errorf("%w", err)
	}

	devOpts := []device.Option{
		device.WithSink(out),
		device.WithBufferSizes(opts.BufferSizes...),
		device.WithLogger(opts.Logger),
	}
	if opts.Input != nil {
		devOpts = append(devOpts, device.WithInput(opts.Input))
	}

	dev, err := device.NewOffline(node, node.InputChannels(), node.OutputChannels(), devOpts...)
	if err != nil {
		return device.Stats{}, fmt.Errorf("%w", err)
	}

	if err := node.Start(); err != nil {
		return device.Stats{}, err
	}
	stats, runErr := dev.Run(ctx, opts.Frames)
	node.Stop()

	if err := out.Close(); err != nil && runErr == nil {
		runErr = fmt.Errorf("%w", err)
	}

	if status := node.Bridge().Status(); status != engine.StatusReady {
		opts.Logger.Info("engine stopped producing blocks before the end of the render",
			"status", status,
		)
	}
	return stats, runErr
}

// Render compiles program on e and renders it to w as WAV. The engine is
// owned and destroyed by Render. A program that starts with a document tag
// is compiled as a whole document, anything else as orchestra code.
func Render(ctx context.Context, e engine.Engine, program string, w io.WriteSeeker, inputChannels, outputChannels int, opts RenderOptions) (device.Stats, error) {
	opts = opts.withDefaults()

	node, err := bridge.NewNode(e, inputChannels, outputChannels,
		bridge.WithSampleRate(opts.SampleRate),
		bridge.WithLogger(opts.Logger),
	)
	if err != nil {
		e.Destroy()
		return device.Stats{}, err
	}
	defer node.Destroy()

	if err := Compile(node, program); err != nil {
		return device.Stats{}, err
	}

	return RenderNode(ctx, node, w, opts)
}

// Compile compiles program as a document when it looks like one and as
// orchestra code otherwise.
func Compile(node *bridge.Node, program string) error {
	if IsDocument(program) {
		return node.CompileDocument(program)
	}
	return node.CompileProgram(program)
}

// IsDocument reports whether program is a complete document rather than
// orchestra code.
func IsDocument(program string) bool {
	return strings.HasPrefix(strings.TrimSpace(program), "<CsoundSynthesizer>")
}
