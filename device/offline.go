// SPDX-License-Identifier: EPL-2.0

package device

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/ik5/blockbridge/audio"
)

// Processor is the device callback: fill every channel of out with
// len(out[0]) frames, reading the same number of frames from in.
type Processor interface {
	Process(in, out [][]float32)
}

// Sink receives every rendered output window.
type Sink interface {
	WriteFrames(planar [][]float32, frames int) error
}

// Option configures an Offline device.
type Option func(*Offline) error

// WithInput feeds the device's input channels from src. Once src is
// exhausted the input is silent.
func WithInput(src audio.Source) Option {
	return func(d *Offline) error {
		if src.Channels() != d.inputChannels {
			return fmt.Errorf("%w: input source has %d channels, device has %d",
				ErrChannelMismatch, src.Channels(), d.inputChannels)
		}
		d.input = audio.NewFrameReader(src)
		return nil
	}
}

// WithSink sends the output windows to s.
func WithSink(s Sink) Option {
	return func(d *Offline) error {
		d.sink = s
		return nil
	}
}

// WithBufferSizes sets the frame counts requested by successive callbacks.
// The schedule repeats. The default is a fixed 512 frames.
func WithBufferSizes(sizes ...int) Option {
	return func(d *Offline) error {
		if len(sizes) == 0 {
			return fmt.Errorf("%w: empty schedule", ErrInvalidBufferSize)
		}
		for _, n := range sizes {
			if n < 1 {
				return fmt.Errorf("%w: %d", ErrInvalidBufferSize, n)
			}
		}
		d.schedule = append([]int(nil), sizes...)
		return nil
	}
}

// WithLogger sets the base logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Offline) error {
		d.logger = logger
		return nil
	}
}

// Offline is an audio device that runs as fast as the processor allows
// instead of on a hardware clock. It calls the processor with a schedule of
// window sizes, the way a real device picks its own buffer size per
// callback.
type Offline struct {
	logger *slog.Logger
	uuid   uuid.UUID

	proc           Processor
	inputChannels  int
	outputChannels int
	schedule       []int

	input *audio.FrameReader
	sink  Sink

	in, out  [][]float32
	next     int
	inputEOF bool
}

// NewOffline creates a device with the given channel layout driving proc.
func NewOffline(proc Processor, inputChannels, outputChannels int, opts ...Option) (*Offline, error) {
	if inputChannels < 0 || outputChannels < 0 || inputChannels+outputChannels == 0 {
		return nil, fmt.Errorf("%w: %d inputs, %d outputs", ErrInvalidChannels, inputChannels, outputChannels)
	}

	d := &Offline{
		logger:         slog.Default(),
		uuid:           uuid.New(),
		proc:           proc,
		inputChannels:  inputChannels,
		outputChannels: outputChannels,
		schedule:       []int{512},
	}
	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}
	d.logger = d.logger.With("offline device uuid", d.uuid)

	largest := 0
	for _, n := range d.schedule {
		largest = max(largest, n)
	}
	d.in = makeWindow(inputChannels, largest)
	d.out = makeWindow(outputChannels, largest)

	return d, nil
}

func makeWindow(channels, frames int) [][]float32 {
	w := make([][]float32, channels)
	for c := range w {
		w[c] = make([]float32, frames)
	}
	return w
}

func view(dst, w [][]float32, frames int) [][]float32 {
	for c := range w {
		dst[c] = w[c][:frames]
	}
	return dst
}

// Run renders frames output frames and returns the statistics of what was
// rendered. Cancelling ctx stops the run between callbacks; the frames
// rendered so far are reported along with the context error.
func (d *Offline) Run(ctx context.Context, frames int64) (Stats, error) {
	stats := newStats(d.outputChannels)
	in := make([][]float32, d.inputChannels)
	out := make([][]float32, d.outputChannels)

	d.logger.Debug("offline run starting",
		"frames", frames,
		"schedule", d.schedule,
	)

	for stats.Frames < frames {
		if err := ctx.Err(); err != nil {
			d.logger.Debug("offline run cancelled", "rendered", stats.Frames)
			return stats.finish(), fmt.Errorf("%w", err)
		}

		n := int(min(int64(d.schedule[d.next]), frames-stats.Frames))
		d.next = (d.next + 1) % len(d.schedule)

		if err := d.readInput(view(in, d.in, n)); err != nil {
			return stats.finish(), err
		}

		// Windows start silent; a paused processor leaves them untouched.
		for _, ch := range view(out, d.out, n) {
			clear(ch)
		}
		d.proc.Process(in, out)
		stats.add(out, n)

		if d.sink != nil {
			if err := d.sink.WriteFrames(out, n); err != nil {
				d.logger.Error("could not write output window", "err", err)
				return stats.finish(), fmt.Errorf("%w", err)
			}
		}
	}

	result := stats.finish()
	d.logger.Debug("offline run finished",
		"frames", result.Frames,
		"callbacks", result.Callbacks,
		"peak dBFS", result.PeakDBFS(),
	)
	return result, nil
}

func (d *Offline) readInput(in [][]float32) error {
	if d.input == nil || d.inputEOF {
		for _, ch := range in {
			clear(ch)
		}
		return nil
	}

	_, err := d.input.ReadFrames(in)
	if errors.Is(err, io.EOF) {
		d.logger.Debug("input source exhausted")
		d.inputEOF = true
		return nil
	}
	if err != nil {
		d.logger.Error("could not read input", "err", err)
		return fmt.Errorf("%w", err)
	}
	return nil
}
