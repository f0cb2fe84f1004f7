// SPDX-License-Identifier: EPL-2.0

package loopback

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/ik5/blockbridge/engine"
)

const (
	DefaultKsmps      = 32
	DefaultSampleRate = 44100
	DefaultZeroDBFS   = 1.0

	// GainChannel scales the input passthrough.
	GainChannel = "gain"

	midiBacklog = 256
)

func init() {
	engine.Register("loopback", func() (engine.Engine, error) { return New(), nil })
}

// Option configures an Engine at construction.
type Option func(*Engine)

// WithKsmps sets the block length in frames.
func WithKsmps(ksmps int) Option { return func(e *Engine) { e.ksmps = ksmps } }

// WithZeroDBFS sets the full-scale amplitude.
func WithZeroDBFS(v float64) Option { return func(e *Engine) { e.zeroDBFS = v } }

// WithBlockLimit makes PerformBlock report the end of the program after n
// blocks. Zero means no limit.
func WithBlockLimit(n int) Option { return func(e *Engine) { e.blockLimit = n } }

// WithChannels sets the input and output channel counts.
func WithChannels(in, out int) Option {
	return func(e *Engine) { e.inChannels, e.outChannels = in, out }
}

// layout is the block geometry. Options change the configured layout; Start
// copies it into the running one.
type layout struct {
	ksmps       int
	sampleRate  int
	inChannels  int
	outChannels int
	zeroDBFS    float64
}

// Engine is the loopback engine. Control channels and MIDI may be fed from a
// goroutine other than the one calling PerformBlock; everything else must be
// serialized by the caller. Options set after Start apply from the next
// Start after a Reset.
type Engine struct {
	layout
	blockLimit int

	run layout

	compiled  bool
	started   bool
	destroyed bool
	performed int

	in, out []float64

	gain     atomic.Uint64 // float64 bits
	controls sync.Map      // string -> float64
	texts    sync.Map      // string -> string
	midi     chan [3]byte

	voice voice

	handler atomic.Pointer[func(string)]
}

// New creates an engine with DefaultKsmps, DefaultSampleRate, stereo output,
// no input and DefaultZeroDBFS, then applies opts.
func New(opts ...Option) *Engine {
	e := &Engine{
		layout: layout{
			ksmps:       DefaultKsmps,
			sampleRate:  DefaultSampleRate,
			outChannels: 2,
			zeroDBFS:    DefaultZeroDBFS,
		},
		midi: make(chan [3]byte, midiBacklog),
	}
	e.gain.Store(math.Float64bits(1))

	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SampleRate returns the running rate, or the configured one before Start.
func (e *Engine) SampleRate() int { return e.current().sampleRate }
func (e *Engine) Performed() int  { return e.performed }

func (e *Engine) current() layout {
	if e.started {
		return e.run
	}
	return e.layout
}

func (e *Engine) message(format string, args ...any) {
	if fn := e.handler.Load(); fn != nil {
		(*fn)(fmt.Sprintf(format, args...))
	}
}

func (e *Engine) SetMessageHandler(fn func(message string)) {
	if fn == nil {
		e.handler.Store(nil)
		return
	}
	e.handler.Store(&fn)
}

// SetOption understands --sample-rate, --nchnls, --nchnls_i, --ksmps,
// --0dbfs and --blocks.
func (e *Engine) SetOption(option string) error {
	if e.destroyed {
		return ErrDestroyed
	}

	name, value, ok := strings.Cut(option, "=")
	if !ok {
		return nil
	}

	var dst *int
	switch name {
	case "--sample-rate", "-r":
		dst = &e.sampleRate
	case "--nchnls":
		dst = &e.outChannels
	case "--nchnls_i":
		dst = &e.inChannels
	case "--ksmps":
		dst = &e.ksmps
	case "--blocks":
		dst = &e.blockLimit
	case "--0dbfs":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil || v <= 0 {
			return fmt.Errorf("%w: %s", ErrInvalidOption, option)
		}
		e.zeroDBFS = v
		return nil
	default:
		return nil
	}

	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return fmt.Errorf("%w: %s", ErrInvalidOption, option)
	}
	*dst = n
	return nil
}

func (e *Engine) PrepareRealtime() error {
	if e.destroyed {
		return ErrDestroyed
	}
	return nil
}

func (e *Engine) compile(kind, source string) error {
	if e.destroyed {
		return ErrDestroyed
	}
	if strings.TrimSpace(source) == "" {
		e.message("error: %s: %v", kind, ErrEmptyProgram)
		return ErrEmptyProgram
	}

	e.compiled = true
	e.message("%s: %d lines compiled", kind, strings.Count(source, "\n")+1)
	return nil
}

func (e *Engine) CompileProgram(source string) error  { return e.compile("orchestra", source) }
func (e *Engine) CompileDocument(source string) error { return e.compile("document", source) }

// Evaluate understands "name = value", which sets a control channel, and a
// bare number. Both return the number.
func (e *Engine) Evaluate(code string) (float64, error) {
	if e.destroyed {
		return 0, ErrDestroyed
	}

	name, value, assign := strings.Cut(code, "=")
	if !assign {
		value = name
	}

	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		e.message("error: cannot evaluate %q", code)
		return 0, fmt.Errorf("%w: %q", ErrSyntax, code)
	}

	if assign {
		name = strings.TrimSpace(name)
		if name == "" {
			return 0, fmt.Errorf("%w: %q", ErrSyntax, code)
		}
		e.SetControlChannel(name, v)
	}
	return v, nil
}

// ReadScore accepts any score; the loopback engine has no instruments to
// schedule.
func (e *Engine) ReadScore(score string) error {
	if e.destroyed {
		return ErrDestroyed
	}
	e.message("score: %d events ignored", len(strings.Fields(score)))
	return nil
}

func (e *Engine) Start() error {
	switch {
	case e.destroyed:
		return ErrDestroyed
	case !e.compiled:
		return ErrNotCompiled
	case e.started:
		return nil
	}

	if e.ksmps <= 0 || e.sampleRate <= 0 {
		return fmt.Errorf("%w: ksmps %d, sample rate %d", ErrInvalidOption, e.ksmps, e.sampleRate)
	}

	e.run = e.layout
	e.in = make([]float64, e.run.ksmps*e.run.inChannels)
	e.out = make([]float64, e.run.ksmps*e.run.outChannels)
	e.voice = voice{}
	e.performed = 0
	e.started = true

	e.message("started: sr %d, ksmps %d, nchnls %d, nchnls_i %d",
		e.run.sampleRate, e.run.ksmps, e.run.outChannels, e.run.inChannels)
	return nil
}

func (e *Engine) BlockLength() int       { return e.current().ksmps }
func (e *Engine) InputBlock() []float64  { return e.in }
func (e *Engine) OutputBlock() []float64 { return e.out }
func (e *Engine) FullScale() float64     { return e.current().zeroDBFS }
func (e *Engine) InputChannels() int     { return e.current().inChannels }
func (e *Engine) OutputChannels() int    { return e.current().outChannels }

// PerformBlock renders one block. It returns 1 once the block limit is
// reached and -1 when the engine is not started.
func (e *Engine) PerformBlock() int {
	if e.destroyed || !e.started {
		return -1
	}
	if e.blockLimit > 0 && e.performed >= e.blockLimit {
		if e.performed == e.blockLimit {
			e.performed++
			e.message("end of program after %d blocks", e.blockLimit)
		}
		return 1
	}
	e.performed++

	e.drainMidi()

	gain := math.Float64frombits(e.gain.Load())
	nIn, nOut := e.run.inChannels, e.run.outChannels
	step := 2 * math.Pi * e.voice.freq / float64(e.run.sampleRate)
	amp := e.voice.amp * e.run.zeroDBFS

	for f := range e.run.ksmps {
		s := 0.0
		if amp > 0 {
			s = amp * math.Sin(e.voice.phase)
			e.voice.phase = math.Mod(e.voice.phase+step, 2*math.Pi)
		}

		for c := range nOut {
			v := s
			if nIn > 0 {
				v += gain * e.in[f*nIn+c%nIn]
			}
			e.out[f*nOut+c] = v
		}
	}
	return 0
}

func (e *Engine) SetControlChannel(name string, value float64) {
	if name == GainChannel {
		e.gain.Store(math.Float64bits(value))
	}
	e.controls.Store(name, value)
}

// ControlChannel returns the last value set on a control channel.
func (e *Engine) ControlChannel(name string) (float64, bool) {
	v, ok := e.controls.Load(name)
	if !ok {
		return 0, false
	}
	return v.(float64), true
}

func (e *Engine) SetStringChannel(name string, value string) { e.texts.Store(name, value) }

// StringChannel returns the last value set on a string channel.
func (e *Engine) StringChannel(name string) (string, bool) {
	v, ok := e.texts.Load(name)
	if !ok {
		return "", false
	}
	return v.(string), true
}

// PushMidiEvent queues a MIDI message for the next block. Messages beyond the
// backlog are dropped.
func (e *Engine) PushMidiEvent(status, data1, data2 byte) {
	select {
	case e.midi <- [3]byte{status, data1, data2}:
	default:
	}
}

func (e *Engine) drainMidi() {
	for {
		select {
		case m := <-e.midi:
			e.voice.handle(m)
		default:
			return
		}
	}
}

// Reset returns the engine to its pre-compile state. Options are kept.
func (e *Engine) Reset() {
	e.compiled = false
	e.started = false
	e.performed = 0
	e.in, e.out = nil, nil
	e.drainMidi()
	e.voice = voice{}
}

func (e *Engine) Destroy() {
	e.Reset()
	e.destroyed = true
}
