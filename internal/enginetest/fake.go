// SPDX-License-Identifier: EPL-2.0

// Package enginetest provides a scripted in-memory engine for tests.
package enginetest

import (
	"errors"
	"strings"
)

// ErrEmptyProgram is returned by the compile methods for blank source.
var ErrEmptyProgram = errors.New("empty program")

// FakeEngine is a test helper implementing engine.Engine (without importing
// it to avoid cycles).
//
// By default each PerformBlock writes a ramp: output sample i of block b is
// b*len(Output) + i, so the value at global frame g and channel c equals
// g*OutChannels + c. Inputs seen by each PerformBlock are recorded.
type FakeEngine struct {
	Ksmps       int
	InChannels  int
	OutChannels int
	ZeroDBFS    float64

	// Codes are returned by successive PerformBlock calls; once used up,
	// PerformBlock returns 0.
	Codes []int

	// Render replaces the default ramp when set.
	Render func(block int, in, out []float64)

	CompileErr error
	StartErr   error

	Options         []string
	Programs        []string
	Scores          []string
	Evaluated       []string
	ControlChannels map[string]float64
	StringChannels  map[string]string
	Midi            [][3]byte
	Inputs          [][]float64

	Performed int
	Prepared  int
	Resets    int
	Destroyed int
	Started   bool

	handler func(string)
	in, out []float64
}

// New returns a FakeEngine with the given block layout and a 0dBFS of 1.
func New(ksmps, inChannels, outChannels int) *FakeEngine {
	return &FakeEngine{
		Ksmps:           ksmps,
		InChannels:      inChannels,
		OutChannels:     outChannels,
		ZeroDBFS:        1,
		ControlChannels: make(map[string]float64),
		StringChannels:  make(map[string]string),
	}
}

func (f *FakeEngine) SetOption(option string) error {
	f.Options = append(f.Options, option)
	return nil
}

func (f *FakeEngine) PrepareRealtime() error {
	f.Prepared++
	return nil
}

func (f *FakeEngine) compile(source string) error {
	if f.CompileErr != nil {
		f.message("error: " + f.CompileErr.Error())
		return f.CompileErr
	}
	if strings.TrimSpace(source) == "" {
		f.message("error: empty program")
		return ErrEmptyProgram
	}
	f.Programs = append(f.Programs, source)
	return nil
}

func (f *FakeEngine) CompileProgram(source string) error  { return f.compile(source) }
func (f *FakeEngine) CompileDocument(source string) error { return f.compile(source) }

func (f *FakeEngine) Evaluate(code string) (float64, error) {
	if err := f.compile(code); err != nil {
		return 0, err
	}
	f.Evaluated = append(f.Evaluated, code)
	return float64(len(f.Evaluated)), nil
}

func (f *FakeEngine) ReadScore(score string) error {
	f.Scores = append(f.Scores, score)
	return nil
}

func (f *FakeEngine) Start() error {
	if f.StartErr != nil {
		return f.StartErr
	}
	if len(f.Programs) == 0 {
		return ErrEmptyProgram
	}
	if !f.Started {
		f.in = make([]float64, f.Ksmps*f.InChannels)
		f.out = make([]float64, f.Ksmps*f.OutChannels)
		f.Started = true
	}
	return nil
}

func (f *FakeEngine) BlockLength() int       { return f.Ksmps }
func (f *FakeEngine) InputBlock() []float64  { return f.in }
func (f *FakeEngine) OutputBlock() []float64 { return f.out }
func (f *FakeEngine) FullScale() float64     { return f.ZeroDBFS }
func (f *FakeEngine) InputChannels() int     { return f.InChannels }
func (f *FakeEngine) OutputChannels() int    { return f.OutChannels }

func (f *FakeEngine) PerformBlock() int {
	block := f.Performed
	f.Performed++

	f.Inputs = append(f.Inputs, append([]float64(nil), f.in...))

	code := 0
	if block < len(f.Codes) {
		code = f.Codes[block]
	}

	if f.Render != nil {
		f.Render(block, f.in, f.out)
	} else {
		for i := range f.out {
			f.out[i] = float64(block*len(f.out) + i)
		}
	}
	return code
}

func (f *FakeEngine) SetControlChannel(name string, value float64) {
	f.ControlChannels[name] = value
}

func (f *FakeEngine) SetStringChannel(name string, value string) {
	f.StringChannels[name] = value
}

func (f *FakeEngine) PushMidiEvent(status, data1, data2 byte) {
	f.Midi = append(f.Midi, [3]byte{status, data1, data2})
}

func (f *FakeEngine) SetMessageHandler(fn func(message string)) { f.handler = fn }

func (f *FakeEngine) message(text string) {
	if f.handler != nil {
		f.handler(text)
	}
}

func (f *FakeEngine) Reset() {
	f.Resets++
	f.Started = false
	f.Programs = nil
	f.in, f.out = nil, nil
}

func (f *FakeEngine) Destroy() { f.Destroyed++ }
