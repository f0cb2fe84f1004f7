// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"errors"
	"sync"
)

// Block is a view onto an engine's block buffers. Input and Output alias the
// engine's memory; they are valid until the next Reset or Close.
type Block struct {
	// Ksmps is the number of frames per block.
	Ksmps int
	// InputChannels and OutputChannels give the interleave stride of Input
	// and Output.
	InputChannels  int
	OutputChannels int
	// Input is written by the host before NextBlock, interleaved.
	Input []float64
	// Output is filled by NextBlock, interleaved.
	Output []float64
	// ZeroDBFS is the engine's full-scale amplitude.
	ZeroDBFS float64
}

// BlockSource advances an Engine one block at a time.
//
// It is not safe for concurrent use: NextBlock mutates the buffers the Block
// views point at.
type BlockSource struct {
	eng     Engine
	block   Block
	started bool

	closed    bool
	closeOnce sync.Once
}

// NewBlockSource takes exclusive ownership of e.
func NewBlockSource(e Engine) *BlockSource {
	return &BlockSource{eng: e}
}

// Engine returns the wrapped engine for control-path delegation.
func (s *BlockSource) Engine() Engine { return s.eng }

// Started reports whether Start succeeded since the last Reset.
func (s *BlockSource) Started() bool { return s.started }

// Block returns the views acquired by the last successful Start.
func (s *BlockSource) Block() Block { return s.block }

// Start begins real-time performance and returns views onto the engine's
// block buffers. The buffers are allocated by the engine once; repeated
// calls return the same views without restarting the engine.
func (s *BlockSource) Start() (Block, error) {
	if s.closed {
		return Block{}, NewError("start", ErrEngineInit, 0, ErrClosed)
	}
	if s.started {
		return s.block, nil
	}

	if err := s.eng.Start(); err != nil {
		return Block{}, NewError("start", ErrEngineInit, 0, err)
	}

	b := Block{
		Ksmps:          s.eng.BlockLength(),
		InputChannels:  s.eng.InputChannels(),
		OutputChannels: s.eng.OutputChannels(),
		Input:          s.eng.InputBlock(),
		Output:         s.eng.OutputBlock(),
		ZeroDBFS:       s.eng.FullScale(),
	}
	if err := b.validate(); err != nil {
		return Block{}, NewError("start", ErrEngineInit, 0, err)
	}

	s.block = b
	s.started = true
	return b, nil
}

func (b Block) validate() error {
	switch {
	case b.Ksmps <= 0:
		return errors.New("block length must be positive")
	case b.InputChannels < 0 || b.OutputChannels < 0:
		return errors.New("negative channel count")
	case len(b.Input) < b.Ksmps*b.InputChannels:
		return errors.New("input block shorter than ksmps frames")
	case len(b.Output) < b.Ksmps*b.OutputChannels:
		return errors.New("output block shorter than ksmps frames")
	case !(b.ZeroDBFS > 0):
		return errors.New("full scale amplitude must be positive")
	}
	return nil
}

// NextBlock consumes the input view and renders exactly one block into the
// output view. On anything but StatusReady the output view is undefined.
func (s *BlockSource) NextBlock() Status {
	if s.closed || !s.started {
		return StatusFailed
	}
	return StatusFromCode(s.eng.PerformBlock())
}

// Reset returns the engine to its pre-compile state and prepares it for
// real-time use again. Previously returned Blocks must not be used after.
func (s *BlockSource) Reset() error {
	if s.closed {
		return NewError("reset", ErrEngine, 0, ErrClosed)
	}

	s.eng.Reset()
	s.started = false
	s.block = Block{}

	if err := s.eng.PrepareRealtime(); err != nil {
		return NewError("reset", ErrEngine, 0, err)
	}
	return nil
}

// Close destroys the engine. Only the first call has an effect.
func (s *BlockSource) Close() error {
	s.closeOnce.Do(func() {
		s.closed = true
		s.started = false
		s.block = Block{}
		s.eng.Destroy()
	})
	return nil
}

// Closed reports whether Close was called.
func (s *BlockSource) Closed() bool { return s.closed }
