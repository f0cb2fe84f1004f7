// SPDX-License-Identifier: EPL-2.0

// Package engine describes the block-oriented synthesis engine that a bridge
// drives, and wraps it in a BlockSource that hands out one block at a time.
//
// # Engine Interface
//
// An Engine renders audio in fixed blocks of BlockLength() frames (ksmps).
// Its input and output buffers are channel-interleaved float64 slices owned by
// the engine and overwritten in place on every PerformBlock call:
//
//	type Engine interface {
//	    BlockLength() int
//	    InputBlock() []float64
//	    OutputBlock() []float64
//	    FullScale() float64
//	    PerformBlock() int
//	    ...
//	}
//
// Implementations live in subpackages (engine/loopback, engine/csound) and are
// registered by name:
//
//	eng, err := engine.Open("loopback")
//
// # Block Source
//
// BlockSource owns an Engine exclusively. Start prepares the engine for
// real-time performance and returns stable views onto its buffers; NextBlock
// advances the engine by exactly one block:
//
//	src := engine.NewBlockSource(eng)
//	block, err := src.Start()
//	if err != nil {
//	    return err // wraps ErrEngineInit
//	}
//
//	switch src.NextBlock() {
//	case engine.StatusReady:
//	    // block.Output holds ksmps fresh frames
//	case engine.StatusExhausted, engine.StatusFailed:
//	    // block.Output is undefined
//	}
//
// Close destroys the engine exactly once.
//
// # Errors
//
// Failures are reported as *Error values that unwrap to one of the sentinel
// errors (ErrEngineInit, ErrCompile, ErrEngineRuntime, ErrEngine, ErrClosed),
// so callers test them with errors.Is.
package engine
