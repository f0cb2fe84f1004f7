// SPDX-License-Identifier: EPL-2.0

package bridge

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/ik5/blockbridge/engine"
)

// MessageCallback receives engine console text.
type MessageCallback func(message string)

// NodeOption configures a Node.
type NodeOption func(*Node)

// WithLogger sets the base logger; the node adds its own id to it.
func WithLogger(logger *slog.Logger) NodeOption {
	return func(n *Node) { n.logger = logger }
}

// WithSampleRate passes the device sample rate to the engine as a startup
// option.
func WithSampleRate(rate int) NodeOption {
	return func(n *Node) { n.sampleRate = rate }
}

// WithControlQueue routes control-channel, string-channel and MIDI updates
// through a ControlQueue of the given capacity, applied at the top of each
// Process call instead of directly from the caller's goroutine.
func WithControlQueue(capacity int) NodeOption {
	return func(n *Node) { n.queue = NewControlQueue(capacity) }
}

// WithMessageCallback sets the initial message callback.
func WithMessageCallback(fn MessageCallback) NodeOption {
	return func(n *Node) { n.SetMessageCallback(fn) }
}

// Node is an engine exposed as an audio device processing node: the control
// surface of the engine plus the Process callback of an AudioBridge.
//
// Control methods are serialized with each other. Unless WithControlQueue is
// used, control-channel, string-channel and MIDI updates reach the engine
// from the caller's goroutine while Process may be running on the audio
// goroutine. Reset and Destroy must not overlap a Process call: stop the
// device callback first.
type Node struct {
	id     uuid.UUID
	logger *slog.Logger

	src    *engine.BlockSource
	bridge *AudioBridge
	queue  *ControlQueue

	inputChannels  int
	outputChannels int
	sampleRate     int

	callback atomic.Pointer[MessageCallback]

	mtx       sync.Mutex
	compiled  bool
	destroyed bool
}

// NewNode wraps e, which the node owns from now on, in a processing node
// with the given device channel counts. The engine is configured for
// host-driven real-time performance. On error the caller still owns e.
func NewNode(e engine.Engine, inputChannels, outputChannels int, opts ...NodeOption) (*Node, error) {
	if inputChannels < 0 || outputChannels < 0 || inputChannels+outputChannels == 0 {
		return nil, fmt.Errorf("%w: %d inputs, %d outputs", ErrInvalidChannels, inputChannels, outputChannels)
	}

	n := &Node{
		id:             uuid.New(),
		logger:         slog.Default(),
		src:            engine.NewBlockSource(e),
		inputChannels:  inputChannels,
		outputChannels: outputChannels,
	}
	for _, opt := range opts {
		opt(n)
	}

	n.logger = n.logger.With("node", n.id)
	n.bridge = NewAudioBridge(n.src, n.logger)
	e.SetMessageHandler(n.dispatch)

	if err := engine.ApplyOptions(e, engine.RealtimeOptions(n.sampleRate, inputChannels, outputChannels)); err != nil {
		return nil, fmt.Errorf("configuring engine: %w", err)
	}
	if err := e.PrepareRealtime(); err != nil {
		return nil, engine.NewError("prepare realtime", engine.ErrEngineInit, 0, err)
	}

	n.logger.Debug("node created",
		"inputChannels", inputChannels,
		"outputChannels", outputChannels,
		"sampleRate", n.sampleRate,
		"controlQueue", n.queue != nil,
	)

	return n, nil
}

func (n *Node) ID() uuid.UUID        { return n.id }
func (n *Node) InputChannels() int   { return n.inputChannels }
func (n *Node) OutputChannels() int  { return n.outputChannels }
func (n *Node) Bridge() *AudioBridge { return n.bridge }
func (n *Node) Running() bool        { return n.bridge.Running() }
func (n *Node) Queue() *ControlQueue { return n.queue }

// SetMessageCallback replaces the receiver of engine console text. A nil fn
// restores the default, which logs each message at info level.
func (n *Node) SetMessageCallback(fn MessageCallback) {
	if fn == nil {
		n.callback.Store(nil)
		return
	}
	n.callback.Store(&fn)
}

func (n *Node) dispatch(message string) {
	if fn := n.callback.Load(); fn != nil {
		(*fn)(message)
		return
	}
	n.logger.Info("engine message", "text", message)
}

func (n *Node) eng() engine.Engine { return n.src.Engine() }

// lock serializes control calls and rejects them after Destroy.
func (n *Node) lock(op string) error {
	n.mtx.Lock()
	if n.destroyed {
		n.mtx.Unlock()
		return engine.NewError(op, engine.ErrEngine, 0, engine.ErrClosed)
	}
	return nil
}

// SetOption adds an engine startup option. Options take effect at the next
// compile or reset.
func (n *Node) SetOption(option string) error {
	if err := n.lock("set option"); err != nil {
		return err
	}
	defer n.mtx.Unlock()

	if err := n.eng().SetOption(option); err != nil {
		return engine.NewError("set option "+option, engine.ErrEngine, 0, err)
	}
	return nil
}

func (n *Node) compile(op string, source string, compile func(string) error) error {
	if err := n.lock(op); err != nil {
		return err
	}
	defer n.mtx.Unlock()

	if err := n.eng().PrepareRealtime(); err != nil {
		return engine.NewError(op, engine.ErrEngine, 0, err)
	}

	if err := compile(source); err != nil {
		cerr := engine.NewError(op, engine.ErrCompile, 0, err)
		n.dispatch(cerr.Error())
		n.logger.Warn("compile failed", "op", op, "err", err)
		return cerr
	}

	n.compiled = true
	n.logger.Debug("compiled", "op", op, "bytes", len(source))
	return nil
}

// CompileProgram compiles orchestra code. On failure the error is also sent
// to the message callback and the engine keeps its last good program.
func (n *Node) CompileProgram(source string) error {
	return n.compile("compile program", source, n.eng().CompileProgram)
}

// CompileDocument compiles a complete document (orchestra, score, options).
func (n *Node) CompileDocument(source string) error {
	return n.compile("compile document", source, n.eng().CompileDocument)
}

// EvaluateCode compiles and runs code in the running engine and returns its
// result value.
func (n *Node) EvaluateCode(source string) (float64, error) {
	if err := n.lock("evaluate"); err != nil {
		return 0, err
	}
	defer n.mtx.Unlock()

	v, err := n.eng().Evaluate(source)
	if err != nil {
		cerr := engine.NewError("evaluate", engine.ErrCompile, 0, err)
		n.dispatch(cerr.Error())
		return 0, cerr
	}
	return v, nil
}

// ReadScore schedules score events.
func (n *Node) ReadScore(score string) error {
	if err := n.lock("read score"); err != nil {
		return err
	}
	defer n.mtx.Unlock()

	if err := n.eng().ReadScore(score); err != nil {
		return engine.NewError("read score", engine.ErrEngine, 0, err)
	}
	return nil
}

// SetControlChannel sets a named control channel.
func (n *Node) SetControlChannel(name string, value float64) error {
	if err := n.lock("set control channel"); err != nil {
		return err
	}
	defer n.mtx.Unlock()

	if n.queue != nil {
		return n.queue.PushControl(name, value)
	}
	n.eng().SetControlChannel(name, value)
	return nil
}

// SetStringChannel sets a named string channel.
func (n *Node) SetStringChannel(name, value string) error {
	if err := n.lock("set string channel"); err != nil {
		return err
	}
	defer n.mtx.Unlock()

	if n.queue != nil {
		return n.queue.PushString(name, value)
	}
	n.eng().SetStringChannel(name, value)
	return nil
}

// SendMidiMessage sends a MIDI channel message (status, data1, data2).
func (n *Node) SendMidiMessage(status, data1, data2 byte) error {
	if err := n.lock("midi"); err != nil {
		return err
	}
	defer n.mtx.Unlock()

	if n.queue != nil {
		return n.queue.PushMidi(status, data1, data2)
	}
	n.eng().PushMidiEvent(status, data1, data2)
	return nil
}

// Start begins processing. The first Start after a compile acquires the
// engine's block buffers; a Start after Stop resumes where processing
// paused.
func (n *Node) Start() error {
	if err := n.lock("start"); err != nil {
		return err
	}
	defer n.mtx.Unlock()

	if !n.compiled {
		return engine.NewError("start", engine.ErrEngineInit, 0, ErrNotCompiled)
	}
	if err := n.bridge.Start(); err != nil {
		n.logger.Error("start failed", "err", err)
		return err
	}

	n.logger.Info("node running")
	return nil
}

// Stop pauses processing; Process leaves output windows untouched until the
// next Start.
func (n *Node) Stop() {
	n.bridge.Stop()
	n.logger.Debug("node stopped")
}

// Reset stops processing and returns the engine to its pre-compile state.
// A program must be compiled again before the next Start.
func (n *Node) Reset() error {
	if err := n.lock("reset"); err != nil {
		return err
	}
	defer n.mtx.Unlock()

	n.bridge.Invalidate()
	n.compiled = false

	if err := n.src.Reset(); err != nil {
		return err
	}
	n.logger.Info("node reset")
	return nil
}

// Destroy stops processing and releases the engine. Later control calls
// fail with engine.ErrClosed.
func (n *Node) Destroy() error {
	n.mtx.Lock()
	defer n.mtx.Unlock()

	if n.destroyed {
		return nil
	}
	n.destroyed = true
	n.bridge.Invalidate()

	if err := n.src.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}
	n.logger.Info("node destroyed")
	return nil
}

// Process is the device callback; see AudioBridge.Process.
func (n *Node) Process(in, out [][]float32) {
	if n.queue != nil && n.bridge.Running() {
		n.queue.Drain(n.eng())
	}
	n.bridge.Process(in, out)
}
