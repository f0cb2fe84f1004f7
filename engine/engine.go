// SPDX-License-Identifier: EPL-2.0

package engine

// Engine is a block-oriented synthesis engine.
//
// The Engine value is the opaque handle: it is owned by exactly one
// BlockSource and released with Destroy. Block buffers returned by
// InputBlock/OutputBlock are interleaved, sized BlockLength()*channels and
// overwritten in place by PerformBlock; they stay valid until Reset or
// Destroy.
type Engine interface {
	// SetOption accumulates a startup option (flag) before PrepareRealtime.
	SetOption(option string) error
	// PrepareRealtime readies the engine for host-driven performance. It is
	// called before every compile and after every reset.
	PrepareRealtime() error
	// CompileProgram compiles orchestra code.
	CompileProgram(source string) error
	// CompileDocument compiles a complete document holding orchestra, score
	// and options.
	CompileDocument(source string) error
	// Evaluate compiles and runs code, returning its result value.
	Evaluate(code string) (float64, error)
	// ReadScore schedules score events.
	ReadScore(score string) error
	// Start begins performance; block buffers become available afterwards.
	Start() error

	BlockLength() int
	InputBlock() []float64
	OutputBlock() []float64
	// FullScale is the amplitude the engine treats as 0dBFS.
	FullScale() float64
	// PerformBlock renders one block: 0 on success, positive at the end of
	// the program, negative on error.
	PerformBlock() int
	InputChannels() int
	OutputChannels() int

	SetControlChannel(name string, value float64)
	SetStringChannel(name string, value string)
	PushMidiEvent(status, data1, data2 byte)
	// SetMessageHandler routes engine console text to fn.
	SetMessageHandler(fn func(message string))

	Reset()
	Destroy()
}
