// SPDX-License-Identifier: EPL-2.0

//go:build csound

package csound

/*
#cgo linux pkg-config: csound64
#cgo darwin LDFLAGS: -framework CsoundLib64
#cgo windows LDFLAGS: -lcsound64

#include <csound/csound.h>
#include <stdarg.h>
#include <stdint.h>
#include <stdio.h>
#include <stdlib.h>

extern void goMessage(CSOUND *cs, int attr, char *msg);
extern int goMidiRead(CSOUND *cs, unsigned char *buf, int nbytes);

static void bbMessage(CSOUND *cs, int attr, const char *format, va_list args) {
	char buf[1024];
	vsnprintf(buf, sizeof(buf), format, args);
	goMessage(cs, attr, buf);
}

static int bbMidiOpen(CSOUND *cs, void **userData, const char *dev) {
	*userData = NULL;
	return 0;
}

static int bbMidiRead(CSOUND *cs, void *userData, unsigned char *buf, int nbytes) {
	return goMidiRead(cs, buf, nbytes);
}

static int bbMidiClose(CSOUND *cs, void *userData) {
	return 0;
}

static CSOUND *bbCreate(uintptr_t id) {
	CSOUND *cs = csoundCreate((void *)id);
	if (cs == NULL) {
		return NULL;
	}
	csoundSetMessageCallback(cs, bbMessage);
	csoundSetHostImplementedAudioIO(cs, 1, 0);
	csoundSetHostImplementedMIDIIO(cs, 1);
	csoundSetExternalMidiInOpenCallback(cs, bbMidiOpen);
	csoundSetExternalMidiReadCallback(cs, bbMidiRead);
	csoundSetExternalMidiInCloseCallback(cs, bbMidiClose);
	return cs;
}

static uintptr_t bbID(CSOUND *cs) {
	return (uintptr_t)csoundGetHostData(cs);
}
*/
import "C"

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/ik5/blockbridge/engine"
)

const midiBacklog = 1024

func init() {
	engine.Register("csound", func() (engine.Engine, error) { return New() })
}

// ErrEvaluate is returned when csoundEvalCode fails to compile its input.
// The compiler's diagnostics arrive through the message handler.
var ErrEvaluate = errors.New("csound: evaluation failed")

// engines maps host-data ids to instances. The callbacks run on the audio
// thread, so lookups must not take a lock a control goroutine can hold.
var (
	engines sync.Map // uintptr -> *Engine
	nextID  atomic.Uintptr
)

func register(e *Engine) uintptr {
	id := nextID.Add(1)
	engines.Store(id, e)
	return id
}

func unregister(id uintptr) { engines.Delete(id) }

func lookup(id uintptr) *Engine {
	v, ok := engines.Load(id)
	if !ok {
		return nil
	}
	return v.(*Engine)
}

func find(cs *C.CSOUND) *Engine { return lookup(uintptr(C.bbID(cs))) }

// Engine is a Csound instance.
type Engine struct {
	id uintptr
	cs *C.CSOUND

	in, out []float64

	midi    chan byte
	handler atomic.Pointer[func(string)]
}

// New creates a Csound instance with host-implemented audio and MIDI.
func New() (*Engine, error) {
	e := &Engine{midi: make(chan byte, midiBacklog)}
	e.id = register(e)

	e.cs = C.bbCreate(C.uintptr_t(e.id))
	if e.cs == nil {
		unregister(e.id)
		return nil, errors.New("csoundCreate returned NULL")
	}
	return e, nil
}

//export goMessage
func goMessage(cs *C.CSOUND, attr C.int, msg *C.char) {
	e := find(cs)
	if e == nil {
		return
	}

	if fn := e.handler.Load(); fn != nil {
		(*fn)(strings.TrimRight(C.GoString(msg), "\n"))
	}
}

//export goMidiRead
func goMidiRead(cs *C.CSOUND, buf *C.uchar, nbytes C.int) C.int {
	e := find(cs)
	if e == nil || nbytes <= 0 {
		return 0
	}

	dst := unsafe.Slice((*byte)(unsafe.Pointer(buf)), int(nbytes))
	n := 0
	for n < len(dst) {
		select {
		case b := <-e.midi:
			dst[n] = b
			n++
		default:
			return C.int(n)
		}
	}
	return C.int(n)
}

func (e *Engine) SetMessageHandler(fn func(message string)) {
	if fn == nil {
		e.handler.Store(nil)
		return
	}
	e.handler.Store(&fn)
}

func withCString[T any](s string, fn func(*C.char) T) T {
	cs := C.CString(s)
	defer C.free(unsafe.Pointer(cs))
	return fn(cs)
}

func check(op string, code C.int) error {
	if code != 0 {
		return fmt.Errorf("%s returned %d", op, int(code))
	}
	return nil
}

func (e *Engine) SetOption(option string) error {
	return check("csoundSetOption", withCString(option, func(s *C.char) C.int {
		return C.csoundSetOption(e.cs, s)
	}))
}

// PrepareRealtime is a no-op: host audio and MIDI are configured at
// creation and survive csoundReset.
func (e *Engine) PrepareRealtime() error { return nil }

func (e *Engine) CompileProgram(source string) error {
	return check("csoundCompileOrc", withCString(source, func(s *C.char) C.int {
		return C.csoundCompileOrc(e.cs, s)
	}))
}

func (e *Engine) CompileDocument(source string) error {
	return check("csoundCompileCsdText", withCString(source, func(s *C.char) C.int {
		return C.csoundCompileCsdText(e.cs, s)
	}))
}

// Evaluate compiles code and returns the value of its return statement, or
// 0 when there is none. csoundEvalCode reports a failed compile as NaN.
func (e *Engine) Evaluate(code string) (float64, error) {
	v := float64(withCString(code, func(s *C.char) C.MYFLT {
		return C.csoundEvalCode(e.cs, s)
	}))
	if math.IsNaN(v) {
		return 0, ErrEvaluate
	}
	return v, nil
}

func (e *Engine) ReadScore(score string) error {
	return check("csoundReadScore", withCString(score, func(s *C.char) C.int {
		return C.csoundReadScore(e.cs, s)
	}))
}

func (e *Engine) Start() error {
	if err := check("csoundStart", C.csoundStart(e.cs)); err != nil {
		return err
	}

	ksmps := e.BlockLength()
	e.in = unsafe.Slice((*float64)(unsafe.Pointer(C.csoundGetSpin(e.cs))), ksmps*e.InputChannels())
	e.out = unsafe.Slice((*float64)(unsafe.Pointer(C.csoundGetSpout(e.cs))), ksmps*e.OutputChannels())
	return nil
}

func (e *Engine) BlockLength() int       { return int(C.csoundGetKsmps(e.cs)) }
func (e *Engine) InputBlock() []float64  { return e.in }
func (e *Engine) OutputBlock() []float64 { return e.out }
func (e *Engine) FullScale() float64     { return float64(C.csoundGet0dBFS(e.cs)) }
func (e *Engine) PerformBlock() int      { return int(C.csoundPerformKsmps(e.cs)) }
func (e *Engine) InputChannels() int     { return int(C.csoundGetNchnlsInput(e.cs)) }
func (e *Engine) OutputChannels() int    { return int(C.csoundGetNchnls(e.cs)) }

func (e *Engine) SetControlChannel(name string, value float64) {
	withCString(name, func(s *C.char) struct{} {
		C.csoundSetControlChannel(e.cs, s, C.MYFLT(value))
		return struct{}{}
	})
}

func (e *Engine) SetStringChannel(name string, value string) {
	withCString(name, func(n *C.char) struct{} {
		return withCString(value, func(v *C.char) struct{} {
			C.csoundSetStringChannel(e.cs, n, v)
			return struct{}{}
		})
	})
}

// PushMidiEvent queues a message for Csound's MIDI reader. Bytes beyond the
// backlog are dropped.
func (e *Engine) PushMidiEvent(status, data1, data2 byte) {
	if len(e.midi)+3 > cap(e.midi) {
		return
	}
	for _, b := range [3]byte{status, data1, data2} {
		select {
		case e.midi <- b:
		default:
			return
		}
	}
}

func (e *Engine) Reset() {
	C.csoundReset(e.cs)
	e.in, e.out = nil, nil
}

func (e *Engine) Destroy() {
	if e.cs == nil {
		return
	}
	C.csoundDestroy(e.cs)
	e.cs = nil
	e.in, e.out = nil, nil
	unregister(e.id)
}
