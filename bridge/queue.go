// SPDX-License-Identifier: EPL-2.0

package bridge

import (
	"sync"
	"sync/atomic"

	"github.com/ik5/blockbridge/engine"
)

type messageKind uint8

const (
	kindControl messageKind = iota + 1
	kindString
	kindMidi
)

type controlMessage struct {
	kind  messageKind
	name  string
	value float64
	text  string
	midi  [3]byte
}

// ControlQueue carries control-channel, string-channel and MIDI updates from
// control goroutines to the audio goroutine.
//
// The consumer side (Drain) is lock-free and never allocates. Producers are
// serialized with a mutex that the consumer never takes.
type ControlQueue struct {
	buf  []controlMessage
	mask uint64

	head atomic.Uint64 // next slot to read, owned by the consumer
	tail atomic.Uint64 // next slot to write, owned by producers

	mtx sync.Mutex
}

// NewControlQueue creates a queue holding at least capacity messages.
// Capacity is rounded up to a power of 2.
func NewControlQueue(capacity int) *ControlQueue {
	size := 1
	for size < capacity {
		size <<= 1
	}

	return &ControlQueue{
		buf:  make([]controlMessage, size),
		mask: uint64(size - 1),
	}
}

// Cap returns the number of slots.
func (q *ControlQueue) Cap() int { return len(q.buf) }

// Len returns the number of pending messages.
func (q *ControlQueue) Len() int {
	return int(q.tail.Load() - q.head.Load())
}

func (q *ControlQueue) push(m controlMessage) error {
	q.mtx.Lock()
	defer q.mtx.Unlock()

	tail := q.tail.Load()
	if tail-q.head.Load() == uint64(len(q.buf)) {
		return ErrQueueFull
	}

	q.buf[tail&q.mask] = m
	q.tail.Store(tail + 1)
	return nil
}

// PushControl queues a control-channel update.
func (q *ControlQueue) PushControl(name string, value float64) error {
	return q.push(controlMessage{kind: kindControl, name: name, value: value})
}

// PushString queues a string-channel update.
func (q *ControlQueue) PushString(name, value string) error {
	return q.push(controlMessage{kind: kindString, name: name, text: value})
}

// PushMidi queues a MIDI channel message.
func (q *ControlQueue) PushMidi(status, data1, data2 byte) error {
	return q.push(controlMessage{kind: kindMidi, midi: [3]byte{status, data1, data2}})
}

// Drain applies every pending message to e in arrival order and returns how
// many were applied. Only the audio goroutine may call Drain.
func (q *ControlQueue) Drain(e engine.Engine) int {
	head := q.head.Load()
	tail := q.tail.Load()
	n := int(tail - head)

	for ; head != tail; head++ {
		m := &q.buf[head&q.mask]
		switch m.kind {
		case kindControl:
			e.SetControlChannel(m.name, m.value)
		case kindString:
			e.SetStringChannel(m.name, m.text)
		case kindMidi:
			e.PushMidiEvent(m.midi[0], m.midi[1], m.midi[2])
		}
		*m = controlMessage{}
	}

	q.head.Store(head)
	return n
}
