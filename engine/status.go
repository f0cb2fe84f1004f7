// SPDX-License-Identifier: EPL-2.0

package engine

// Status is the outcome of advancing the engine by one block.
type Status int

const (
	// StatusReady means a fresh block of output is available.
	StatusReady Status = iota
	// StatusExhausted means the engine has no more material to play.
	StatusExhausted
	// StatusFailed means the engine reported a performance error.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusReady:
		return "ready"
	case StatusExhausted:
		return "exhausted"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// StatusFromCode maps a PerformBlock return code to a Status: zero is Ready,
// a positive code marks the end of the program and a negative code an error.
func StatusFromCode(code int) Status {
	switch {
	case code == 0:
		return StatusReady
	case code > 0:
		return StatusExhausted
	default:
		return StatusFailed
	}
}
