// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrEngineInit indicates the engine could not be constructed or prepared.
	ErrEngineInit = errors.New("engine could not be initialized")

	// ErrCompile indicates a program or code fragment was rejected.
	ErrCompile = errors.New("program failed to compile")

	// ErrEngineRuntime indicates the engine reported a performance error.
	ErrEngineRuntime = errors.New("engine performance error")

	// ErrEngine is the generic failure of a delegated engine call.
	ErrEngine = errors.New("engine call failed")

	// ErrClosed indicates the engine was already destroyed.
	ErrClosed = errors.New("engine is closed")

	// ErrUnknownEngine indicates no factory is registered under a name.
	ErrUnknownEngine = errors.New("unknown engine")
)

// Error describes a failed engine operation.
type Error struct {
	// Op is the operation that failed, e.g. "compile" or "start".
	Op string
	// Code is the status code returned by the engine, when it returned one.
	Code int
	// Kind is one of the package sentinel errors.
	Kind error
	// Err is the underlying cause, if any.
	Err error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("engine: %s: %v", e.Op, e.Kind)
	if e.Code != 0 {
		msg += fmt.Sprintf(" (code %d)", e.Code)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// NewError builds an *Error of the given kind.
func NewError(op string, kind error, code int, cause error) *Error {
	return &Error{Op: op, Code: code, Kind: kind, Err: cause}
}
