// SPDX-License-Identifier: EPL-2.0

package loopback

import "errors"

var (
	// ErrEmptyProgram is returned when a blank program is compiled.
	ErrEmptyProgram = errors.New("program is empty")

	// ErrNotCompiled is returned by Start before any program compiled.
	ErrNotCompiled = errors.New("no program compiled")

	// ErrInvalidOption is returned for an option with a malformed value.
	ErrInvalidOption = errors.New("invalid option value")

	// ErrSyntax is returned by Evaluate for code it does not understand.
	ErrSyntax = errors.New("syntax error")

	// ErrDestroyed is returned by every call after Destroy.
	ErrDestroyed = errors.New("engine destroyed")
)
