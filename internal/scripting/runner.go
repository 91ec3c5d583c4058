// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 MindustryJsMicrocontroller Authors

// Package scripting runs one transformed script on a fresh Goja runtime.
// It abstracts the underlying VM behind the Runner interface so the
// session controller never touches interpreter state directly.
package scripting

import (
	"errors"
	"fmt"

	"github.com/fmoel/MindustryJsMicrocontroller/internal/suspend"
)

var (
	// ErrInterrupted is the internal unwind signal of an aborted session.
	// It is never a script error.
	ErrInterrupted = errors.New("script interrupted")

	// ErrClosed is returned by Run on a session that was already closed.
	ErrClosed = errors.New("session closed")
)

// ScriptError represents an uncaught exception or a compile error in the
// script itself.
type ScriptError struct {
	Message string
}

func (e *ScriptError) Error() string {
	return e.Message
}

// HostPanicError is returned when a host callback panicked while the script
// was running. The worker survives it.
type HostPanicError struct {
	Value any
	Stack string
}

func (e *HostPanicError) Error() string {
	return fmt.Sprintf("host panic: %v", e.Value)
}

// Runner is the low-level VM abstraction for one run of one script.
//
// Run is called exactly once, on the worker goroutine, and blocks until the
// script completes, fails or is aborted. Every other method is safe to call
// from another goroutine while Run is in progress.
//
// It does NOT handle:
//   - Source transformation (see package transform)
//   - Reload, restart or error state (see package engine)
type Runner interface {
	// Run executes the program. It returns nil on completion, ErrInterrupted
	// on Abort, the Fail cause, *ScriptError or *HostPanicError.
	Run() error

	// Gate is the park/wake primitive the script parks on.
	Gate() *suspend.Gate

	// Abort unwinds the script at its next suspension point or instruction.
	Abort()

	// Fail is Abort with a cause that Run reports as its error.
	Fail(err error)

	// Line returns the last line checkpoint reached, 0 before the first.
	Line() int

	// Snapshot returns the script's enumerable globals.
	Snapshot() map[string]Value

	// Close drops the runtime. Must be called on the worker after Run.
	Close()
}

// Compile-time interface check
var _ Runner = (*Session)(nil)
