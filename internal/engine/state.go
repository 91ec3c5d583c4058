// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 MindustryJsMicrocontroller Authors

package engine

import (
	"github.com/fmoel/MindustryJsMicrocontroller/internal/console"
)

// State is the lifecycle state of a processor.
type State int

const (
	// StateUninitialized means no source was ever loaded.
	StateUninitialized State = iota
	// StateRunning means a session is executing, parked, or about to start.
	StateRunning
	// StateErrored means the last run failed; see LastErrorText.
	StateErrored
	// StateStopped means nothing is running until the next Load.
	StateStopped
	// StateFatal means the worker itself died. Loads are ignored.
	StateFatal
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateRunning:
		return "running"
	case StateErrored:
		return "errored"
	case StateStopped:
		return "stopped"
	case StateFatal:
		return "fatal"
	}
	return "unknown"
}

// Status is the block status a host shows for the processor.
type Status int

const (
	StatusActive Status = iota
	StatusNoOutput
	StatusNoInput
	StatusFatal
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusNoOutput:
		return "noOutput"
	case StatusNoInput:
		return "noInput"
	case StatusFatal:
		return "fatal"
	}
	return "unknown"
}

// State returns the lifecycle state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Status maps the state to a host block status.
func (e *Engine) Status() Status {
	switch e.State() {
	case StateFatal:
		return StatusFatal
	case StateErrored:
		return StatusNoInput
	case StateRunning:
		return StatusActive
	}
	return StatusNoOutput
}

// HasErrors reports whether the last run or load failed.
func (e *Engine) HasErrors() bool {
	s := e.State()
	return s == StateErrored || s == StateFatal
}

// LastErrorText returns the error of the last failed run or load.
func (e *Engine) LastErrorText() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.errText
}

// Code returns the loaded script as the user wrote it.
func (e *Engine) Code() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.source
}

// Line returns the line the live script last reached, or where the last
// run ended.
func (e *Engine) Line() int {
	e.mu.Lock()
	s, line := e.liveLocked(), e.line
	e.mu.Unlock()
	if s != nil {
		return s.Line()
	}
	return line
}

// Console returns the console the script writes to.
func (e *Engine) Console() *console.Console {
	return e.console
}

// Name returns the configured processor name.
func (e *Engine) Name() string {
	return e.config.Name
}
