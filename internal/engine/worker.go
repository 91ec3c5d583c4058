// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 MindustryJsMicrocontroller Authors

package engine

import (
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/fmoel/MindustryJsMicrocontroller/internal/scripting"
)

// work is the processor's only worker. It runs sessions one at a time,
// each on this goroutine, until Close.
func (e *Engine) work() {
	defer close(e.exited)
	defer e.recoverFatal()

	for {
		select {
		case <-e.quit:
			return
		case <-e.start:
			e.drive()
		}
	}
}

// drive runs sessions until none is pending.
func (e *Engine) drive() {
	for {
		s, gen, done, err := e.begin()
		if err != nil {
			e.report(err)
			return
		}
		if s == nil {
			return
		}

		err = s.Run()
		s.Close()
		if !e.end(s, gen, done, err) {
			return
		}
	}
}

// begin builds a session from the latest program, if a start is pending.
func (e *Engine) begin() (scripting.Runner, uint64, chan struct{}, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.pending || e.closed {
		return nil, 0, nil, nil
	}
	e.pending = false

	s, err := scripting.NewSession(e.program, scripting.Options{
		World:               e.world,
		Console:             e.console,
		Policy:              e.policy,
		Logger:              e.logger,
		InstructionsPerTick: e.config.InstructionsPerTick,
	})
	if err != nil {
		e.state = StateErrored
		e.errText = err.Error()
		e.broadcast()
		return nil, 0, nil, err
	}

	e.session = s
	e.sessionGen = e.generation
	e.sessionDone = make(chan struct{})
	e.broadcast()
	return s, e.generation, e.sessionDone, nil
}

// end records how a session finished and reports whether to run again.
// A session from an older generation was replaced or interrupted; its
// outcome is not the processor's state.
func (e *Engine) end(s scripting.Runner, gen uint64, done chan struct{}, err error) bool {
	e.mu.Lock()
	restart := false
	var failure error
	if gen == e.generation && !e.closed {
		e.line = s.Line()
		switch {
		case err == nil && e.config.RestartOnExit && !e.program.Empty():
			e.pending = true
			restart = true
		case err == nil, errors.Is(err, scripting.ErrInterrupted):
			e.state = StateStopped
		default:
			e.state = StateErrored
			e.errText = err.Error()
			failure = err
		}
	}
	e.mu.Unlock()

	// Reported before the session is dropped, so AwaitParked callers see it.
	if failure != nil {
		e.report(failure)
	}

	e.mu.Lock()
	e.session = nil
	e.sessionDone = nil
	close(done)
	e.broadcast()
	e.mu.Unlock()

	s.Gate().Notify()
	return restart
}

// report writes a script failure to the console and the log.
func (e *Engine) report(err error) {
	e.console.Error(err.Error())

	var panicErr *scripting.HostPanicError
	if errors.As(err, &panicErr) {
		e.logger.Error("host callback panicked", "name", e.config.Name, "panic", panicErr.Value)
		e.logger.Debug("host panic stack", "stack", panicErr.Stack)
		return
	}
	e.logger.Warn("script failed", "name", e.config.Name, "error", err)
}

// recoverFatal marks the processor non-functional if the worker itself dies.
func (e *Engine) recoverFatal() {
	r := recover()
	if r == nil {
		return
	}

	text := fmt.Sprintf("processor worker died: %v", r)
	e.mu.Lock()
	e.state = StateFatal
	e.errText = text
	e.pending = false
	e.session = nil
	if e.sessionDone != nil {
		close(e.sessionDone)
		e.sessionDone = nil
	}
	e.broadcast()
	e.mu.Unlock()

	e.console.Error(text)
	e.logger.Error("processor worker died", "name", e.config.Name, "panic", r, "stack", string(debug.Stack()))
}
