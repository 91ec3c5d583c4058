// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 MindustryJsMicrocontroller Authors

// Package engine provides the session controller of one processor,
// independent of any UI. It owns a single worker goroutine that runs one
// script session at a time, and turns external load, step and interrupt
// requests into session lifecycle changes.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fmoel/MindustryJsMicrocontroller/internal/console"
	"github.com/fmoel/MindustryJsMicrocontroller/internal/sandbox"
	"github.com/fmoel/MindustryJsMicrocontroller/internal/scripting"
	"github.com/fmoel/MindustryJsMicrocontroller/internal/transform"
	"github.com/fmoel/MindustryJsMicrocontroller/internal/util"
	"github.com/fmoel/MindustryJsMicrocontroller/internal/world"
)

// Engine controls the script of one processor.
type Engine struct {
	world   world.World
	config  util.Config
	console *console.Console
	policy  *sandbox.Policy
	logger  *slog.Logger

	start  chan struct{}
	quit   chan struct{}
	exited chan struct{}

	// mu guards everything below. Program swap and session creation both
	// happen under it, so a session is always built from the latest load.
	mu          sync.Mutex
	source      string
	program     transform.Result
	generation  uint64
	pending     bool
	session     scripting.Runner
	sessionGen  uint64
	sessionDone chan struct{}
	changed     chan struct{}
	state       State
	errText     string
	line        int
	closed      bool

	closeOnce sync.Once
}

// EngineOption is a functional option for configuring the Engine
type EngineOption func(*Engine) error

// New creates an Engine for the processor at the center of w and starts its
// worker. The engine is uninitialized until the first Load.
func New(w world.World, opts ...EngineOption) (*Engine, error) {
	if w == nil {
		return nil, errors.New("engine requires a world")
	}
	e := &Engine{
		world:   w,
		config:  util.DefaultConfig(),
		policy:  sandbox.Default,
		logger:  util.Logger,
		start:   make(chan struct{}, 1),
		quit:    make(chan struct{}),
		exited:  make(chan struct{}),
		changed: make(chan struct{}),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	if e.console == nil {
		e.console = console.New(e.config.LogLimit)
	}

	go e.work()
	return e, nil
}

// WithConfig sets the processor configuration
func WithConfig(cfg util.Config) EngineOption {
	return func(e *Engine) error {
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid engine config: %w", err)
		}
		e.config = cfg
		return nil
	}
}

// WithConsole sets the console scripts write to
func WithConsole(c *console.Console) EngineOption {
	return func(e *Engine) error {
		e.console = c
		return nil
	}
}

// WithPolicy sets the sandbox policy for host values
func WithPolicy(p *sandbox.Policy) EngineOption {
	return func(e *Engine) error {
		if p == nil {
			return errors.New("nil sandbox policy")
		}
		e.policy = p
		return nil
	}
}

// WithLogger sets the structured logger
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) error {
		if l != nil {
			e.logger = l
		}
		return nil
	}
}

// Load replaces the script and restarts the processor with it. A live
// session is interrupted first; see the teardown config for how long Load
// waits for it. Source that does not parse loads an empty program and leaves
// the engine errored.
func (e *Engine) Load(src string) {
	res, terr := transform.Transform(src)
	if terr != nil {
		res = transform.Result{Source: src}
	}

	e.mu.Lock()
	if e.closed || e.state == StateFatal {
		e.mu.Unlock()
		e.logger.Warn("load ignored", "name", e.config.Name, "state", e.State())
		return
	}
	e.source = src
	e.program = res
	e.generation++
	e.line = 0
	if terr != nil {
		e.pending = false
		e.state = StateErrored
		e.errText = terr.Error()
	} else {
		e.pending = true
		e.state = StateRunning
		e.errText = ""
	}
	old, done := e.session, e.sessionDone
	e.broadcast()
	e.mu.Unlock()

	e.console.Clear()
	if terr != nil {
		e.console.Error(terr.Error())
		e.logger.Warn("script rejected", "name", e.config.Name, "error", terr)
	}

	if old != nil {
		e.teardown(old, done)
	}
	if terr == nil {
		e.logger.Debug("script loaded", "name", e.config.Name, "loops", res.Loops, "lines", res.Lines)
		select {
		case e.start <- struct{}{}:
		default:
		}
	}
}

// teardown interrupts a session and waits for the worker to drop it.
func (e *Engine) teardown(s scripting.Runner, done <-chan struct{}) {
	s.Abort()
	if e.config.Teardown == util.TeardownSync {
		<-done
		return
	}

	timer := time.NewTimer(e.config.TeardownTimeout)
	defer timer.Stop()
	select {
	case <-done:
	case <-timer.C:
		e.logger.Warn("previous session still unwinding", "name", e.config.Name, "timeout", e.config.TeardownTimeout)
	}
}

// Step lets the script advance by one unit of progress. It reports whether
// the script was released; it is a no-op with no live session, while the
// script is running, or while a sleep has not elapsed.
func (e *Engine) Step() bool {
	s := e.current()
	if s == nil {
		return false
	}

	g := s.Gate()
	if !g.Parked() {
		if e.config.RunawayTimeout > 0 && time.Since(g.LastRelease()) > e.config.RunawayTimeout {
			e.logger.Warn("script ran away", "name", e.config.Name, "timeout", e.config.RunawayTimeout)
			s.Fail(ErrRunaway)
		}
		return false
	}
	return g.Release()
}

// Tick issues up to instructions_per_tick steps, waiting up to step_settle
// after each for the script to park again. It returns the steps taken.
func (e *Engine) Tick() int {
	steps := 0
	for range e.config.InstructionsPerTick {
		s := e.current()
		if s == nil {
			break
		}
		parked := s.Gate().Watch()
		if !e.Step() {
			break
		}
		steps++

		timer := time.NewTimer(e.config.StepSettle)
		select {
		case <-parked:
			timer.Stop()
		case <-timer.C:
			return steps
		}
	}
	return steps
}

// AwaitParked blocks until the worker is parked or has no live session to
// run.
func (e *Engine) AwaitParked(ctx context.Context) error {
	for {
		e.mu.Lock()
		s, pending, changed := e.liveLocked(), e.pending, e.changed
		e.mu.Unlock()

		var parked <-chan struct{}
		if s != nil {
			parked = s.Gate().Watch()
			if s.Gate().Parked() {
				return nil
			}
		} else if !pending {
			return nil
		}

		select {
		case <-parked:
		case <-changed:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Interrupt stops the script. Nothing runs until the next Load.
func (e *Engine) Interrupt() {
	e.mu.Lock()
	e.generation++
	e.pending = false
	if e.state == StateRunning {
		e.state = StateStopped
	}
	s := e.session
	e.broadcast()
	e.mu.Unlock()

	if s != nil {
		s.Abort()
	}
}

// Snapshot returns the live script's globals, or an empty map when no
// session is alive.
func (e *Engine) Snapshot() map[string]scripting.Value {
	s := e.current()
	if s == nil {
		return map[string]scripting.Value{}
	}
	return s.Snapshot()
}

// Close interrupts the script and stops the worker.
func (e *Engine) Close() {
	e.closeOnce.Do(func() {
		e.mu.Lock()
		e.closed = true
		e.pending = false
		e.generation++
		if e.state == StateRunning {
			e.state = StateStopped
		}
		s := e.session
		e.broadcast()
		e.mu.Unlock()

		if s != nil {
			s.Abort()
		}
		close(e.quit)
		<-e.exited
	})
}

// current returns the live session, or nil.
func (e *Engine) current() scripting.Runner {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.liveLocked()
}

// liveLocked returns the session unless it was superseded by a later load
// or interrupt and is only unwinding. Must hold mu.
func (e *Engine) liveLocked() scripting.Runner {
	if e.session == nil || e.sessionGen != e.generation {
		return nil
	}
	return e.session
}

// broadcast wakes AwaitParked callers. Must hold mu.
func (e *Engine) broadcast() {
	close(e.changed)
	e.changed = make(chan struct{})
}
