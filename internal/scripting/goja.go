// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 MindustryJsMicrocontroller Authors

package scripting

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dop251/goja"

	"github.com/fmoel/MindustryJsMicrocontroller/internal/console"
	"github.com/fmoel/MindustryJsMicrocontroller/internal/jsapi"
	"github.com/fmoel/MindustryJsMicrocontroller/internal/sandbox"
	"github.com/fmoel/MindustryJsMicrocontroller/internal/suspend"
	"github.com/fmoel/MindustryJsMicrocontroller/internal/transform"
	"github.com/fmoel/MindustryJsMicrocontroller/internal/world"
)

// Options configures a Session.
type Options struct {
	World               world.World
	Console             *console.Console
	Policy              *sandbox.Policy
	Logger              *slog.Logger
	InstructionsPerTick int

	// Clock replaces time.Now for sleep; tests only.
	Clock func() time.Time
}

// Session implements Runner using the Goja JavaScript interpreter.
// One Session is one run: it is never restarted.
type Session struct {
	gate   *suspend.Gate
	ctx    context.Context
	cancel context.CancelCauseFunc
	line   atomic.Int64

	mu      sync.Mutex
	vm      *goja.Runtime
	api     *jsapi.API
	program *goja.Program
	last    map[string]Value

	// descriptor is Object.getOwnPropertyDescriptor, captured before the
	// script can replace it.
	descriptor goja.Callable
}

// NewSession compiles a transformed program onto a new runtime with the
// command surface registered. Compile errors are returned as *ScriptError.
func NewSession(res transform.Result, opts Options) (*Session, error) {
	if opts.World == nil {
		return nil, errors.New("session requires a world")
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	program, err := goja.Compile("script.js", res.Code, false)
	if err != nil {
		return nil, &ScriptError{Message: err.Error()}
	}

	s := &Session{
		gate:    suspend.New(suspend.WithClock(opts.Clock)),
		program: program,
	}
	s.ctx, s.cancel = context.WithCancelCause(context.Background())

	// Create Goja runtime
	vm := goja.New()
	api := jsapi.NewAPI(opts.World, s, opts.Console)
	api.SetPolicy(opts.Policy)
	api.SetLogger(opts.Logger)
	api.SetInstructionsPerTick(opts.InstructionsPerTick)
	if err := api.RegisterAll(vm); err != nil {
		return nil, fmt.Errorf("failed to register command surface: %w", err)
	}

	global := vm.GlobalObject()
	hook := func(name string, fn func(goja.FunctionCall) goja.Value) error {
		return global.DefineDataProperty(name, vm.ToValue(fn), goja.FLAG_FALSE, goja.FLAG_FALSE, goja.FLAG_FALSE)
	}
	if err := hook(transform.Checkpoint, s.jsYield); err != nil {
		return nil, fmt.Errorf("failed to register %s: %w", transform.Checkpoint, err)
	}
	if err := hook(transform.LineHook, s.jsLine); err != nil {
		return nil, fmt.Errorf("failed to register %s: %w", transform.LineHook, err)
	}
	if err := global.Delete("eval"); err != nil {
		return nil, fmt.Errorf("failed to remove eval: %w", err)
	}

	descriptor, ok := goja.AssertFunction(vm.Get("Object").ToObject(vm).Get("getOwnPropertyDescriptor"))
	if !ok {
		return nil, errors.New("runtime has no Object.getOwnPropertyDescriptor")
	}

	s.vm = vm
	s.api = api
	s.descriptor = descriptor
	return s, nil
}

// Run executes the program on the calling goroutine.
func (s *Session) Run() (err error) {
	s.mu.Lock()
	vm, program := s.vm, s.program
	s.mu.Unlock()
	if vm == nil {
		return ErrClosed
	}

	defer func() {
		if r := recover(); r != nil {
			err = &HostPanicError{Value: r, Stack: string(debug.Stack())}
		}
	}()

	_, err = vm.RunProgram(program)
	return s.classify(err)
}

func (s *Session) classify(err error) error {
	if err == nil {
		return nil
	}

	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		if cause := context.Cause(s.ctx); cause != nil && !errors.Is(cause, context.Canceled) {
			return cause
		}
		return ErrInterrupted
	}

	var jsErr *goja.Exception
	if errors.As(err, &jsErr) {
		// Use String() to get proper error message including stack trace info
		return &ScriptError{Message: jsErr.String()}
	}

	var syntaxErr *goja.CompilerSyntaxError
	if errors.As(err, &syntaxErr) {
		return &ScriptError{Message: syntaxErr.Error()}
	}
	return err
}

// Gate returns the gate the script parks on.
func (s *Session) Gate() *suspend.Gate {
	return s.gate
}

// Yield implements jsapi.Scheduler. It parks until the next step and reports
// false when the session is being aborted; the runtime is then interrupted
// so the script unwinds as soon as control is back in JavaScript.
func (s *Session) Yield() bool {
	if err := s.gate.Park(s.ctx); err != nil {
		s.interrupt(context.Cause(s.ctx))
		return false
	}
	return true
}

// Sleep implements jsapi.Scheduler. Releases are refused until d has passed.
func (s *Session) Sleep(d time.Duration) bool {
	s.gate.HoldFor(d)
	return s.Yield()
}

// Abort stops the script. Safe to call from another goroutine, before Run,
// during Run and after Run.
func (s *Session) Abort() {
	s.Fail(ErrInterrupted)
}

// Fail stops the script and makes Run return err. The first cause wins.
func (s *Session) Fail(err error) {
	s.cancel(err)
	s.interrupt(context.Cause(s.ctx))
}

func (s *Session) interrupt(v any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.vm != nil {
		s.vm.Interrupt(v)
	}
}

// Line returns the last line checkpoint reached.
func (s *Session) Line() int {
	return int(s.line.Load())
}

// Snapshot returns the script's enumerable globals. While the worker is
// parked the snapshot is taken there; otherwise the last one taken is
// returned. It never blocks on a running script.
func (s *Session) Snapshot() map[string]Value {
	var snap map[string]Value
	if s.gate.Do(func() { snap = s.collect() }) && snap != nil {
		s.mu.Lock()
		s.last = snap
		s.mu.Unlock()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]Value, len(s.last))
	maps.Copy(out, s.last)
	return out
}

// Close drops the runtime and the command surface.
func (s *Session) Close() {
	s.cancel(ErrClosed)
	s.mu.Lock()
	s.vm = nil
	s.api = nil
	s.program = nil
	s.descriptor = nil
	s.mu.Unlock()
}

// jsYield is the loop checkpoint.
// __mcu_yield()
func (s *Session) jsYield(call goja.FunctionCall) goja.Value {
	s.Yield()
	return goja.Undefined()
}

// jsLine is the line checkpoint.
// __mcu_line(n)
func (s *Session) jsLine(call goja.FunctionCall) goja.Value {
	s.line.Store(call.Argument(0).ToInteger())
	s.Yield()
	return goja.Undefined()
}
