// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 MindustryJsMicrocontroller Authors

// Package jsapi provides the JavaScript command surface of a processor.
//
// This package exposes the host world to scripts running in the Goja runtime.
// Every host object is a goja DynamicObject, so each member access passes
// through the sandbox policy. Functions are organized into files:
//   - api.go: Core API struct, registration, the expose gate
//   - object.go: Sandboxed host object
//   - target.go: Operations shared by buildings and units
//   - unit.go: Unit control and locate
//   - cpu.go: The processor itself (links, bind, sleep, print)
//   - canvas.go: Display drawing
//   - console.go: console.log/warn/error/clear
//   - enums.go: RadarTarget, RadarSort, BlockFlag, UnitControl
//   - helpers.go: Type conversion utilities
package jsapi

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/dop251/goja"

	"github.com/fmoel/MindustryJsMicrocontroller/internal/console"
	"github.com/fmoel/MindustryJsMicrocontroller/internal/sandbox"
	"github.com/fmoel/MindustryJsMicrocontroller/internal/world"
)

// Scheduler hands control back to the host. Yield parks until the next step
// and reports false when the script is being aborted, in which case the
// caller must not touch the world.
type Scheduler interface {
	Yield() bool
	Sleep(d time.Duration) bool
}

// API provides JavaScript bindings for one processor.
type API struct {
	world   world.World
	sched   Scheduler
	console *console.Console
	policy  *sandbox.Policy
	logger  *slog.Logger
	runtime *goja.Runtime

	instructionsPerTick int
	cpu                 *CPU
}

// NewAPI creates a new JavaScript API instance.
func NewAPI(w world.World, sched Scheduler, con *console.Console) *API {
	if con == nil {
		con = console.New(console.DefaultLimit)
	}
	return &API{
		world:               w,
		sched:               sched,
		console:             con,
		policy:              sandbox.Default,
		logger:              slog.New(slog.NewTextHandler(io.Discard, nil)),
		instructionsPerTick: 1,
	}
}

// SetPolicy replaces the sandbox policy. Must be called before RegisterAll.
func (a *API) SetPolicy(p *sandbox.Policy) {
	if p != nil {
		a.policy = p
	}
}

// SetLogger sets the structured logger for sandbox diagnostics.
func (a *API) SetLogger(l *slog.Logger) {
	if l != nil {
		a.logger = l
	}
}

// SetInstructionsPerTick sets the value reported by cpu.instructionsPerTick.
func (a *API) SetInstructionsPerTick(n int) {
	a.instructionsPerTick = n
}

// Console returns the console scripts write to.
func (a *API) Console() *console.Console {
	return a.console
}

// RegisterAll registers the command surface on the given Goja runtime.
func (a *API) RegisterAll(vm *goja.Runtime) error {
	a.runtime = vm
	a.cpu = newCPU(a)

	// Not enumerable, so snapshots list only what the script defined.
	set := func(name string, v goja.Value) error {
		return vm.GlobalObject().DefineDataProperty(name, v, goja.FLAG_FALSE, goja.FLAG_FALSE, goja.FLAG_FALSE)
	}

	if err := set("cpu", a.cpu.object()); err != nil {
		return fmt.Errorf("failed to register cpu: %w", err)
	}
	if err := set("console", newConsole(a).object()); err != nil {
		return fmt.Errorf("failed to register console: %w", err)
	}
	for _, e := range newEnums(a) {
		if err := set(e.Name, e.object()); err != nil {
			return fmt.Errorf("failed to register %s: %w", e.Name, err)
		}
	}
	return nil
}

// yield parks before a host-visible effect.
func (a *API) yield() bool {
	if a.sched == nil {
		return true
	}
	return a.sched.Yield()
}

// expose is the single gate for Go values entering the script. Host
// entities become wrappers; anything else must pass the sandbox policy.
func (a *API) expose(v any) goja.Value {
	switch v := v.(type) {
	case nil:
		return goja.Null()
	case goja.Value:
		return v
	case world.Entity:
		if !world.Alive(v) {
			return goja.Null()
		}
		if v.Kind().IsUnit() {
			return newUnit(a, v).object()
		}
		return newBuilding(a, v).object()
	case wrapper:
		return v.object()
	}

	if !a.policy.Allows(v) {
		a.deny(v, "")
		return goja.Undefined()
	}
	return a.runtime.ToValue(v)
}

// deny records one refused access. It is not an exception.
func (a *API) deny(v any, member string) {
	name := sandbox.TypeName(v)
	if member != "" {
		name += "." + member
	}
	a.console.Warn("access denied: " + name)
	a.logger.Warn("sandbox denied access", "type", sandbox.TypeName(v), "member", member)
}

// result builds a plain JS object from key/value pairs of exposed values.
func (a *API) result(kv ...any) goja.Value {
	obj := a.runtime.NewObject()
	for i := 0; i+1 < len(kv); i += 2 {
		_ = obj.Set(kv[i].(string), a.expose(kv[i+1]))
	}
	return obj
}
