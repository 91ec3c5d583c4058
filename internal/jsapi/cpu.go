// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 MindustryJsMicrocontroller Authors

package jsapi

import (
	"math"
	"strings"
	"time"

	"github.com/dop251/goja"

	"github.com/fmoel/MindustryJsMicrocontroller/internal/world"
)

// CPU is the processor running the script. It is also a building, so the
// target operations apply to it.
type CPU struct {
	Building
	canvas *Canvas
}

func newCPU(a *API) *CPU {
	return &CPU{
		Building: Building{Target{api: a, target: a.world.Self()}},
		canvas:   newCanvas(a),
	}
}

func (c *CPU) object() *goja.Object {
	if c.obj != nil {
		return c.obj
	}
	m := c.methods()
	m["links"] = c.jsLinks
	m["link"] = c.jsLink
	m["linkArray"] = c.jsLinkArray
	m["linkNameIsValid"] = c.jsLinkNameIsValid
	m["getLinkNames"] = c.jsGetLinkNames
	m["bind"] = c.jsBind
	m["sleep"] = c.jsSleep
	m["yield"] = c.jsYield
	m["print"] = c.jsPrint
	m["format"] = c.jsFormat

	c.obj = c.api.newObject(c, m, map[string]func() goja.Value{
		"canvas":              func() goja.Value { return c.canvas.object() },
		"instructionsPerTick": func() goja.Value { return c.api.runtime.ToValue(c.api.instructionsPerTick) },
	})
	return c.obj
}

// jsLinks returns the linked buildings keyed by link name.
// links() - Returns an object; empty links are omitted
func (c *CPU) jsLinks(call goja.FunctionCall) goja.Value {
	obj := c.api.runtime.NewObject()
	if !c.api.yield() {
		return obj
	}
	for _, l := range c.api.world.Links() {
		if world.Alive(l.Entity) {
			_ = obj.Set(l.Name, c.api.expose(l.Entity))
		}
	}
	return obj
}

// jsLink returns one linked building.
// link(name) - Returns a building or null
func (c *CPU) jsLink(call goja.FunctionCall) goja.Value {
	c.api.requireArgs(call, 1, "link() requires a link name")
	if !c.api.yield() {
		return goja.Null()
	}
	name := call.Argument(0).String()
	for _, l := range c.api.world.Links() {
		if l.Name == name {
			return c.api.expose(l.Entity)
		}
	}
	return goja.Null()
}

// jsLinkArray returns the linked buildings in link order.
// linkArray() - Returns an array; empty links are omitted
func (c *CPU) jsLinkArray(call goja.FunctionCall) goja.Value {
	var items []any
	if c.api.yield() {
		for _, l := range c.api.world.Links() {
			if world.Alive(l.Entity) {
				items = append(items, c.api.expose(l.Entity))
			}
		}
	}
	return c.api.runtime.NewArray(items...)
}

// jsLinkNameIsValid reports whether a link of that name exists, even if empty.
// linkNameIsValid(name) - Returns a boolean
func (c *CPU) jsLinkNameIsValid(call goja.FunctionCall) goja.Value {
	if !c.api.yield() {
		return c.api.runtime.ToValue(false)
	}
	name := call.Argument(0).String()
	for _, l := range c.api.world.Links() {
		if l.Name == name {
			return c.api.runtime.ToValue(true)
		}
	}
	return c.api.runtime.ToValue(false)
}

// jsGetLinkNames returns every link name, including empty links.
// getLinkNames() - Returns an array of strings
func (c *CPU) jsGetLinkNames(call goja.FunctionCall) goja.Value {
	var names []any
	if c.api.yield() {
		for _, l := range c.api.world.Links() {
			names = append(names, l.Name)
		}
	}
	return c.api.runtime.NewArray(names...)
}

// jsBind binds the processor to a unit.
// bind(type) or bind(unit) - Returns the bound unit or null
func (c *CPU) jsBind(call goja.FunctionCall) goja.Value {
	c.api.requireArgs(call, 1, "bind() requires a unit type or unit")
	if !c.api.yield() {
		return goja.Null()
	}
	if u := entityArg(call.Argument(0)); u != nil {
		return c.api.expose(c.api.world.BindUnit(u))
	}
	if _, ok := Unwrap(call.Argument(0)); ok {
		return goja.Null()
	}
	return c.api.expose(c.api.world.Bind(trimAt(call.Argument(0).String())))
}

// jsSleep parks the script for at least the given time.
// sleep(ms)
func (c *CPU) jsSleep(call goja.FunctionCall) goja.Value {
	if c.api.sched != nil {
		c.api.sched.Sleep(sleepDuration(toFloat(call.Argument(0))))
	}
	return goja.Undefined()
}

// sleepDuration converts script milliseconds, saturating at the longest
// representable duration.
func sleepDuration(ms float64) time.Duration {
	switch {
	case ms <= 0:
		return 0
	case ms >= float64(math.MaxInt64/int64(time.Millisecond)):
		return math.MaxInt64
	}
	return time.Duration(ms * float64(time.Millisecond))
}

// jsYield hands control back to the host for one step.
// yield()
func (c *CPU) jsYield(call goja.FunctionCall) goja.Value {
	c.api.yield()
	return goja.Undefined()
}

// jsPrint appends text to the processor's print buffer.
// print(...values)
func (c *CPU) jsPrint(call goja.FunctionCall) goja.Value {
	if !c.api.yield() {
		return goja.Undefined()
	}
	c.api.world.Print(join(call.Arguments))
	return goja.Undefined()
}

// jsFormat renders a value as print would. It does not yield.
// format(value) - Returns a string
func (c *CPU) jsFormat(call goja.FunctionCall) goja.Value {
	return c.api.runtime.ToValue(Format(call.Argument(0)))
}

func join(args []goja.Value) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = Format(a)
	}
	return strings.Join(parts, "")
}
