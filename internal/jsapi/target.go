// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 MindustryJsMicrocontroller Authors

package jsapi

import (
	"github.com/dop251/goja"

	"github.com/fmoel/MindustryJsMicrocontroller/internal/world"
)

// Target holds the operations shared by buildings and units. Each one yields
// before touching the world and is a no-op on a stale entity.
type Target struct {
	api    *API
	target world.Entity
	obj    *goja.Object
}

func (t *Target) entity() world.Entity { return t.target }

// alive yields and then checks the target still exists.
func (t *Target) alive() bool {
	return t.api.yield() && world.Alive(t.target)
}

func (t *Target) methods() map[string]method {
	return map[string]method{
		"sensor":     t.jsSensor,
		"shoot":      t.jsShoot,
		"shootp":     t.jsShootP,
		"color":      t.jsColor,
		"setConfig":  t.jsSetConfig,
		"setEnabled": t.jsSetEnabled,
		"read":       t.jsRead,
		"write":      t.jsWrite,
		"radar":      t.jsRadar,
		"flush":      t.jsFlush,
		"toString":   t.jsToString,
	}
}

// jsSensor reads a property of the target.
// sensor(property) - Returns a number, a name, an entity or null
func (t *Target) jsSensor(call goja.FunctionCall) goja.Value {
	t.api.requireArgs(call, 1, "sensor() requires a property name")
	if !t.alive() {
		return goja.Null()
	}
	return t.api.expose(t.api.world.Sense(t.target, call.Argument(0).String()))
}

// jsShoot aims at a position.
// shoot(x, y, shoot)
func (t *Target) jsShoot(call goja.FunctionCall) goja.Value {
	if t.alive() {
		t.api.world.Control(t.target, world.ControlShoot, world.ControlArgs{
			X:     toFloat(call.Argument(0)),
			Y:     toFloat(call.Argument(1)),
			Shoot: toBool(call.Argument(2)),
		})
	}
	return goja.Undefined()
}

// jsShootP aims at a unit, leading the target.
// shootp(unit, shoot)
func (t *Target) jsShootP(call goja.FunctionCall) goja.Value {
	if t.alive() {
		if u := entityArg(call.Argument(0)); u != nil {
			t.api.world.Control(t.target, world.ControlShootP, world.ControlArgs{
				Unit:  u,
				Shoot: toBool(call.Argument(1)),
			})
		}
	}
	return goja.Undefined()
}

// jsColor sets an illuminator color.
// color(packed) or color("#rrggbb")
func (t *Target) jsColor(call goja.FunctionCall) goja.Value {
	if t.alive() {
		t.api.world.Control(t.target, world.ControlColor, world.ControlArgs{Value: colorArg(call.Argument(0))})
	}
	return goja.Undefined()
}

// jsSetConfig sets the building configuration.
// setConfig(value)
func (t *Target) jsSetConfig(call goja.FunctionCall) goja.Value {
	if t.alive() {
		var value any
		if e := entityArg(call.Argument(0)); e != nil {
			value = e
		} else if v := call.Argument(0); !goja.IsUndefined(v) {
			value = v.Export()
		}
		t.api.world.Control(t.target, world.ControlConfig, world.ControlArgs{Value: value})
	}
	return goja.Undefined()
}

// jsSetEnabled enables or disables the building.
// setEnabled(enabled)
func (t *Target) jsSetEnabled(call goja.FunctionCall) goja.Value {
	if t.alive() {
		t.api.world.Control(t.target, world.ControlEnabled, world.ControlArgs{Enable: toBool(call.Argument(0))})
	}
	return goja.Undefined()
}

// jsRead reads a memory cell.
// read(address) - Returns a number or null
func (t *Target) jsRead(call goja.FunctionCall) goja.Value {
	if !t.alive() {
		return goja.Null()
	}
	v, ok := t.api.world.Read(t.target, toInt(call.Argument(0)))
	if !ok {
		return goja.Null()
	}
	return t.api.runtime.ToValue(v)
}

// jsWrite writes a memory cell.
// write(address, value) - Returns true if the write landed
func (t *Target) jsWrite(call goja.FunctionCall) goja.Value {
	if !t.alive() {
		return t.api.runtime.ToValue(false)
	}
	ok := t.api.world.Write(t.target, toInt(call.Argument(0)), toFloat(call.Argument(1)))
	return t.api.runtime.ToValue(ok)
}

// jsRadar finds a unit around the target.
// radar(target1, target2, target3, order, sort) - Returns a unit or null
func (t *Target) jsRadar(call goja.FunctionCall) goja.Value {
	if !t.alive() {
		return goja.Null()
	}
	q := world.RadarQuery{Order: 1, Sort: world.SortDistance}
	for i := 0; i < 3; i++ {
		q.Targets[i] = enumArg(call.Argument(i), world.RadarTargets, world.TargetAny)
	}
	if v := call.Argument(3); !goja.IsUndefined(v) {
		q.Order = toInt(v)
	}
	q.Sort = enumArg(call.Argument(4), world.RadarSorts, world.SortDistance)
	return t.api.expose(t.api.world.Radar(t.target, q))
}

// jsFlush sends buffered output to the target: draw commands to a display,
// text to anything else.
// flush()
func (t *Target) jsFlush(call goja.FunctionCall) goja.Value {
	if t.alive() {
		if t.target.Kind() == world.KindDisplay {
			t.api.world.DrawFlush(t.target)
		} else {
			t.api.world.PrintFlush(t.target)
		}
	}
	return goja.Undefined()
}

// jsToString names the target. It does not yield.
func (t *Target) jsToString(call goja.FunctionCall) goja.Value {
	return t.api.runtime.ToValue(Format(t))
}

// Building is a linked or sensed building.
type Building struct {
	Target
}

func newBuilding(a *API, e world.Entity) *Building {
	return &Building{Target{api: a, target: e}}
}

func (b *Building) object() *goja.Object {
	if b.obj == nil {
		b.obj = b.api.newObject(b, b.methods(), nil)
	}
	return b.obj
}
