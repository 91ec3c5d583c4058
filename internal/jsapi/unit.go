// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 MindustryJsMicrocontroller Authors

package jsapi

import (
	"github.com/dop251/goja"

	"github.com/fmoel/MindustryJsMicrocontroller/internal/world"
)

// Unit is a unit handle. Control operations rebind the processor to the
// unit first when another unit is bound.
type Unit struct {
	Target
}

func newUnit(a *API, e world.Entity) *Unit {
	return &Unit{Target{api: a, target: e}}
}

func (u *Unit) object() *goja.Object {
	if u.obj != nil {
		return u.obj
	}
	m := u.methods()
	for name, fn := range map[string]method{
		"idle":             u.simple(world.UnitIdle),
		"stop":             u.simple(world.UnitStop),
		"autoPathFind":     u.simple(world.UnitAutoPathfind),
		"payloadDrop":      u.simple(world.UnitPayDrop),
		"payloadEnter":     u.simple(world.UnitPayEnter),
		"move":             u.position(world.UnitMove),
		"pathfind":         u.position(world.UnitPathfind),
		"mine":             u.position(world.UnitMine),
		"approach":         u.jsApproach,
		"within":           u.jsWithin,
		"boost":            u.jsBoost,
		"target":           u.jsTarget,
		"targetp":          u.jsTargetP,
		"itemTake":         u.jsItemTake,
		"itemDrop":         u.jsItemDrop,
		"payloadTakeUnit":  u.payloadTake(true),
		"payloadTakeBlock": u.payloadTake(false),
		"build":            u.jsBuild,
		"flag":             u.jsFlag,
		"getBlock":         u.jsGetBlock,
		"locateBuilding":   u.jsLocateBuilding,
		"locateOre":        u.jsLocateOre,
		"locateSpawn":      u.locate(world.LocateSpawn),
		"locateDamaged":    u.locate(world.LocateDamaged),
		"unbind":           u.jsUnbind,
	} {
		m[name] = fn
	}
	u.obj = u.api.newObject(u, m, nil)
	return u.obj
}

// ready yields, then binds the processor to this unit if it is not already.
func (u *Unit) ready() bool {
	if !u.alive() {
		return false
	}
	w := u.api.world
	if b := w.Bound(); b != nil && b.ID() == u.target.ID() {
		return true
	}
	return w.BindUnit(u.target) != nil
}

// control runs one unit command.
func (u *Unit) control(cmd world.UnitCommand) (world.UnitResult, bool) {
	if !u.ready() {
		return world.UnitResult{}, false
	}
	return u.api.world.UnitControl(u.target, cmd), true
}

func (u *Unit) simple(op world.UnitControl) method {
	return func(goja.FunctionCall) goja.Value {
		u.control(world.UnitCommand{Op: op})
		return goja.Undefined()
	}
}

// position builds move(x, y), pathfind(x, y) and mine(x, y).
func (u *Unit) position(op world.UnitControl) method {
	return func(call goja.FunctionCall) goja.Value {
		u.control(world.UnitCommand{Op: op, X: toFloat(call.Argument(0)), Y: toFloat(call.Argument(1))})
		return goja.Undefined()
	}
}

// approach(x, y, radius)
func (u *Unit) jsApproach(call goja.FunctionCall) goja.Value {
	u.control(world.UnitCommand{
		Op:     world.UnitApproach,
		X:      toFloat(call.Argument(0)),
		Y:      toFloat(call.Argument(1)),
		Radius: toFloat(call.Argument(2)),
	})
	return goja.Undefined()
}

// within(x, y, radius) - Returns a boolean
func (u *Unit) jsWithin(call goja.FunctionCall) goja.Value {
	res, _ := u.control(world.UnitCommand{
		Op:     world.UnitWithin,
		X:      toFloat(call.Argument(0)),
		Y:      toFloat(call.Argument(1)),
		Radius: toFloat(call.Argument(2)),
	})
	return u.api.runtime.ToValue(res.Within)
}

// boost(enabled)
func (u *Unit) jsBoost(call goja.FunctionCall) goja.Value {
	u.control(world.UnitCommand{Op: world.UnitBoost, Flag: toBool(call.Argument(0))})
	return goja.Undefined()
}

// target(x, y, shoot)
func (u *Unit) jsTarget(call goja.FunctionCall) goja.Value {
	u.control(world.UnitCommand{
		Op:   world.UnitTarget,
		X:    toFloat(call.Argument(0)),
		Y:    toFloat(call.Argument(1)),
		Flag: toBool(call.Argument(2)),
	})
	return goja.Undefined()
}

// targetp(unit, shoot)
func (u *Unit) jsTargetP(call goja.FunctionCall) goja.Value {
	other := entityArg(call.Argument(0))
	if other == nil {
		return goja.Undefined()
	}
	u.control(world.UnitCommand{Op: world.UnitTargetP, Target: other, Flag: toBool(call.Argument(1))})
	return goja.Undefined()
}

// itemTake(building, item, amount)
func (u *Unit) jsItemTake(call goja.FunctionCall) goja.Value {
	from := entityArg(call.Argument(0))
	if from == nil {
		return goja.Undefined()
	}
	u.control(world.UnitCommand{
		Op:     world.UnitItemTake,
		Target: from,
		Item:   trimAt(toText(call.Argument(1))),
		Amount: toInt(call.Argument(2)),
	})
	return goja.Undefined()
}

// itemDrop(building, amount)
func (u *Unit) jsItemDrop(call goja.FunctionCall) goja.Value {
	to := entityArg(call.Argument(0))
	if to == nil {
		return goja.Undefined()
	}
	u.control(world.UnitCommand{Op: world.UnitItemDrop, Target: to, Amount: toInt(call.Argument(1))})
	return goja.Undefined()
}

func (u *Unit) payloadTake(units bool) method {
	return func(goja.FunctionCall) goja.Value {
		u.control(world.UnitCommand{Op: world.UnitPayTake, Flag: units})
		return goja.Undefined()
	}
}

// build(x, y, block, rotation, config)
func (u *Unit) jsBuild(call goja.FunctionCall) goja.Value {
	u.control(world.UnitCommand{
		Op:       world.UnitBuild,
		X:        toFloat(call.Argument(0)),
		Y:        toFloat(call.Argument(1)),
		Block:    trimAt(toText(call.Argument(2))),
		Rotation: toInt(call.Argument(3)),
		Config:   toText(call.Argument(4)),
	})
	return goja.Undefined()
}

// flag(value)
func (u *Unit) jsFlag(call goja.FunctionCall) goja.Value {
	u.control(world.UnitCommand{Op: world.UnitFlag, Value: toFloat(call.Argument(0))})
	return goja.Undefined()
}

// getBlock(x, y) - Returns {type, floor, building} or null
func (u *Unit) jsGetBlock(call goja.FunctionCall) goja.Value {
	res, ok := u.control(world.UnitCommand{
		Op: world.UnitGetBlock,
		X:  toFloat(call.Argument(0)),
		Y:  toFloat(call.Argument(1)),
	})
	if !ok {
		return goja.Null()
	}
	return u.api.result("type", res.BlockType, "floor", res.Floor, "building", res.Building)
}

// locateBuilding(flag, enemy) - Returns {x, y, building} or null
func (u *Unit) jsLocateBuilding(call goja.FunctionCall) goja.Value {
	return u.find(world.LocateQuery{
		Kind:  world.LocateBuilding,
		Flag:  enumArg(call.Argument(0), world.BlockFlags, world.FlagCore),
		Enemy: toBool(call.Argument(1)),
	})
}

// locateOre(item) - Returns {x, y, building} or null
func (u *Unit) jsLocateOre(call goja.FunctionCall) goja.Value {
	return u.find(world.LocateQuery{Kind: world.LocateOre, Ore: trimAt(toText(call.Argument(0)))})
}

func (u *Unit) locate(kind world.LocateKind) method {
	return func(goja.FunctionCall) goja.Value {
		return u.find(world.LocateQuery{Kind: kind})
	}
}

func (u *Unit) find(q world.LocateQuery) goja.Value {
	if !u.ready() {
		return goja.Null()
	}
	res := u.api.world.Locate(u.target, q)
	if !res.Found {
		return goja.Null()
	}
	return u.api.result("x", res.X, "y", res.Y, "building", res.Building)
}

// unbind() - Releases the unit to its default AI
func (u *Unit) jsUnbind(call goja.FunctionCall) goja.Value {
	u.control(world.UnitCommand{Op: world.UnitUnbind})
	return goja.Undefined()
}
