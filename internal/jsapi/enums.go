// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 MindustryJsMicrocontroller Authors

package jsapi

import (
	"github.com/dop251/goja"

	"github.com/fmoel/MindustryJsMicrocontroller/internal/world"
)

// Enum is a read-only global holding named constants, e.g. RadarTarget.
type Enum struct {
	api    *API
	Name   string
	values []*EnumValue
	obj    *goja.Object
}

// EnumValue is one constant of an Enum.
type EnumValue struct {
	api   *API
	Enum  string
	Value string
	obj   *goja.Object
}

func newEnum[T ~string](a *API, name string, values []T) *Enum {
	e := &Enum{api: a, Name: name}
	for _, v := range values {
		e.values = append(e.values, &EnumValue{api: a, Enum: name, Value: string(v)})
	}
	return e
}

// newEnums returns the enum globals registered on every runtime.
func newEnums(a *API) []*Enum {
	return []*Enum{
		newEnum(a, "RadarTarget", world.RadarTargets),
		newEnum(a, "RadarSort", world.RadarSorts),
		newEnum(a, "BlockFlag", world.BlockFlags),
		newEnum(a, "UnitControl", world.UnitControls),
	}
}

func (e *Enum) object() *goja.Object {
	if e.obj != nil {
		return e.obj
	}
	fields := make(map[string]func() goja.Value, len(e.values))
	for _, v := range e.values {
		fields[v.Value] = func() goja.Value { return v.object() }
	}
	e.obj = e.api.newObject(e, nil, fields)
	return e.obj
}

func (v *EnumValue) object() *goja.Object {
	if v.obj != nil {
		return v.obj
	}
	v.obj = v.api.newObject(v, map[string]method{
		"toString": func(goja.FunctionCall) goja.Value { return v.api.runtime.ToValue(v.Value) },
	}, map[string]func() goja.Value{
		"name": func() goja.Value { return v.api.runtime.ToValue(v.Value) },
	})
	return v.obj
}
