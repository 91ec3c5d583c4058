// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 MindustryJsMicrocontroller Authors

package scripting

import (
	"slices"
	"strings"

	"github.com/dop251/goja"

	"github.com/fmoel/MindustryJsMicrocontroller/internal/jsapi"
	"github.com/fmoel/MindustryJsMicrocontroller/internal/transform"
)

// Kind is the category of a snapshot value, one per color in an inspector.
type Kind int

const (
	KindUndefined Kind = iota
	KindNull
	KindNumber
	KindText
	KindBool
	KindArray
	KindObject
	KindFunction
	KindBuilding
	KindUnit
	KindCanvas
	KindCPU
	KindConsole
	KindEnum
)

var kindNames = [...]string{
	KindUndefined: "undefined",
	KindNull:      "null",
	KindNumber:    "number",
	KindText:      "text",
	KindBool:      "bool",
	KindArray:     "array",
	KindObject:    "object",
	KindFunction:  "function",
	KindBuilding:  "building",
	KindUnit:      "unit",
	KindCanvas:    "canvas",
	KindCPU:       "cpu",
	KindConsole:   "console",
	KindEnum:      "enum",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Value is a detached copy of one global. It holds no runtime references.
type Value struct {
	Kind   Kind
	Text   string
	Number float64
}

func (v Value) String() string {
	return v.Text
}

// collect reads the global scope. It runs on the parked worker and never
// calls script code: accessors are reported, not invoked.
func (s *Session) collect() map[string]Value {
	if s.vm == nil {
		return nil
	}
	global := s.vm.GlobalObject()
	out := make(map[string]Value)
	for _, name := range global.Keys() {
		if strings.HasPrefix(name, transform.Prefix) {
			continue
		}
		out[name] = s.global(global, name)
	}
	return out
}

func (s *Session) global(global *goja.Object, name string) (out Value) {
	// A revoked proxy panics on inspection.
	defer func() {
		if recover() != nil {
			out = Value{Kind: KindObject, Text: "[object]"}
		}
	}()

	d, err := s.descriptor(goja.Undefined(), global, s.vm.ToValue(name))
	if err != nil {
		return Value{Kind: KindUndefined, Text: "undefined"}
	}
	desc, ok := d.(*goja.Object)
	if !ok {
		return Value{Kind: KindUndefined, Text: "undefined"}
	}
	if !slices.Contains(desc.Keys(), "value") {
		return Value{Kind: KindObject, Text: "[accessor]"}
	}
	return describe(desc.Get("value"))
}

// describe classifies a script value without running script code.
func describe(v goja.Value) Value {
	switch {
	case v == nil || goja.IsUndefined(v):
		return Value{Kind: KindUndefined, Text: "undefined"}
	case goja.IsNull(v):
		return Value{Kind: KindNull, Text: "null"}
	}

	if obj, ok := v.(*goja.Object); ok {
		return describeObject(obj)
	}

	switch x := v.Export().(type) {
	case int64:
		return Value{Kind: KindNumber, Text: jsapi.Format(x), Number: float64(x)}
	case float64:
		return Value{Kind: KindNumber, Text: jsapi.Format(x), Number: x}
	case string:
		return Value{Kind: KindText, Text: x}
	case bool:
		return Value{Kind: KindBool, Text: jsapi.Format(x)}
	}
	return Value{Kind: KindObject, Text: v.String()}
}

func describeObject(obj *goja.Object) Value {
	if w, ok := jsapi.Unwrap(obj); ok {
		text := jsapi.Format(w)
		switch w.(type) {
		case *jsapi.CPU:
			return Value{Kind: KindCPU, Text: text}
		case *jsapi.Building:
			return Value{Kind: KindBuilding, Text: text}
		case *jsapi.Unit:
			return Value{Kind: KindUnit, Text: text}
		case *jsapi.Canvas:
			return Value{Kind: KindCanvas, Text: text}
		case *jsapi.Console:
			return Value{Kind: KindConsole, Text: text}
		case *jsapi.Enum, *jsapi.EnumValue:
			return Value{Kind: KindEnum, Text: text}
		}
	}

	switch obj.ClassName() {
	case "Array":
		return Value{Kind: KindArray, Text: "[array]"}
	case "Function":
		return Value{Kind: KindFunction, Text: "[function]"}
	}
	return Value{Kind: KindObject, Text: "[object " + obj.ClassName() + "]"}
}
