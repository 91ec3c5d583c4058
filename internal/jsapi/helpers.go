// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 MindustryJsMicrocontroller Authors

package jsapi

import (
	"math"
	"strconv"
	"strings"

	"github.com/dop251/goja"

	"github.com/fmoel/MindustryJsMicrocontroller/internal/world"
)

// requireArgs panics with a JS exception if the call has fewer than n arguments.
func (a *API) requireArgs(call goja.FunctionCall, n int, msg string) {
	if len(call.Arguments) < n {
		panic(a.runtime.ToValue(msg))
	}
}

// toFloat converts a Goja value to float64. Absent or NaN values become 0.
func toFloat(v goja.Value) float64 {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return 0
	}
	f := v.ToFloat()
	if math.IsNaN(f) {
		return 0
	}
	return f
}

// toInt converts a Goja value to int, truncating toward zero.
func toInt(v goja.Value) int {
	return int(toFloat(v))
}

func toBool(v goja.Value) bool {
	if v == nil {
		return false
	}
	return v.ToBoolean()
}

// toText converts a Goja value to a string; host objects use Format.
func toText(v goja.Value) string {
	if v == nil || goja.IsUndefined(v) {
		return ""
	}
	if w, ok := Unwrap(v); ok {
		return Format(w)
	}
	return v.String()
}

// entityArg resolves a building or unit argument. It returns nil for
// anything else, including stale entities.
func entityArg(v goja.Value) world.Entity {
	w, ok := Unwrap(v)
	if !ok {
		return nil
	}
	t, ok := w.(interface{ entity() world.Entity })
	if !ok {
		return nil
	}
	e := t.entity()
	if !world.Alive(e) {
		return nil
	}
	return e
}

// enumArg reads an enum constant or its name. Unknown names fall back to def.
func enumArg[T ~string](v goja.Value, valid []T, def T) T {
	var name string
	if w, ok := Unwrap(v); ok {
		ev, ok := w.(*EnumValue)
		if !ok {
			return def
		}
		name = ev.Value
	} else if v != nil && !goja.IsUndefined(v) && !goja.IsNull(v) {
		name = strings.TrimPrefix(v.String(), "@")
	}
	for _, x := range valid {
		if string(x) == name {
			return x
		}
	}
	return def
}

// Format renders a value the way processor print does: whole numbers without
// a fraction, host objects by name, nil as "null".
func Format(v any) string {
	switch v := v.(type) {
	case nil:
		return "null"
	case string:
		return v
	case bool:
		if v {
			return "true"
		}
		return "false"
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	case float64:
		return formatNumber(v)
	case *EnumValue:
		return v.Value
	case *Enum:
		return v.Name
	case interface{ entity() world.Entity }:
		e := v.entity()
		if !world.Alive(e) {
			return "null"
		}
		return e.Name()
	case *Canvas:
		return "canvas"
	case *Console:
		return "console"
	case goja.Value:
		if w, ok := Unwrap(v); ok {
			return Format(w)
		}
		if goja.IsUndefined(v) || goja.IsNull(v) {
			return "null"
		}
		return Format(v.Export())
	}
	return "[object]"
}

func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case math.Abs(f-math.Round(f)) < 1e-5 && math.Abs(f) < 1e15:
		return strconv.FormatInt(int64(math.Round(f)), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// colorArg accepts a packed number or a "#rrggbb" / "#rrggbbaa" string.
func colorArg(v goja.Value) float64 {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return 0
	}
	s, ok := v.Export().(string)
	if !ok {
		return toFloat(v)
	}
	s = strings.TrimPrefix(s, "#")
	if len(s) == 6 {
		s += "ff"
	}
	n, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0
	}
	return float64(n)
}

// trimAt drops the "@" content prefix used by processor constants.
func trimAt(s string) string {
	return strings.TrimPrefix(s, "@")
}
