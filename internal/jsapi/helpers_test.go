// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 MindustryJsMicrocontroller Authors

package jsapi

import (
	"math"
	"testing"
	"time"

	"github.com/dop251/goja"

	"github.com/fmoel/MindustryJsMicrocontroller/internal/world"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  string
	}{
		{"nil", nil, "null"},
		{"whole float", 3.0, "3"},
		{"near whole", 2.000001, "2"},
		{"fraction", 1.5, "1.5"},
		{"negative", -7.0, "-7"},
		{"int64", int64(42), "42"},
		{"string", "hi", "hi"},
		{"bool", true, "true"},
		{"nan", math.NaN(), "NaN"},
		{"inf", math.Inf(1), "Infinity"},
		{"enum", &EnumValue{Value: "enemy"}, "enemy"},
		{"unknown", struct{}{}, "[object]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Format(tt.input); got != tt.want {
				t.Errorf("Format() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatGojaValues(t *testing.T) {
	vm := goja.New()
	tests := []struct {
		input goja.Value
		want  string
	}{
		{goja.Undefined(), "null"},
		{goja.Null(), "null"},
		{vm.ToValue(10), "10"},
		{vm.ToValue(0.25), "0.25"},
		{vm.ToValue("text"), "text"},
	}
	for _, tt := range tests {
		if got := Format(tt.input); got != tt.want {
			t.Errorf("Format(%v) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestToFloat(t *testing.T) {
	vm := goja.New()
	tests := []struct {
		name  string
		input goja.Value
		want  float64
	}{
		{"undefined", goja.Undefined(), 0},
		{"null", goja.Null(), 0},
		{"nil", nil, 0},
		{"number", vm.ToValue(2.5), 2.5},
		{"numeric string", vm.ToValue("4"), 4},
		{"nan", vm.ToValue("abc"), 0},
		{"bool", vm.ToValue(true), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := toFloat(tt.input); got != tt.want {
				t.Errorf("toFloat() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSleepDuration(t *testing.T) {
	tests := []struct {
		name string
		ms   float64
		want time.Duration
	}{
		{"zero", 0, 0},
		{"negative", -5, 0},
		{"negative infinity", math.Inf(-1), 0},
		{"fraction", 1.5, 1500 * time.Microsecond},
		{"one second", 1000, time.Second},
		{"beyond range", 1e13, math.MaxInt64},
		{"infinity", math.Inf(1), math.MaxInt64},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sleepDuration(tt.ms); got != tt.want {
				t.Errorf("sleepDuration(%v) = %v, want %v", tt.ms, got, tt.want)
			}
		})
	}
}

func TestColorArg(t *testing.T) {
	vm := goja.New()
	tests := []struct {
		input goja.Value
		want  float64
	}{
		{vm.ToValue("#ff0000"), 0xff0000ff},
		{vm.ToValue("00ff0080"), 0x00ff0080},
		{vm.ToValue("nope"), 0},
		{vm.ToValue(12), 12},
		{goja.Undefined(), 0},
	}
	for _, tt := range tests {
		if got := colorArg(tt.input); got != tt.want {
			t.Errorf("colorArg(%v) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestEnumArg(t *testing.T) {
	vm := goja.New()
	tests := []struct {
		input goja.Value
		want  world.RadarSort
	}{
		{vm.ToValue("health"), world.SortHealth},
		{vm.ToValue("@armor"), world.SortArmor},
		{vm.ToValue("bogus"), world.SortDistance},
		{goja.Undefined(), world.SortDistance},
	}
	for _, tt := range tests {
		if got := enumArg(tt.input, world.RadarSorts, world.SortDistance); got != tt.want {
			t.Errorf("enumArg(%v) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestRequireArgs(t *testing.T) {
	a := &API{runtime: goja.New()}
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic but got none")
		}
		if v, ok := r.(goja.Value); !ok || v.String() != "link() requires a link name" {
			t.Errorf("panic = %v", r)
		}
	}()
	a.requireArgs(goja.FunctionCall{}, 1, "link() requires a link name")
}
