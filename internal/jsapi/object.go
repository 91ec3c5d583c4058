// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 MindustryJsMicrocontroller Authors

package jsapi

import (
	"reflect"
	"sort"

	"github.com/dop251/goja"

	"github.com/fmoel/MindustryJsMicrocontroller/internal/sandbox"
)

// wrapper is implemented by every Go type exposed to scripts.
type wrapper interface {
	object() *goja.Object
}

type method = func(goja.FunctionCall) goja.Value

// hostObject is the DynamicObject behind every wrapper. Members are resolved
// from a fixed table; reflective members are refused and logged.
type hostObject struct {
	api     *API
	wrapped wrapper
	methods map[string]method
	fields  map[string]func() goja.Value
	keys    []string
	cache   map[string]goja.Value
}

func (a *API) newObject(w wrapper, methods map[string]method, fields map[string]func() goja.Value) *goja.Object {
	keys := make([]string, 0, len(methods)+len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	for k := range methods {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return a.runtime.NewDynamicObject(&hostObject{
		api:     a,
		wrapped: w,
		methods: methods,
		fields:  fields,
		keys:    keys,
		cache:   make(map[string]goja.Value),
	})
}

// Get implements goja.DynamicObject.
func (o *hostObject) Get(key string) goja.Value {
	if sandbox.IsHiddenMember(key) {
		o.api.deny(o.wrapped, key)
		return goja.Undefined()
	}
	if f, ok := o.fields[key]; ok {
		return f()
	}
	if v, ok := o.cache[key]; ok {
		return v
	}
	if m, ok := o.methods[key]; ok {
		v := o.api.runtime.ToValue(m)
		o.cache[key] = v
		return v
	}
	return nil
}

// Set implements goja.DynamicObject. Host objects are read-only.
func (o *hostObject) Set(string, goja.Value) bool { return false }

// Has implements goja.DynamicObject.
func (o *hostObject) Has(key string) bool {
	if sandbox.IsHiddenMember(key) {
		return false
	}
	_, isField := o.fields[key]
	_, isMethod := o.methods[key]
	return isField || isMethod
}

// Delete implements goja.DynamicObject.
func (o *hostObject) Delete(string) bool { return false }

// Keys implements goja.DynamicObject.
func (o *hostObject) Keys() []string {
	return o.keys
}

var hostObjectType = reflect.TypeOf((*hostObject)(nil))

// Unwrap returns the Go wrapper behind a script value, if any. Plain script
// objects are rejected by type before export, so no getter runs.
func Unwrap(v goja.Value) (any, bool) {
	obj, ok := v.(*goja.Object)
	if !ok || obj.ExportType() != hostObjectType {
		return nil, false
	}
	h, ok := obj.Export().(*hostObject)
	if !ok {
		return nil, false
	}
	return h.wrapped, true
}
