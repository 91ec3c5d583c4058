// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 MindustryJsMicrocontroller Authors

package jsapi

import (
	"strings"

	"github.com/dop251/goja"

	"github.com/fmoel/MindustryJsMicrocontroller/internal/console"
)

// Console is the script-facing console object. Writing to it is not a
// world effect, so it does not yield.
type Console struct {
	api *API
	obj *goja.Object
}

func newConsole(a *API) *Console {
	return &Console{api: a}
}

func (c *Console) object() *goja.Object {
	if c.obj != nil {
		return c.obj
	}
	c.obj = c.api.newObject(c, map[string]method{
		"log":   c.writer(console.LevelInfo),
		"warn":  c.writer(console.LevelWarn),
		"error": c.writer(console.LevelError),
		"clear": c.jsClear,
	}, nil)
	return c.obj
}

// writer builds log(...), warn(...) and error(...). Arguments are joined
// with spaces.
func (c *Console) writer(level console.Level) method {
	return func(call goja.FunctionCall) goja.Value {
		parts := make([]string, len(call.Arguments))
		for i, a := range call.Arguments {
			parts[i] = Format(a)
		}
		c.api.console.Append(level, strings.Join(parts, " "))
		return goja.Undefined()
	}
}

// clear()
func (c *Console) jsClear(call goja.FunctionCall) goja.Value {
	c.api.console.Clear()
	return goja.Undefined()
}
