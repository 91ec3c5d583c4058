// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 MindustryJsMicrocontroller Authors

package jsapi

import (
	"github.com/dop251/goja"

	"github.com/fmoel/MindustryJsMicrocontroller/internal/world"
)

// alignments maps print alignment names to their packed values.
var alignments = map[string]float64{
	"center":      1,
	"top":         2,
	"bottom":      4,
	"left":        8,
	"right":       16,
	"topLeft":     10,
	"topRight":    18,
	"bottomLeft":  12,
	"bottomRight": 20,
}

// Canvas buffers drawing commands until a display is flushed.
type Canvas struct {
	api *API
	obj *goja.Object
}

func newCanvas(a *API) *Canvas {
	return &Canvas{api: a}
}

func (c *Canvas) object() *goja.Object {
	if c.obj != nil {
		return c.obj
	}
	c.obj = c.api.newObject(c, map[string]method{
		"clear":     c.numeric(world.DrawClear, 3),
		"color":     c.numeric(world.DrawColor, 4),
		"stroke":    c.numeric(world.DrawStroke, 1),
		"line":      c.numeric(world.DrawLine, 4),
		"rect":      c.numeric(world.DrawRect, 4),
		"lineRect":  c.numeric(world.DrawLineRect, 4),
		"poly":      c.numeric(world.DrawPoly, 5),
		"linePoly":  c.numeric(world.DrawLinePoly, 5),
		"triangle":  c.numeric(world.DrawTriangle, 6),
		"translate": c.numeric(world.DrawTranslate, 2),
		"scale":     c.numeric(world.DrawScale, 2),
		"rotate":    c.numeric(world.DrawRotate, 1),
		"image":     c.jsImage,
		"print":     c.jsPrint,
	}, nil)
	return c.obj
}

func (c *Canvas) draw(cmd world.DrawCmd) {
	if c.api.yield() {
		c.api.world.Draw(cmd)
	}
}

// numeric builds a drawing call taking n numbers, e.g. line(x, y, x2, y2).
// Booleans (the sides flag of poly) are passed as 0 or 1.
func (c *Canvas) numeric(op world.Graphics, n int) method {
	return func(call goja.FunctionCall) goja.Value {
		args := make([]float64, n)
		for i := range args {
			v := call.Argument(i)
			if b, ok := v.Export().(bool); ok {
				if b {
					args[i] = 1
				}
				continue
			}
			args[i] = toFloat(v)
		}
		c.draw(world.DrawCmd{Op: op, Args: args})
		return goja.Undefined()
	}
}

// jsImage draws a content icon.
// image(x, y, name, size, rotation)
func (c *Canvas) jsImage(call goja.FunctionCall) goja.Value {
	c.draw(world.DrawCmd{
		Op:   world.DrawImage,
		Args: []float64{toFloat(call.Argument(0)), toFloat(call.Argument(1)), toFloat(call.Argument(3)), toFloat(call.Argument(4))},
		Text: trimAt(toText(call.Argument(2))),
	})
	return goja.Undefined()
}

// jsPrint draws text.
// print(text, x, y, align)
func (c *Canvas) jsPrint(call goja.FunctionCall) goja.Value {
	align, ok := alignments[toText(call.Argument(3))]
	if !ok {
		align = alignments["bottomLeft"]
	}
	c.draw(world.DrawCmd{
		Op:   world.DrawPrint,
		Args: []float64{toFloat(call.Argument(1)), toFloat(call.Argument(2)), align},
		Text: toText(call.Argument(0)),
	})
	return goja.Undefined()
}
