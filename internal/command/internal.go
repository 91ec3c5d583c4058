// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 MindustryJsMicrocontroller Authors

package command

// InternalHandler wraps a Go function as a command Handler.
type InternalHandler struct {
	fn func(args []string, ctx *Context) error
}

// NewInternalHandler creates a handler for internal Go functions.
func NewInternalHandler(fn func([]string, *Context) error) *InternalHandler {
	return &InternalHandler{fn: fn}
}

// Execute implements the Handler interface
func (h *InternalHandler) Execute(args []string, ctx *Context) error {
	return h.fn(args, ctx)
}
