// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 MindustryJsMicrocontroller Authors

// Package command holds the REPL command registry shared by the mcu
// front ends.
package command

import "github.com/fmoel/MindustryJsMicrocontroller/internal/cmdspec"

// Command represents a REPL command with metadata
type Command struct {
	Name        string            // Primary command name
	Aliases     []string          // Alternative names (e.g., "s" for "step")
	Usage       string            // Usage string: "step [n]"
	Description string            // One-line description
	LongHelp    string            // Multi-line detailed help (optional)
	Category    string            // "Execution", "Files", etc.
	Handler     Handler           // Command execution handler
	ArgSpecs    []cmdspec.ArgSpec // Argument completion specs (ordered by position)
}

// Handler is the interface all command handlers must implement
type Handler interface {
	Execute(args []string, ctx *Context) error
}

// Category constants for organizing commands
const (
	CategoryScript    = "Script"
	CategoryExecution = "Execution"
	CategoryInspect   = "Inspection"
	CategoryFiles     = "Files"
	CategorySession   = "Session"
)

// categoryOrder is the order help lists categories in.
var categoryOrder = []string{
	CategoryScript,
	CategoryExecution,
	CategoryInspect,
	CategoryFiles,
	CategorySession,
}
