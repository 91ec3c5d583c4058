// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 MindustryJsMicrocontroller Authors

package main

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/fmoel/MindustryJsMicrocontroller/internal/cmdspec"
	"github.com/fmoel/MindustryJsMicrocontroller/internal/command"
	"github.com/fmoel/MindustryJsMicrocontroller/internal/scripting"
	"github.com/fmoel/MindustryJsMicrocontroller/internal/store"
	"github.com/fmoel/MindustryJsMicrocontroller/internal/util"
	"github.com/fmoel/MindustryJsMicrocontroller/internal/world"
)

// mustRegister registers a command and panics if there's an error.
// Used during initialization where registration errors are programming bugs.
func mustRegister(registry *command.Registry, cmd *command.Command) {
	if err := registry.Register(cmd); err != nil {
		panic(fmt.Sprintf("failed to register command %q: %v", cmd.Name, err))
	}
}

// initCommandRegistry initializes the command registry with all REPL commands
func (a *app) initCommandRegistry() *command.Registry {
	registry := command.NewRegistry()

	// Script
	mustRegister(registry, &command.Command{
		Name:        "load",
		Usage:       "load <file>",
		Description: "Load a script file and restart the processor",
		Category:    command.CategoryScript,
		Handler:     command.NewInternalHandler(a.cmdLoad),
		ArgSpecs:    []cmdspec.ArgSpec{{Type: cmdspec.ArgTypeScript}},
	})
	mustRegister(registry, &command.Command{
		Name:        "interrupt",
		Aliases:     []string{"stop"},
		Usage:       "interrupt",
		Description: "Stop the script until the next load",
		Category:    command.CategoryScript,
		Handler:     command.NewInternalHandler(a.cmdInterrupt),
	})

	// Execution
	mustRegister(registry, &command.Command{
		Name:        "step",
		Aliases:     []string{"s"},
		Usage:       "step [n]",
		Description: "Pause the clock and advance the script n checkpoints",
		Category:    command.CategoryExecution,
		Handler:     command.NewInternalHandler(a.cmdStep),
		ArgSpecs:    []cmdspec.ArgSpec{{Type: cmdspec.ArgTypeNumber}},
	})
	mustRegister(registry, &command.Command{
		Name:        "run",
		Usage:       "run",
		Description: "Resume the tick clock",
		Category:    command.CategoryExecution,
		Handler:     command.NewInternalHandler(a.cmdRun),
	})
	mustRegister(registry, &command.Command{
		Name:        "pause",
		Usage:       "pause",
		Description: "Pause the tick clock",
		Category:    command.CategoryExecution,
		Handler:     command.NewInternalHandler(a.cmdPause),
	})

	// Inspection
	mustRegister(registry, &command.Command{
		Name:        "vars",
		Aliases:     []string{"v"},
		Usage:       "vars",
		Description: "Show the script's global variables",
		Category:    command.CategoryInspect,
		Handler:     command.NewInternalHandler(a.cmdVars),
	})
	mustRegister(registry, &command.Command{
		Name:        "log",
		Usage:       "log",
		Description: "Show the script console",
		Category:    command.CategoryInspect,
		Handler:     command.NewInternalHandler(a.cmdLog),
	})
	mustRegister(registry, &command.Command{
		Name:        "status",
		Usage:       "status",
		Description: "Show processor state, line and clock",
		Category:    command.CategoryInspect,
		Handler:     command.NewInternalHandler(a.cmdStatus),
	})
	mustRegister(registry, &command.Command{
		Name:        "links",
		Usage:       "links",
		Description: "Show linked blocks and what the script wrote to them",
		Category:    command.CategoryInspect,
		Handler:     command.NewInternalHandler(a.cmdLinks),
	})

	// Files
	mustRegister(registry, &command.Command{
		Name:        "save",
		Usage:       "save <file>",
		Description: "Save the loaded script with a checksum",
		Category:    command.CategoryFiles,
		Handler:     command.NewInternalHandler(a.cmdSave),
		ArgSpecs:    []cmdspec.ArgSpec{{Type: cmdspec.ArgTypeSave}},
	})
	mustRegister(registry, &command.Command{
		Name:        "open",
		Usage:       "open <file>",
		Description: "Load a script from a save file",
		Category:    command.CategoryFiles,
		Handler:     command.NewInternalHandler(a.cmdOpen),
		ArgSpecs:    []cmdspec.ArgSpec{{Type: cmdspec.ArgTypeSave}},
	})

	// Session
	mustRegister(registry, &command.Command{
		Name:        "help",
		Aliases:     []string{"h", "?"},
		Usage:       "help [command]",
		Description: "Show help",
		Category:    command.CategorySession,
		Handler: command.NewInternalHandler(func(args []string, ctx *command.Context) error {
			if len(args) == 0 {
				command.ShowHelp(ctx.Writer(), registry)
				return nil
			}
			cmd, ok := registry.Lookup(args[0])
			if !ok {
				return fmt.Errorf("unknown command %q", args[0])
			}
			command.ShowCommandHelp(ctx.Writer(), cmd)
			return nil
		}),
	})
	mustRegister(registry, &command.Command{
		Name:        "quit",
		Aliases:     []string{"exit", "q"},
		Usage:       "quit",
		Description: "Exit mcu",
		Category:    command.CategorySession,
		Handler: command.NewInternalHandler(func([]string, *command.Context) error {
			return command.ErrExit
		}),
	})

	return registry
}

func requireFile(args []string, usage string) (string, error) {
	if len(args) != 1 || args[0] == "" {
		return "", fmt.Errorf("usage: %s", usage)
	}
	return args[0], nil
}

func (a *app) cmdLoad(args []string, ctx *command.Context) error {
	name, err := requireFile(args, "load <file>")
	if err != nil {
		return err
	}
	if err := a.loadFile(ctx.Path(name)); err != nil {
		return err
	}
	a.reportLoad(ctx, name)
	return nil
}

// reportLoad prints the outcome of a load.
func (a *app) reportLoad(ctx *command.Context, name string) {
	if a.eng.HasErrors() {
		ctx.Printf("Loaded %s with errors: %s\n", name, a.eng.LastErrorText())
		return
	}
	ctx.Printf("Loaded %s (%d lines)\n", name, strings.Count(a.eng.Code(), "\n")+1)
}

func (a *app) cmdInterrupt(_ []string, ctx *command.Context) error {
	a.eng.Interrupt()
	ctx.Println("Interrupted")
	return nil
}

func (a *app) cmdStep(args []string, ctx *command.Context) error {
	n := 1
	if len(args) > 0 {
		v, err := strconv.Atoi(args[0])
		if err != nil || v < 1 {
			return fmt.Errorf("step count must be a positive integer, got %q", args[0])
		}
		n = v
	}

	taken, err := a.step(n)
	if err != nil {
		return err
	}
	if taken == 0 {
		ctx.Printf("Nothing to step (%s)\n", a.eng.State())
		return nil
	}
	ctx.Printf("Stepped %d, line %d, %s\n", taken, a.eng.Line(), a.eng.State())
	return nil
}

func (a *app) cmdRun(_ []string, ctx *command.Context) error {
	a.driver.Resume()
	ctx.Printf("Running at %d ticks/s\n", a.config.TickRate)
	return nil
}

func (a *app) cmdPause(_ []string, ctx *command.Context) error {
	a.driver.Pause()
	ctx.Println("Paused")
	return nil
}

// kindColor maps a value kind to an ANSI color code.
func kindColor(kind string) string {
	switch kind {
	case scripting.KindNumber.String():
		return "36"
	case scripting.KindText.String():
		return "32"
	case scripting.KindBool.String():
		return "35"
	case scripting.KindBuilding.String(), scripting.KindUnit.String(), scripting.KindCPU.String():
		return "33"
	case scripting.KindFunction.String():
		return "34"
	case scripting.KindUndefined.String(), scripting.KindNull.String():
		return "90"
	}
	return ""
}

func (a *app) cmdVars(_ []string, ctx *command.Context) error {
	snap := a.eng.Snapshot()
	if len(snap) == 0 {
		ctx.Println("No variables")
		return nil
	}

	names := make([]string, 0, len(snap))
	width := 0
	for name := range snap {
		names = append(names, name)
		width = max(width, len(name))
	}
	sort.Strings(names)

	for _, name := range names {
		v := snap[name]
		ctx.Printf("  %-*s = %s\n", width, name, util.FormatWithColor(v.String(), v.Kind.String(), kindColor))
	}
	return nil
}

func (a *app) cmdLog(_ []string, ctx *command.Context) error {
	content := a.eng.Console().Content()
	if content == "" {
		ctx.Println("Console is empty")
		return nil
	}
	ctx.Printf("%s", content)
	if !strings.HasSuffix(content, "\n") {
		ctx.Println()
	}
	return nil
}

func (a *app) cmdStatus(_ []string, ctx *command.Context) error {
	clock := "running"
	if a.driver.Paused() {
		clock = "paused"
	}

	ctx.Printf("Processor: %s\n", a.eng.Name())
	ctx.Printf("State:     %s (%s)\n", a.eng.State(), a.eng.Status())
	ctx.Printf("Line:      %d\n", a.eng.Line())
	if path := a.script(); path != "" {
		ctx.Printf("Script:    %s\n", path)
	}
	if a.eng.HasErrors() {
		ctx.Printf("Error:     %s\n", a.eng.LastErrorText())
	}
	ctx.Printf("Clock:     %s, %d ticks, %d over budget\n", clock, a.driver.Ticks(), a.driver.Overruns())
	return nil
}

func (a *app) cmdLinks(_ []string, ctx *command.Context) error {
	for _, l := range a.world.Links() {
		if !world.Alive(l.Entity) {
			ctx.Printf("  %-10s (empty)\n", l.Name)
			continue
		}
		detail := ""
		switch l.Entity.Kind() {
		case world.KindMessage:
			detail = strconv.Quote(a.world.Message(l.Entity))
		case world.KindDisplay:
			detail = fmt.Sprintf("%d draw commands", len(a.world.Display(l.Entity)))
		case world.KindMemory:
			v, _ := a.world.Read(l.Entity, 0)
			detail = fmt.Sprintf("[0] = %v", v)
		case world.KindSwitch:
			detail = fmt.Sprintf("enabled = %v", a.world.Sense(l.Entity, "enabled"))
		}
		ctx.Printf("  %-10s %-14s %s\n", l.Name, l.Entity.Name(), detail)
	}
	return nil
}

func (a *app) cmdSave(args []string, ctx *command.Context) error {
	name, err := requireFile(args, "save <file>")
	if err != nil {
		return err
	}
	code := a.eng.Code()
	if code == "" {
		return errors.New("no script loaded")
	}
	if err := store.Write(ctx.Path(name), a.eng.Name(), code); err != nil {
		return err
	}
	ctx.Printf("Saved %s\n", name)
	return nil
}

func (a *app) cmdOpen(args []string, ctx *command.Context) error {
	name, err := requireFile(args, "open <file>")
	if err != nil {
		return err
	}
	save, err := a.openSave(ctx.Path(name))
	if err != nil {
		return err
	}
	a.reportLoad(ctx, fmt.Sprintf("%s (%s)", name, save.Name))
	return nil
}
