// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 MindustryJsMicrocontroller Authors

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fmoel/MindustryJsMicrocontroller/internal/command"
	"github.com/fmoel/MindustryJsMicrocontroller/internal/engine"
	"github.com/fmoel/MindustryJsMicrocontroller/internal/host"
	"github.com/fmoel/MindustryJsMicrocontroller/internal/store"
	"github.com/fmoel/MindustryJsMicrocontroller/internal/util"
	"github.com/fmoel/MindustryJsMicrocontroller/internal/world/memworld"
)

// stepWait bounds how long a manual step waits for the script to park.
const stepWait = time.Second

// app is the state shared by the REPL, the watcher and the inspector.
type app struct {
	config   util.Config
	dataDir  string
	world    *memworld.World
	eng      *engine.Engine
	driver   *host.Driver
	registry *command.Registry
	out      io.Writer

	mu         sync.Mutex
	scriptPath string
}

func newApp(config util.Config, dataDir string, out io.Writer) (*app, error) {
	w := newDemoWorld()
	eng, err := engine.New(w,
		engine.WithConfig(config),
		engine.WithLogger(util.Logger.With("component", "engine")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start processor: %w", err)
	}

	driver := host.NewDriver(config.TickInterval(), host.WithLogger(util.Logger.With("component", "driver")))
	driver.Add(eng)

	a := &app{
		config:  config,
		dataDir: dataDir,
		world:   w,
		eng:     eng,
		driver:  driver,
		out:     out,
	}
	a.registry = a.initCommandRegistry()
	return a, nil
}

// Close stops the processor.
func (a *app) Close() {
	a.eng.Close()
}

// context returns a command context writing to the app's output.
func (a *app) context() *command.Context {
	wd, _ := os.Getwd()
	return &command.Context{WorkingDir: wd, Out: a.out, State: a}
}

// execute runs one REPL line.
func (a *app) execute(line string) error {
	return a.registry.Execute(line, a.context())
}

// loadFile reads a script file and loads it into the processor.
func (a *app) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read script: %w", err)
	}
	a.eng.Load(string(data))

	a.mu.Lock()
	a.scriptPath = path
	a.mu.Unlock()
	return nil
}

// openSave loads the script stored in a save file.
func (a *app) openSave(path string) (store.Save, error) {
	save, err := store.Read(path)
	if err != nil {
		return store.Save{}, err
	}
	a.eng.Load(save.Code)

	a.mu.Lock()
	a.scriptPath = ""
	a.mu.Unlock()
	return save, nil
}

// script returns the file the current script was loaded from, if any.
func (a *app) script() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.scriptPath
}

// step pauses the driver and advances the script up to n times. It returns
// the number of steps taken.
func (a *app) step(n int) (int, error) {
	a.driver.Pause()
	if err := a.awaitParked(); err != nil {
		return 0, err
	}

	taken := 0
	for range n {
		if !a.eng.Step() {
			break
		}
		taken++
		if err := a.awaitParked(); err != nil {
			return taken, err
		}
	}
	return taken, nil
}

func (a *app) awaitParked() error {
	ctx, cancel := context.WithTimeout(context.Background(), stepWait)
	defer cancel()
	if err := a.eng.AwaitParked(ctx); err != nil {
		return fmt.Errorf("script did not reach its next checkpoint: %w", err)
	}
	return nil
}

// historyFile returns the REPL history path, or "" without a data dir.
func (a *app) historyFile() string {
	if a.dataDir == "" {
		return ""
	}
	return filepath.Join(a.dataDir, "history")
}
