// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 MindustryJsMicrocontroller Authors

// mcu runs a JavaScript microcontroller against a simulated map, with a
// command REPL or a live inspector.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"golang.org/x/term"

	"github.com/fmoel/MindustryJsMicrocontroller/cmd/mcu/internal/tui"
	"github.com/fmoel/MindustryJsMicrocontroller/internal/fsutil"
	"github.com/fmoel/MindustryJsMicrocontroller/internal/util"
	"github.com/fmoel/MindustryJsMicrocontroller/internal/version"
)

func main() {
	// Define all flags upfront before parsing
	printVersion := flag.Bool("version", false, "Print version and exit")
	dataDir := flag.String("d", "", "Data directory (default: ~/.mcu or MCU_DATA)")
	scriptFile := flag.String("script", "", "Load a script file on start")
	watch := flag.Bool("watch", false, "Reload the -script file when it changes")
	useTUI := flag.Bool("tui", false, "Start the live inspector instead of the REPL")
	flag.Parse()

	// Handle early-exit flags
	if *printVersion {
		fmt.Printf("mcu %s\n", version.String())
		os.Exit(0)
	}
	if *watch && *scriptFile == "" {
		fmt.Fprintln(os.Stderr, "Error: -watch requires -script")
		os.Exit(2)
	}
	if *useTUI && !term.IsTerminal(int(os.Stdout.Fd())) { // #nosec G115 - file descriptors are small integers
		fmt.Fprintln(os.Stderr, "Error: -tui requires a terminal")
		os.Exit(2)
	}

	resolvedDataDir := util.GetDataDir(*dataDir)

	// The inspector owns the screen, so its diagnostics go to a file
	if *useTUI {
		closeLog, err := logToFile(resolvedDataDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer closeLog()
	} else {
		util.InitLogger()
	}

	config, err := util.LoadConfig(resolvedDataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	a, err := newApp(config, resolvedDataDir, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	go func() {
		_ = a.driver.Run(ctx)
	}()

	if *scriptFile != "" {
		if err := a.loadFile(*scriptFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if !*useTUI {
			a.reportLoad(a.context(), *scriptFile)
		}
		if *watch {
			if err := startScriptWatcher(ctx, a, *scriptFile, nil); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			util.Logger.Info("watching script", "path", *scriptFile, "debounce", config.WatchDebounce)
		}
	}

	if *useTUI {
		err := tui.Run(ctx, tui.Options{
			Engine: a.eng,
			Driver: a.driver,
			Source: *scriptFile,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	startREPL(a)
}

// logToFile sends diagnostics to mcu.log in the data directory.
func logToFile(dataDir string) (func(), error) {
	if dataDir == "" {
		util.Logger = util.DiscardLogger()
		return func() {}, nil
	}
	if err := fsutil.MkdirAll(dataDir); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(dataDir, "mcu.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, fsutil.DataFilePerm)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	util.InitLoggerTo(f)
	return func() { _ = f.Close() }, nil
}
