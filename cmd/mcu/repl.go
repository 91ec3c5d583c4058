// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 MindustryJsMicrocontroller Authors

package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/chzyer/readline"
	"golang.org/x/term"

	"github.com/fmoel/MindustryJsMicrocontroller/internal/command"
	"github.com/fmoel/MindustryJsMicrocontroller/internal/fsutil"
	"github.com/fmoel/MindustryJsMicrocontroller/internal/version"
)

// prompt shows the processor name and its state.
func (a *app) prompt() string {
	return fmt.Sprintf("%s[%s]> ", a.eng.Name(), a.eng.State())
}

// handleLine runs one line and reports whether the REPL should exit.
func (a *app) handleLine(line string) bool {
	err := a.execute(line)
	if errors.Is(err, command.ErrExit) {
		return true
	}
	if err != nil {
		_, _ = fmt.Fprintf(a.out, "Error: %v\n", err)
	}
	return false
}

func startBasicREPL(a *app, in io.Reader) {
	_, _ = fmt.Fprintln(a.out, "Running in basic mode (no history/completion)")
	scanner := bufio.NewScanner(in)
	for {
		_, _ = fmt.Fprint(a.out, a.prompt())
		if !scanner.Scan() {
			break
		}
		if a.handleLine(scanner.Text()) {
			break
		}
	}
}

func startREPL(a *app) {
	_, _ = fmt.Fprintln(a.out, version.Banner("mcu"))
	_, _ = fmt.Fprintln(a.out, "Type 'help' for available commands or 'quit' to exit")

	if !term.IsTerminal(int(os.Stdin.Fd())) { // #nosec G115 - file descriptors are small integers
		startBasicREPL(a, os.Stdin)
		return
	}

	historyFile := a.historyFile()
	if historyFile != "" {
		if err := fsutil.MkdirAll(a.dataDir); err != nil {
			historyFile = ""
		}
	}

	rlConfig := &readline.Config{
		Prompt:            "\033[32m" + a.prompt() + "\033[0m",
		HistoryFile:       historyFile,
		HistoryLimit:      1000,
		AutoComplete:      newCompleter(a.registry),
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	}

	rl, err := readline.NewEx(rlConfig)
	if err != nil {
		_, _ = fmt.Fprintf(a.out, "Failed to create readline instance, falling back to basic input: %v\n", err)
		startBasicREPL(a, os.Stdin)
		return
	}
	defer func() {
		_ = rl.Close() // Best-effort close, errors during shutdown not critical
	}()

	for {
		rl.SetPrompt("\033[32m" + a.prompt() + "\033[0m")

		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				if len(line) == 0 {
					_, _ = fmt.Fprintln(a.out, "Use 'quit' or 'exit' to exit")
				}
				continue
			}
			if errors.Is(err, io.EOF) {
				_, _ = fmt.Fprintln(a.out, "\nGoodbye!")
				break
			}
			_, _ = fmt.Fprintf(a.out, "Error reading input: %v\n", err)
			continue
		}

		if a.handleLine(line) {
			break
		}
	}
}
