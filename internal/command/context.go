// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 MindustryJsMicrocontroller Authors

package command

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ErrExit is returned by a handler to end the REPL.
var ErrExit = errExit{}

type errExit struct{}

func (errExit) Error() string { return "exit" }

// Context carries the per-invocation state a handler may use.
type Context struct {
	// RawArgs contains the argument string before quote-stripping.
	RawArgs string

	// WorkingDir resolves relative file arguments. Empty means the process
	// working directory.
	WorkingDir string

	// Out receives command output. Nil means stdout.
	Out io.Writer

	// State is the front end's own state, opaque to the registry.
	State any
}

// Writer returns the output writer.
func (ctx *Context) Writer() io.Writer {
	if ctx == nil || ctx.Out == nil {
		return os.Stdout
	}
	return ctx.Out
}

// Printf writes formatted output.
func (ctx *Context) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(ctx.Writer(), format, args...)
}

// Println writes a line of output.
func (ctx *Context) Println(args ...any) {
	_, _ = fmt.Fprintln(ctx.Writer(), args...)
}

// Path resolves a file argument against WorkingDir.
func (ctx *Context) Path(name string) string {
	if ctx == nil || ctx.WorkingDir == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(ctx.WorkingDir, name)
}
