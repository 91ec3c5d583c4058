// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 MindustryJsMicrocontroller Authors

package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fmoel/MindustryJsMicrocontroller/internal/command"
	"github.com/fmoel/MindustryJsMicrocontroller/internal/engine"
	"github.com/fmoel/MindustryJsMicrocontroller/internal/util"
)

func newTestApp(t *testing.T) (*app, *bytes.Buffer) {
	t.Helper()
	cfg := util.DefaultConfig()
	cfg.StepSettle = time.Second
	cfg.TeardownTimeout = time.Second
	cfg.WatchDebounce = 20 * time.Millisecond

	var out bytes.Buffer
	a, err := newApp(cfg, t.TempDir(), &out)
	if err != nil {
		t.Fatalf("newApp() error = %v", err)
	}
	t.Cleanup(a.Close)
	return a, &out
}

func writeScript(t *testing.T, dir, name, src string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(src), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

// run executes a REPL line and returns what it printed.
func run(t *testing.T, a *app, out *bytes.Buffer, line string) string {
	t.Helper()
	out.Reset()
	if err := a.execute(line); err != nil {
		t.Fatalf("%q: error = %v", line, err)
	}
	return out.String()
}

func TestLoadStepVars(t *testing.T) {
	a, out := newTestApp(t)
	dir := t.TempDir()
	path := writeScript(t, dir, "blink.js", "var msg = cpu.link(\"message1\");\nvar n = 7;\ncpu.print(\"n=\" + n);\nmsg.flush();\nwhile (true) {}")

	if got := run(t, a, out, "load "+path); !strings.Contains(got, "Loaded") || !strings.Contains(got, "5 lines") {
		t.Fatalf("load output = %q", got)
	}

	got := run(t, a, out, "step 5")
	if !strings.Contains(got, "Stepped 5") || !strings.Contains(got, "running") {
		t.Errorf("step output = %q", got)
	}
	if !a.driver.Paused() {
		t.Error("step left the clock running")
	}

	got = run(t, a, out, "vars")
	for _, want := range []string{"msg", "message", "n", "7"} {
		if !strings.Contains(got, want) {
			t.Errorf("vars output missing %q: %q", want, got)
		}
	}

	got = run(t, a, out, "links")
	if !strings.Contains(got, `"n=7"`) {
		t.Errorf("links output = %q, want flushed message", got)
	}

	got = run(t, a, out, "status")
	for _, want := range []string{"processor1", "running (active)", "Line:      5", "paused", path} {
		if !strings.Contains(got, want) {
			t.Errorf("status output missing %q: %q", want, got)
		}
	}
}

func TestStepArguments(t *testing.T) {
	a, out := newTestApp(t)

	if got := run(t, a, out, "step"); !strings.Contains(got, "Nothing to step (uninitialized)") {
		t.Errorf("step output = %q", got)
	}
	for _, line := range []string{"step 0", "step x", "step -2"} {
		if err := a.execute(line); err == nil {
			t.Errorf("%q: expected error", line)
		}
	}
}

func TestScriptErrorSurfaces(t *testing.T) {
	a, out := newTestApp(t)
	path := writeScript(t, t.TempDir(), "bad.js", "console.log(\"before\");\nundefinedThing();")

	run(t, a, out, "load "+path)
	run(t, a, out, "step 2")

	if a.eng.State() != engine.StateErrored {
		t.Fatalf("State() = %v, want errored", a.eng.State())
	}
	got := run(t, a, out, "log")
	if !strings.Contains(got, "before") || !strings.Contains(got, "ERROR: ") {
		t.Errorf("log output = %q", got)
	}
	got = run(t, a, out, "status")
	if !strings.Contains(got, "Error:") || !strings.Contains(got, "undefinedThing") {
		t.Errorf("status output = %q", got)
	}
}

func TestSyntaxErrorLoad(t *testing.T) {
	a, out := newTestApp(t)
	path := writeScript(t, t.TempDir(), "broken.js", "while (")

	got := run(t, a, out, "load "+path)
	if !strings.Contains(got, "with errors") {
		t.Errorf("load output = %q", got)
	}
}

func TestSaveOpen(t *testing.T) {
	a, out := newTestApp(t)
	dir := t.TempDir()
	src := "var saved = 42;\nwhile (true) {}"
	path := writeScript(t, dir, "keep.js", src)
	savePath := filepath.Join(dir, "keep.yaml")

	if err := a.execute("save " + savePath); err == nil {
		t.Fatal("save with nothing loaded succeeded")
	}

	run(t, a, out, "load "+path)
	if got := run(t, a, out, "save "+savePath); !strings.Contains(got, "Saved") {
		t.Fatalf("save output = %q", got)
	}

	run(t, a, out, "interrupt")
	if a.eng.State() != engine.StateStopped {
		t.Fatalf("State() = %v after interrupt", a.eng.State())
	}

	got := run(t, a, out, "open "+savePath)
	if !strings.Contains(got, "processor1") {
		t.Errorf("open output = %q", got)
	}
	if a.eng.Code() != src {
		t.Errorf("Code() = %q, want %q", a.eng.Code(), src)
	}
	run(t, a, out, "step 2")
	if got := run(t, a, out, "vars"); !strings.Contains(got, "42") {
		t.Errorf("vars output = %q", got)
	}

	data, err := os.ReadFile(savePath)
	if err != nil {
		t.Fatal(err)
	}
	tampered := filepath.Join(dir, "tampered.yaml")
	if err := os.WriteFile(tampered, bytes.Replace(data, []byte("42"), []byte("43"), 1), 0600); err != nil {
		t.Fatal(err)
	}
	if err := a.execute("open " + tampered); err == nil {
		t.Error("open of a tampered save succeeded")
	}
}

func TestRunPause(t *testing.T) {
	a, out := newTestApp(t)

	run(t, a, out, "pause")
	if !a.driver.Paused() {
		t.Error("pause did not pause")
	}
	if got := run(t, a, out, "run"); !strings.Contains(got, "60 ticks/s") {
		t.Errorf("run output = %q", got)
	}
	if a.driver.Paused() {
		t.Error("run did not resume")
	}
}

func TestHelpAndQuit(t *testing.T) {
	a, out := newTestApp(t)

	got := run(t, a, out, "help")
	for _, want := range []string{"Script:", "Execution:", "load <file>", "step [n]"} {
		if !strings.Contains(got, want) {
			t.Errorf("help output missing %q", want)
		}
	}
	if got := run(t, a, out, "help s"); !strings.Contains(got, "Command: step") {
		t.Errorf("help s output = %q", got)
	}
	if err := a.execute("help nope"); err == nil {
		t.Error("help for unknown command succeeded")
	}
	if err := a.execute("exit"); !errors.Is(err, command.ErrExit) {
		t.Errorf("exit error = %v", err)
	}
	if !a.handleLine("quit") {
		t.Error("handleLine(quit) did not end the REPL")
	}
	out.Reset()
	if a.handleLine("bogus") {
		t.Error("handleLine(bogus) ended the REPL")
	}
	if !strings.Contains(out.String(), "Error: unknown command") {
		t.Errorf("output = %q", out.String())
	}
}

func TestBasicREPL(t *testing.T) {
	a, out := newTestApp(t)
	startBasicREPL(a, strings.NewReader("status\nquit\nstatus\n"))

	got := out.String()
	if strings.Count(got, "Processor:") != 1 {
		t.Errorf("REPL did not stop at quit: %q", got)
	}
	if !strings.Contains(got, "processor1[uninitialized]> ") {
		t.Errorf("prompt missing: %q", got)
	}
}

func TestCompleteFiles(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "a.js", "")
	writeScript(t, dir, "b.yaml", "")
	writeScript(t, dir, ".hidden.js", "")
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0700); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		exts []string
		want []string
	}{
		{name: "scripts", exts: []string{".js"}, want: []string{"a.js", "sub/"}},
		{name: "saves", exts: []string{".yaml", ".yml", ".cbor"}, want: []string{"b.yaml", "sub/"}},
		{name: "any", exts: nil, want: []string{"a.js", "b.yaml", "sub/"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := completeFiles(dir+string(filepath.Separator), tt.exts)
			if len(got) != len(tt.want) {
				t.Fatalf("completeFiles() = %q, want %d entries", got, len(tt.want))
			}
			for i, w := range tt.want {
				want := filepath.Join(dir, w)
				if strings.HasSuffix(w, "/") {
					want += string(filepath.Separator)
				}
				if got[i] != want {
					t.Errorf("got[%d] = %q, want %q", i, got[i], want)
				}
			}
		})
	}
}
