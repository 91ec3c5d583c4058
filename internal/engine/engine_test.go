// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 MindustryJsMicrocontroller Authors

package engine

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fmoel/MindustryJsMicrocontroller/internal/util"
	"github.com/fmoel/MindustryJsMicrocontroller/internal/world/memworld"
)

const loopScript = "var n = 0;\nwhile (true) {\n  n++;\n}"

func testConfig() util.Config {
	cfg := util.DefaultConfig()
	cfg.TeardownTimeout = time.Second
	cfg.StepSettle = time.Second
	cfg.RunawayTimeout = 0
	return cfg
}

func newEngine(t *testing.T, cfg util.Config) (*Engine, *memworld.World) {
	t.Helper()
	w := memworld.New()
	eng, err := New(w, WithConfig(cfg))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(eng.Close)
	return eng, w
}

func settle(t *testing.T, eng *Engine) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := eng.AwaitParked(ctx); err != nil {
		t.Fatalf("AwaitParked() error = %v", err)
	}
}

// steps releases the script n times, waiting for it after each.
func steps(t *testing.T, eng *Engine, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		if !eng.Step() {
			t.Fatalf("Step() %d refused in state %v", i, eng.State())
		}
		settle(t, eng)
	}
}

func TestNew(t *testing.T) {
	bad := util.DefaultConfig()
	bad.InstructionsPerTick = 0

	tests := []struct {
		name    string
		opts    []EngineOption
		wantErr bool
	}{
		{name: "defaults", opts: nil},
		{name: "valid config", opts: []EngineOption{WithConfig(testConfig())}},
		{name: "invalid config", opts: []EngineOption{WithConfig(bad)}, wantErr: true},
		{name: "nil policy", opts: []EngineOption{WithPolicy(nil)}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng, err := New(memworld.New(), tt.opts...)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil {
				defer eng.Close()
				if eng.State() != StateUninitialized {
					t.Errorf("State() = %v, want uninitialized", eng.State())
				}
			}
		})
	}
}

func TestStepWithoutSession(t *testing.T) {
	eng, _ := newEngine(t, testConfig())

	for i := 0; i < 5; i++ {
		if eng.Step() {
			t.Fatal("Step() succeeded with nothing loaded")
		}
		if snap := eng.Snapshot(); snap == nil || len(snap) != 0 {
			t.Fatalf("Snapshot() = %v, want empty map", snap)
		}
	}
	if eng.HasErrors() {
		t.Error("HasErrors() = true")
	}
	if eng.Status() != StatusNoOutput {
		t.Errorf("Status() = %v, want noOutput", eng.Status())
	}
}

func TestBoundedProgress(t *testing.T) {
	eng, _ := newEngine(t, testConfig())
	eng.Load(loopScript)
	settle(t, eng)

	prev := eng.Snapshot()["n"].Number
	for i := 0; i < 20; i++ {
		steps(t, eng, 1)
		cur := eng.Snapshot()["n"].Number
		if cur-prev > 1 {
			t.Fatalf("one step advanced n from %v to %v", prev, cur)
		}
		prev = cur
	}
	if prev < 5 {
		t.Errorf("n = %v after 20 steps, want at least 5", prev)
	}
	if eng.State() != StateRunning || eng.Status() != StatusActive {
		t.Errorf("State() = %v, Status() = %v", eng.State(), eng.Status())
	}
}

func TestErrorThenReload(t *testing.T) {
	eng, _ := newEngine(t, testConfig())
	eng.Load("var a = 1;\nthrow new Error(\"bad thing\");")
	settle(t, eng)
	steps(t, eng, 2)

	if eng.State() != StateErrored || !eng.HasErrors() {
		t.Fatalf("State() = %v, HasErrors() = %v", eng.State(), eng.HasErrors())
	}
	if !strings.Contains(eng.LastErrorText(), "bad thing") {
		t.Errorf("LastErrorText() = %q", eng.LastErrorText())
	}
	if !strings.Contains(eng.Console().Content(), "ERROR: ") {
		t.Errorf("console = %q, want an ERROR line", eng.Console().Content())
	}
	if eng.Status() != StatusNoInput {
		t.Errorf("Status() = %v, want noInput", eng.Status())
	}
	if eng.Line() != 2 {
		t.Errorf("Line() = %d, want 2", eng.Line())
	}

	eng.Load("var ok = 1;\nwhile (true) {}")
	if eng.HasErrors() || eng.LastErrorText() != "" {
		t.Fatalf("errors not cleared by load: %q", eng.LastErrorText())
	}
	settle(t, eng)
	steps(t, eng, 2)
	if got := eng.Snapshot()["ok"].Number; got != 1 {
		t.Errorf("ok = %v, want 1", got)
	}
}

func TestOverlappingLoads(t *testing.T) {
	for _, mode := range []string{util.TeardownBounded, util.TeardownSync} {
		t.Run(mode, func(t *testing.T) {
			cfg := testConfig()
			cfg.Teardown = mode
			eng, _ := newEngine(t, cfg)

			for i := 0; i < 10; i++ {
				eng.Load("var which = \"first\";\nwhile (true) {}")
				eng.Load("var which = \"second\";\nwhile (true) {}")
				settle(t, eng)
				steps(t, eng, 2)

				if got := eng.Snapshot()["which"].Text; got != "second" {
					t.Fatalf("round %d: which = %q, want second", i, got)
				}
				if !strings.HasPrefix(eng.Code(), "var which = \"second\"") {
					t.Fatalf("Code() = %q", eng.Code())
				}
			}
		})
	}
}

func TestConcurrentLoads(t *testing.T) {
	for _, mode := range []string{util.TeardownBounded, util.TeardownSync} {
		t.Run(mode, func(t *testing.T) {
			cfg := testConfig()
			cfg.Teardown = mode
			eng, _ := newEngine(t, cfg)
			eng.Load(loopScript)
			settle(t, eng)
			steps(t, eng, 2)

			for i := 0; i < 10; i++ {
				stop := make(chan struct{})
				stepped := make(chan struct{})
				go func() {
					defer close(stepped)
					for {
						select {
						case <-stop:
							return
						default:
							eng.Step()
						}
					}
				}()

				var wg sync.WaitGroup
				for _, which := range []string{"first", "second"} {
					wg.Add(1)
					go func() {
						defer wg.Done()
						eng.Load("var which = \"" + which + "\";\nwhile (true) {}")
					}()
				}
				wg.Wait()
				close(stop)
				<-stepped

				settle(t, eng)
				steps(t, eng, 2)
				got := eng.Snapshot()["which"].Text
				if got != "first" && got != "second" {
					t.Fatalf("round %d: which = %q", i, got)
				}
				if want := "var which = \"" + got + "\""; !strings.HasPrefix(eng.Code(), want) {
					t.Fatalf("round %d: session ran %q but Code() = %q", i, got, eng.Code())
				}
				if eng.State() != StateRunning || eng.HasErrors() {
					t.Fatalf("round %d: State() = %v, error %q", i, eng.State(), eng.LastErrorText())
				}
			}
		})
	}
}

func TestInterrupt(t *testing.T) {
	eng, _ := newEngine(t, testConfig())
	eng.Load(loopScript)
	settle(t, eng)
	steps(t, eng, 3)

	eng.Interrupt()
	settle(t, eng)

	if eng.State() != StateStopped {
		t.Errorf("State() = %v, want stopped", eng.State())
	}
	if eng.HasErrors() {
		t.Errorf("interrupt surfaced as error: %q", eng.LastErrorText())
	}
	if eng.Step() {
		t.Error("Step() succeeded after interrupt")
	}
	if len(eng.Snapshot()) != 0 {
		t.Error("Snapshot() not empty after interrupt")
	}
}

func TestMalformedLoad(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{name: "syntax error", src: "while (", want: "SyntaxError"},
		{name: "reserved identifier", src: "var __mcu_x = 1;", want: "reserved"},
		{name: "reserved method key", src: "var o = { __mcu_line() {} };\nwhile (true) {}", want: "reserved"},
		{
			name: "checkpoints shadowed by with",
			src:  "var n = 0;\nwith ({__mcu_yield() {}, __mcu_line() {}}) { while (n < 100000) { n++; } }\nwhile (true) {}",
			want: "with statements",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng, _ := newEngine(t, testConfig())
			eng.Load(tt.src)
			settle(t, eng)

			if eng.State() != StateErrored {
				t.Fatalf("State() = %v, want errored", eng.State())
			}
			if !strings.Contains(eng.LastErrorText(), tt.want) {
				t.Errorf("LastErrorText() = %q, want it to contain %q", eng.LastErrorText(), tt.want)
			}
			if eng.Code() != tt.src {
				t.Errorf("Code() = %q, want %q", eng.Code(), tt.src)
			}
			if eng.Step() {
				t.Error("Step() succeeded on a rejected script")
			}
		})
	}
}

func TestSleepGatesSteps(t *testing.T) {
	eng, _ := newEngine(t, testConfig())
	eng.Load("cpu.sleep(100);\nvar after = 1;\nwhile (true) {}")
	settle(t, eng)
	steps(t, eng, 1)

	if eng.Step() {
		t.Fatal("Step() succeeded during sleep")
	}
	time.Sleep(150 * time.Millisecond)
	steps(t, eng, 2)
	if got := eng.Snapshot()["after"].Number; got != 1 {
		t.Errorf("after = %v, want 1", got)
	}
}

func TestHugeSleepStaysGated(t *testing.T) {
	for _, ms := range []string{"1e13", "Infinity"} {
		t.Run(ms, func(t *testing.T) {
			eng, _ := newEngine(t, testConfig())
			eng.Load("cpu.sleep(" + ms + ");\nvar after = 1;\nwhile (true) {}")
			settle(t, eng)
			steps(t, eng, 1)

			for i := 0; i < 3; i++ {
				if eng.Step() {
					t.Fatalf("Step() %d succeeded during sleep(%s)", i, ms)
				}
			}
			if got := eng.Snapshot()["after"].Number; got != 0 {
				t.Errorf("after = %v, want the script still asleep", got)
			}
		})
	}
}

func TestCompletionStops(t *testing.T) {
	eng, _ := newEngine(t, testConfig())
	eng.Load("var a = 1;")
	settle(t, eng)
	steps(t, eng, 1)

	if eng.State() != StateStopped {
		t.Errorf("State() = %v, want stopped", eng.State())
	}
	if eng.HasErrors() {
		t.Errorf("HasErrors() = true: %q", eng.LastErrorText())
	}
}

func TestRestartOnExit(t *testing.T) {
	cfg := testConfig()
	cfg.RestartOnExit = true
	eng, w := newEngine(t, cfg)
	eng.Load("cpu.print(\"x\");")
	settle(t, eng)
	steps(t, eng, 4)

	if got := w.PendingPrint(); got != "xx" {
		t.Errorf("print buffer = %q, want two runs", got)
	}
	if eng.State() != StateRunning {
		t.Errorf("State() = %v, want running", eng.State())
	}
}

func TestRunawayGuard(t *testing.T) {
	cfg := testConfig()
	cfg.RunawayTimeout = 50 * time.Millisecond
	eng, _ := newEngine(t, cfg)
	eng.Load("var f = new Function(\"while (true) {}\");\nf();")
	settle(t, eng)
	steps(t, eng, 1)
	if !eng.Step() {
		t.Fatal("Step() into the unchecked loop refused")
	}

	time.Sleep(100 * time.Millisecond)
	if eng.Step() {
		t.Fatal("Step() succeeded on a runaway script")
	}
	settle(t, eng)

	if eng.State() != StateErrored {
		t.Fatalf("State() = %v, want errored", eng.State())
	}
	if !strings.Contains(eng.LastErrorText(), ErrRunaway.Error()) {
		t.Errorf("LastErrorText() = %q", eng.LastErrorText())
	}
}

func TestTick(t *testing.T) {
	cfg := testConfig()
	cfg.InstructionsPerTick = 3
	eng, _ := newEngine(t, cfg)

	if got := eng.Tick(); got != 0 {
		t.Errorf("Tick() with nothing loaded = %d, want 0", got)
	}

	eng.Load(loopScript)
	settle(t, eng)
	if got := eng.Tick(); got != 3 {
		t.Errorf("Tick() = %d, want 3", got)
	}
}

func TestReloadClearsConsole(t *testing.T) {
	eng, _ := newEngine(t, testConfig())
	eng.Load("console.log(\"old\");\nwhile (true) {}")
	settle(t, eng)
	steps(t, eng, 2)
	if !strings.Contains(eng.Console().Content(), "old") {
		t.Fatalf("console = %q, want old", eng.Console().Content())
	}

	eng.Load("while (true) {}")
	if strings.Contains(eng.Console().Content(), "old") {
		t.Errorf("console kept %q across reload", eng.Console().Content())
	}
}

func TestCloseStopsWorker(t *testing.T) {
	eng, err := New(memworld.New(), WithConfig(testConfig()))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	eng.Load(loopScript)
	settle(t, eng)

	done := make(chan struct{})
	go func() {
		eng.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Close() did not return")
	}

	eng.Load("var a = 1;")
	if eng.Step() {
		t.Error("Step() succeeded after Close")
	}
	eng.Close()
}

func TestStateStrings(t *testing.T) {
	tests := []struct {
		got  string
		want string
	}{
		{StateUninitialized.String(), "uninitialized"},
		{StateErrored.String(), "errored"},
		{StateFatal.String(), "fatal"},
		{StatusNoInput.String(), "noInput"},
		{Status(42).String(), "unknown"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("got %q, want %q", tt.got, tt.want)
		}
	}
}
