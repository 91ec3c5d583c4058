// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 MindustryJsMicrocontroller Authors

package host

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fmoel/MindustryJsMicrocontroller/internal/engine"
	"github.com/fmoel/MindustryJsMicrocontroller/internal/util"
	"github.com/fmoel/MindustryJsMicrocontroller/internal/world"
	"github.com/fmoel/MindustryJsMicrocontroller/internal/world/memworld"
)

// counter is a processor that takes a fixed number of steps per tick.
type counter struct {
	name  string
	per   int
	ticks atomic.Int64
}

func (c *counter) Name() string { return c.name }

func (c *counter) Tick() int {
	c.ticks.Add(1)
	return c.per
}

func TestTickOnce(t *testing.T) {
	d := NewDriver(time.Millisecond)
	a := &counter{name: "a", per: 2}
	b := &counter{name: "b", per: 3}
	d.Add(a)
	d.Add(b)

	if got := d.TickOnce(); got != 5 {
		t.Errorf("TickOnce() = %d, want 5", got)
	}

	d.Remove(a)
	if got := d.TickOnce(); got != 3 {
		t.Errorf("TickOnce() after Remove = %d, want 3", got)
	}
	if a.ticks.Load() != 1 || b.ticks.Load() != 2 {
		t.Errorf("ticks a=%d b=%d, want 1 and 2", a.ticks.Load(), b.ticks.Load())
	}
	if d.Ticks() != 2 {
		t.Errorf("Ticks() = %d, want 2", d.Ticks())
	}
}

func TestRunUntilCancelled(t *testing.T) {
	d := NewDriver(time.Millisecond)
	c := &counter{name: "c", per: 1}
	d.Add(c)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := d.Run(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Run() error = %v, want deadline exceeded", err)
	}
	if c.ticks.Load() == 0 {
		t.Error("processor never ticked")
	}
}

func TestPause(t *testing.T) {
	d := NewDriver(time.Millisecond)
	c := &counter{name: "c", per: 1}
	d.Add(c)
	d.Pause()
	if !d.Paused() {
		t.Fatal("Paused() = false")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_ = d.Run(ctx)
	if c.ticks.Load() != 0 {
		t.Errorf("paused driver ticked %d times", c.ticks.Load())
	}

	d.Resume()
	if d.Paused() {
		t.Error("Paused() = true after Resume")
	}
}

func TestDrivesEngine(t *testing.T) {
	w := memworld.New()
	msg := w.Add(memworld.Spec{Kind: world.KindMessage, Name: "message"})
	w.Link("message1", msg)

	cfg := util.DefaultConfig()
	cfg.InstructionsPerTick = 5
	cfg.StepSettle = time.Second
	eng, err := engine.New(w, engine.WithConfig(cfg))
	if err != nil {
		t.Fatalf("engine.New() error = %v", err)
	}
	defer eng.Close()

	eng.Load("var m = cpu.link(\"message1\");\ncpu.print(\"hello\");\nm.flush();\nwhile (true) {}")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := eng.AwaitParked(ctx); err != nil {
		t.Fatal(err)
	}

	d := NewDriver(time.Millisecond)
	d.Add(eng)
	for i := 0; i < 5 && w.Message(msg) == ""; i++ {
		d.TickOnce()
	}
	if got := w.Message(msg); got != "hello" {
		t.Errorf("message = %q, want hello", got)
	}
}
