// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 MindustryJsMicrocontroller Authors

// Package host simulates the game side of a processor: a fixed-rate tick
// loop that hands every registered processor its step budget once per tick.
package host

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"
)

// Processor is anything the driver can tick. *engine.Engine implements it.
type Processor interface {
	Name() string
	Tick() int
}

// Driver is the fixed-rate tick loop.
type Driver struct {
	interval time.Duration
	logger   *slog.Logger

	mu    sync.Mutex
	procs []Processor

	paused   atomic.Bool
	ticks    atomic.Uint64
	overruns atomic.Uint64
}

// DriverOption is a functional option for configuring the Driver
type DriverOption func(*Driver)

// WithLogger sets the structured logger
func WithLogger(l *slog.Logger) DriverOption {
	return func(d *Driver) {
		if l != nil {
			d.logger = l
		}
	}
}

// NewDriver creates a driver ticking every interval.
func NewDriver(interval time.Duration, opts ...DriverOption) *Driver {
	if interval <= 0 {
		interval = time.Second / 60
	}
	d := &Driver{
		interval: interval,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Add registers a processor. Processors tick in registration order.
func (d *Driver) Add(p Processor) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.procs = append(d.procs, p)
}

// Remove unregisters a processor.
func (d *Driver) Remove(p Processor) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.procs = slices.DeleteFunc(d.procs, func(q Processor) bool { return q == p })
}

// Pause stops ticking without stopping the loop.
func (d *Driver) Pause() { d.paused.Store(true) }

// Resume continues ticking after Pause.
func (d *Driver) Resume() { d.paused.Store(false) }

// Paused reports whether ticking is paused.
func (d *Driver) Paused() bool { return d.paused.Load() }

// Ticks returns the number of ticks delivered so far.
func (d *Driver) Ticks() uint64 { return d.ticks.Load() }

// Overruns returns how many ticks took longer than the interval.
func (d *Driver) Overruns() uint64 { return d.overruns.Load() }

// TickOnce ticks every processor once and returns the total steps taken.
func (d *Driver) TickOnce() int {
	d.mu.Lock()
	procs := slices.Clone(d.procs)
	d.mu.Unlock()

	steps := 0
	for _, p := range procs {
		steps += p.Tick()
	}
	d.ticks.Add(1)
	return steps
}

// Run drives the tick loop until ctx is done.
func (d *Driver) Run(ctx context.Context) error {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if d.Paused() {
				continue
			}
			start := time.Now()
			d.TickOnce()
			if took := time.Since(start); took > d.interval {
				n := d.overruns.Add(1)
				d.logger.Debug("tick over budget", "took", took, "budget", d.interval, "overruns", n)
			}
		}
	}
}
