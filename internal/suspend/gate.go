// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 MindustryJsMicrocontroller Authors

// Package suspend pairs external step signals with units of script progress.
//
// A single worker goroutine parks at each suspension point. Any other
// goroutine may release it. A release that finds nobody parked is dropped,
// never remembered, so one release buys at most one unit of progress.
package suspend

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrAborted is returned by Park when the worker must unwind instead of
// resuming script code.
var ErrAborted = errors.New("suspension aborted")

// slot is one outstanding park.
type slot struct {
	wake chan struct{}
	done chan struct{}
}

type task struct {
	fn   func()
	done chan struct{}
}

// Gate is the park/wake primitive shared by one worker and its drivers.
type Gate struct {
	mu          sync.Mutex
	current     *slot
	holdUntil   time.Time
	lastRelease time.Time
	watch       chan struct{}
	tasks       chan task
	now         func() time.Time
}

// Option configures a Gate.
type Option func(*Gate)

// WithClock replaces time.Now for the sleep gate.
func WithClock(now func() time.Time) Option {
	return func(g *Gate) { g.now = now }
}

// New returns an open gate with nobody parked.
func New(opts ...Option) *Gate {
	g := &Gate{
		watch: make(chan struct{}),
		tasks: make(chan task),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	g.lastRelease = g.now()
	return g
}

// Park blocks the calling worker until Release or until ctx is done.
// While parked, functions passed to Do run on the caller's goroutine.
func (g *Gate) Park(ctx context.Context) error {
	if ctx.Err() != nil {
		return ErrAborted
	}

	s := &slot{wake: make(chan struct{}), done: make(chan struct{})}
	g.mu.Lock()
	g.current = s
	close(g.watch)
	g.watch = make(chan struct{})
	g.mu.Unlock()

	defer func() {
		g.mu.Lock()
		if g.current == s {
			g.current = nil
		}
		g.mu.Unlock()
		close(s.done)
	}()

	for {
		select {
		case <-s.wake:
			// A release racing an abort must not resume the script.
			if ctx.Err() != nil {
				return ErrAborted
			}
			return nil
		case t := <-g.tasks:
			t.fn()
			close(t.done)
		case <-ctx.Done():
			return ErrAborted
		}
	}
}

// Release wakes the parked worker. It reports false, and has no effect, when
// nobody is parked or the sleep gate is closed.
func (g *Gate) Release() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.current == nil {
		return false
	}
	now := g.now()
	if now.Before(g.holdUntil) {
		return false
	}
	close(g.current.wake)
	g.current = nil
	g.lastRelease = now
	return true
}

// Hold refuses every Release until the given time.
func (g *Gate) Hold(until time.Time) {
	g.mu.Lock()
	g.holdUntil = until
	g.mu.Unlock()
}

// never is a hold deadline no clock reaches.
var never = time.Unix(1<<62, 0)

// HoldFor holds releases for d from now. A d too large to represent holds
// forever instead of wrapping into the past.
func (g *Gate) HoldFor(d time.Duration) {
	now := g.now()
	until := now.Add(d)
	if d > 0 && !until.After(now) {
		until = never
	}
	g.Hold(until)
}

// Held reports whether the sleep gate is currently closed.
func (g *Gate) Held() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.now().Before(g.holdUntil)
}

// Parked reports whether a worker is waiting for Release.
func (g *Gate) Parked() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.current != nil
}

// LastRelease returns the time of the last successful Release, or of New.
func (g *Gate) LastRelease() time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastRelease
}

// Watch returns a channel closed when the next park begins or Notify is called.
// Take it before Release to wait for the worker to come back.
func (g *Gate) Watch() <-chan struct{} {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.watch
}

// Notify wakes Watch callers without a park, e.g. when the worker goes idle.
func (g *Gate) Notify() {
	g.mu.Lock()
	close(g.watch)
	g.watch = make(chan struct{})
	g.mu.Unlock()
}

// Do runs fn on the parked worker and waits for it. It returns false without
// running fn when nobody is parked.
func (g *Gate) Do(fn func()) bool {
	g.mu.Lock()
	s := g.current
	g.mu.Unlock()
	if s == nil {
		return false
	}

	t := task{fn: fn, done: make(chan struct{})}
	select {
	case g.tasks <- t:
		<-t.done
		return true
	case <-s.done:
		return false
	}
}
