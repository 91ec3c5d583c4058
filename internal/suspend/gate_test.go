// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 MindustryJsMicrocontroller Authors

package suspend

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"
)

// parkAsync parks a worker and returns once it is parked.
func parkAsync(t *testing.T, g *Gate, ctx context.Context) <-chan error {
	t.Helper()
	w := g.Watch()
	result := make(chan error, 1)
	go func() { result <- g.Park(ctx) }()
	select {
	case <-w:
	case <-time.After(2 * time.Second):
		t.Fatal("worker never parked")
	}
	return result
}

func waitResult(t *testing.T, result <-chan error) error {
	t.Helper()
	select {
	case err := <-result:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("Park did not return")
		return nil
	}
}

func TestReleaseWithoutParkIsDropped(t *testing.T) {
	g := New()
	if g.Release() {
		t.Fatal("Release succeeded with nobody parked")
	}

	result := parkAsync(t, g, context.Background())
	select {
	case <-result:
		t.Fatal("dropped release was remembered")
	case <-time.After(20 * time.Millisecond):
	}

	if !g.Release() {
		t.Fatal("Release failed while parked")
	}
	if err := waitResult(t, result); err != nil {
		t.Fatalf("Park() = %v, want nil", err)
	}
}

func TestReleaseAppliesOnce(t *testing.T) {
	g := New()
	result := parkAsync(t, g, context.Background())
	if !g.Release() {
		t.Fatal("first Release failed")
	}
	if g.Release() {
		t.Fatal("second Release applied to the same park")
	}
	if err := waitResult(t, result); err != nil {
		t.Fatal(err)
	}
	if g.Parked() {
		t.Error("Parked() true after release")
	}
}

func TestParkAbort(t *testing.T) {
	g := New()
	ctx, cancel := context.WithCancel(context.Background())
	result := parkAsync(t, g, ctx)
	if !g.Parked() {
		t.Fatal("Parked() = false")
	}
	cancel()
	if err := waitResult(t, result); !errors.Is(err, ErrAborted) {
		t.Fatalf("Park() = %v, want ErrAborted", err)
	}
	if g.Parked() {
		t.Error("still parked after abort")
	}

	// An already cancelled context never parks.
	if err := g.Park(ctx); !errors.Is(err, ErrAborted) {
		t.Errorf("Park(cancelled) = %v, want ErrAborted", err)
	}
}

func TestHold(t *testing.T) {
	var mu sync.Mutex
	now := time.Unix(1000, 0)
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}
	advance := func(d time.Duration) {
		mu.Lock()
		now = now.Add(d)
		mu.Unlock()
	}

	g := New(WithClock(clock))
	g.Hold(clock().Add(time.Second))
	result := parkAsync(t, g, context.Background())

	if !g.Held() {
		t.Error("Held() = false inside the hold")
	}
	if g.Release() {
		t.Fatal("Release succeeded during hold")
	}

	advance(999 * time.Millisecond)
	if g.Release() {
		t.Fatal("Release succeeded before the hold elapsed")
	}

	advance(time.Millisecond)
	if !g.Release() {
		t.Fatal("Release refused after the hold elapsed")
	}
	if err := waitResult(t, result); err != nil {
		t.Fatal(err)
	}
	if got := g.LastRelease(); !got.Equal(clock()) {
		t.Errorf("LastRelease() = %v, want %v", got, clock())
	}
}

func TestDo(t *testing.T) {
	g := New()
	if g.Do(func() { t.Error("ran without a parked worker") }) {
		t.Fatal("Do() = true with nobody parked")
	}

	result := parkAsync(t, g, context.Background())
	ran := 0
	for i := 0; i < 3; i++ {
		if !g.Do(func() { ran++ }) {
			t.Fatal("Do() = false while parked")
		}
	}
	if ran != 3 {
		t.Errorf("ran = %d, want 3", ran)
	}
	if !g.Parked() {
		t.Error("Do released the worker")
	}

	g.Release()
	if err := waitResult(t, result); err != nil {
		t.Fatal(err)
	}
}

func TestNotify(t *testing.T) {
	g := New()
	w := g.Watch()
	g.Notify()
	select {
	case <-w:
	default:
		t.Fatal("Notify did not close the watch channel")
	}
	select {
	case <-g.Watch():
		t.Fatal("new watch channel already closed")
	default:
	}
}

func TestHoldForSaturates(t *testing.T) {
	now := time.Unix(1000, 0)
	clock := func() time.Time { return now }

	tests := []struct {
		name string
		d    time.Duration
		held bool
	}{
		{name: "zero", d: 0},
		{name: "negative", d: -time.Second},
		{name: "one second", d: time.Second, held: true},
		{name: "max duration", d: math.MaxInt64, held: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New(WithClock(clock))
			g.HoldFor(tt.d)
			if got := g.Held(); got != tt.held {
				t.Errorf("Held() = %v, want %v", got, tt.held)
			}
		})
	}
}
