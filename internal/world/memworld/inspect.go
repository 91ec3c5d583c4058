// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 MindustryJsMicrocontroller Authors

package memworld

import (
	"github.com/fmoel/MindustryJsMicrocontroller/internal/world"
)

// Message returns the text last flushed to a message block.
func (w *World) Message(e world.Entity) string {
	w.mu.Lock()
	defer w.mu.Unlock()
	if x := w.lookup(e); x != nil {
		return x.message
	}
	return ""
}

// Display returns a copy of the commands last flushed to a display.
func (w *World) Display(e world.Entity) []world.DrawCmd {
	w.mu.Lock()
	defer w.mu.Unlock()
	x := w.lookup(e)
	if x == nil {
		return nil
	}
	return append([]world.DrawCmd(nil), x.display...)
}

// Position returns an entity's coordinates.
func (w *World) Position(e world.Entity) (float64, float64, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	x := w.lookup(e)
	if x == nil {
		return 0, 0, false
	}
	return x.x, x.y, true
}

// Items returns an entity's item count.
func (w *World) Items(e world.Entity, item string) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	if x := w.lookup(e); x != nil {
		return x.items[item]
	}
	return 0
}

// Damage lowers an entity's health.
func (w *World) Damage(e world.Entity, amount float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if x := w.lookup(e); x != nil {
		x.health = max(0, x.health-amount)
	}
}

// PendingPrint returns the unflushed text buffer.
func (w *World) PendingPrint() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.printBuf.String()
}

// PendingDraw returns the number of unflushed draw commands.
func (w *World) PendingDraw() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.drawBuf)
}

// Entities returns handles to every live entity in creation order.
func (w *World) Entities() []world.Entity {
	w.mu.Lock()
	defer w.mu.Unlock()
	var out []world.Entity
	for _, e := range w.sorted() {
		out = append(out, w.handle(e))
	}
	return out
}

var _ world.World = (*World)(nil)
