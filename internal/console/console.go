// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 MindustryJsMicrocontroller Authors

// Package console implements the bounded text log a processor script writes
// to. Only the most recent characters are retained and a single subscriber
// is notified after every change.
package console

import (
	"strings"
	"sync"
)

// DefaultLimit is the number of characters retained when no limit is given.
const DefaultLimit = 1000

// Level classifies a console line.
type Level int

const (
	LevelInfo Level = iota
	LevelWarn
	LevelError
)

// Prefix returns the marker written in front of a line of this level.
func (l Level) Prefix() string {
	switch l {
	case LevelWarn:
		return "WARN: "
	case LevelError:
		return "ERROR: "
	default:
		return "LOG: "
	}
}

func (l Level) String() string {
	switch l {
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// Console is an append-only text buffer truncated from the front.
type Console struct {
	mu       sync.Mutex
	limit    int
	content  string
	listener func(string)
}

// New creates a console that keeps at most limit characters.
func New(limit int) *Console {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Console{limit: limit}
}

// Append writes one line at the given level.
func (c *Console) Append(level Level, text string) {
	var b strings.Builder
	b.WriteString(level.Prefix())
	b.WriteString(text)
	b.WriteString(" \n")

	c.mu.Lock()
	c.content = truncate(c.content+b.String(), c.limit)
	content, listener := c.content, c.listener
	c.mu.Unlock()

	if listener != nil {
		listener(content)
	}
}

// Log appends an info line.
func (c *Console) Log(text string) { c.Append(LevelInfo, text) }

// Warn appends a warning line.
func (c *Console) Warn(text string) { c.Append(LevelWarn, text) }

// Error appends an error line.
func (c *Console) Error(text string) { c.Append(LevelError, text) }

// Clear empties the buffer and notifies the subscriber.
func (c *Console) Clear() {
	c.mu.Lock()
	c.content = ""
	listener := c.listener
	c.mu.Unlock()

	if listener != nil {
		listener("")
	}
}

// Content returns the retained text.
func (c *Console) Content() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.content
}

// OnChanged registers the single change subscriber. A later call replaces
// the previous subscriber; nil detaches.
func (c *Console) OnChanged(fn func(string)) {
	c.mu.Lock()
	c.listener = fn
	c.mu.Unlock()
}

// truncate keeps the last limit bytes, moving forward to a rune boundary.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := len(s) - limit
	for cut < len(s) && !isRuneStart(s[cut]) {
		cut++
	}
	return s[cut:]
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
