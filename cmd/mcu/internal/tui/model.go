// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 MindustryJsMicrocontroller Authors

// Package tui is the live inspector of the mcu host: the script with its
// current line, processor state, global variables and the console.
package tui

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/fmoel/MindustryJsMicrocontroller/internal/engine"
	"github.com/fmoel/MindustryJsMicrocontroller/internal/host"
	"github.com/fmoel/MindustryJsMicrocontroller/internal/scripting"
)

// DefaultRefresh is how often the inspector polls the processor.
const DefaultRefresh = 100 * time.Millisecond

// stepWait bounds how long a step key waits for the script to park.
const stepWait = time.Second

// Options configures the inspector.
type Options struct {
	Engine  *engine.Engine
	Driver  *host.Driver
	Refresh time.Duration
	// Source names where the script came from, shown in the title.
	Source string
}

// Model is the main TUI application model
type Model struct {
	eng     *engine.Engine
	driver  *host.Driver
	refresh time.Duration
	source  string

	width  int
	height int
	ready  bool

	// Snapshot of the processor, refreshed on every poll
	state   engine.State
	status  engine.Status
	line    int
	errText string
	code    []string
	vars    []namedValue
	paused  bool
	ticks   uint64

	console     viewport.Model
	consoleText string

	lastError string
	quitting  bool
}

type namedValue struct {
	name  string
	value scripting.Value
}

// New creates the inspector model.
func New(opts Options) Model {
	refresh := opts.Refresh
	if refresh <= 0 {
		refresh = DefaultRefresh
	}
	m := Model{
		eng:     opts.Engine,
		driver:  opts.Driver,
		refresh: refresh,
		source:  opts.Source,
		console: viewport.New(80, 6),
	}
	m.sync()
	return m
}

// Run shows the inspector until the user quits or ctx is done.
func Run(ctx context.Context, opts Options) error {
	p := tea.NewProgram(New(opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if err != nil && ctx.Err() != nil && errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}

// sync copies the processor's observable state into the model.
func (m *Model) sync() {
	m.state = m.eng.State()
	m.status = m.eng.Status()
	m.line = m.eng.Line()
	m.errText = m.eng.LastErrorText()
	m.code = strings.Split(m.eng.Code(), "\n")
	m.paused = m.driver.Paused()
	m.ticks = m.driver.Ticks()

	snap := m.eng.Snapshot()
	m.vars = make([]namedValue, 0, len(snap))
	for name, v := range snap {
		m.vars = append(m.vars, namedValue{name: name, value: v})
	}
	sort.Slice(m.vars, func(i, j int) bool { return m.vars[i].name < m.vars[j].name })

	if text := m.eng.Console().Content(); text != m.consoleText {
		atBottom := m.console.AtBottom()
		m.consoleText = text
		m.console.SetContent(text)
		if atBottom {
			m.console.GotoBottom()
		}
	}
}
