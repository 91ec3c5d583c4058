// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 MindustryJsMicrocontroller Authors

package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Init starts polling.
func (m Model) Init() tea.Cmd {
	return refreshCmd(m.refresh)
}

// Update handles all TUI events and messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.console.Width = msg.Width - 2
		m.console.Height = consoleHeight(msg.Height)
		return m, nil

	case refreshMsg:
		m.sync()
		return m, refreshCmd(m.refresh)

	case stepDoneMsg:
		m.lastError = ""
		if msg.err != nil {
			m.lastError = msg.err.Error()
		} else if !msg.stepped {
			m.lastError = "nothing to step"
		}
		m.sync()
		return m, nil
	}

	return m, nil
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		m.quitting = true
		return m, tea.Quit

	case " ", "p":
		if m.driver.Paused() {
			m.driver.Resume()
		} else {
			m.driver.Pause()
		}
		m.sync()
		return m, nil

	case "s", "n":
		m.driver.Pause()
		m.paused = true
		return m, stepCmd(m.eng)

	case "i":
		m.eng.Interrupt()
		m.sync()
		return m, nil
	}

	// Scroll keys go to the console
	var cmd tea.Cmd
	m.console, cmd = m.console.Update(msg)
	return m, cmd
}

// consoleHeight gives the console a quarter of the screen, at least 3 rows.
func consoleHeight(height int) int {
	return max(3, height/4)
}
