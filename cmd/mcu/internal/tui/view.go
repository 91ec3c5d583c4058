// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 MindustryJsMicrocontroller Authors

package tui

// Core view rendering and styles.

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/fmoel/MindustryJsMicrocontroller/internal/engine"
	"github.com/fmoel/MindustryJsMicrocontroller/internal/scripting"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)

	currentLineStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("62")).
				Foreground(lipgloss.Color("255")).
				Bold(true)

	lineNumberStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

var stateStyles = map[engine.State]lipgloss.Style{
	engine.StateUninitialized: lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	engine.StateRunning:       lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
	engine.StateStopped:       lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
	engine.StateErrored:       lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	engine.StateFatal:         lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("196")),
}

// kindStyles colors variables by category.
var kindStyles = map[scripting.Kind]lipgloss.Style{
	scripting.KindNumber:    lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
	scripting.KindText:      lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
	scripting.KindBool:      lipgloss.NewStyle().Foreground(lipgloss.Color("170")),
	scripting.KindUndefined: lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	scripting.KindNull:      lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	scripting.KindFunction:  lipgloss.NewStyle().Foreground(lipgloss.Color("111")),
	scripting.KindBuilding:  lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
	scripting.KindUnit:      lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
	scripting.KindCPU:       lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
	scripting.KindCanvas:    lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
	scripting.KindConsole:   lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
	scripting.KindEnum:      lipgloss.NewStyle().Foreground(lipgloss.Color("141")),
}

func styleValue(v scripting.Value) string {
	if s, ok := kindStyles[v.Kind]; ok {
		return s.Render(v.String())
	}
	return v.String()
}

// View renders the TUI
func (m Model) View() string {
	if m.quitting {
		return "Goodbye!\n"
	}
	if !m.ready {
		return "Loading...\n"
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	codeHeight := max(3, m.height-consoleHeight(m.height)-9)
	leftWidth := max(20, m.width*3/5-4)
	rightWidth := max(16, m.width-leftWidth-8)

	code := panelStyle.Width(leftWidth).Render(m.renderCode(codeHeight, leftWidth))
	vars := panelStyle.Width(rightWidth).Render(m.renderVars(codeHeight, rightWidth))
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, code, vars))
	b.WriteString("\n")

	b.WriteString(subtitleStyle.Render("Console"))
	b.WriteString("\n")
	b.WriteString(m.console.View())
	b.WriteString("\n")

	if m.lastError != "" {
		b.WriteString(errorStyle.Render(m.lastError))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("space: run/pause • s: step • i: interrupt • ↑/↓: scroll console • q: quit"))
	return b.String()
}

func (m Model) renderHeader() string {
	title := titleStyle.Render(m.eng.Name())
	if m.source != "" {
		title += subtitleStyle.Render("  " + m.source)
	}

	state := m.state.String()
	if s, ok := stateStyles[m.state]; ok {
		state = s.Render(state)
	}
	clock := "running"
	if m.paused {
		clock = "paused"
	}
	line := fmt.Sprintf("%s  %s (%s)  line %d  clock %s  tick %d",
		title, state, m.status, m.line, clock, m.ticks)

	if m.errText != "" {
		line += "\n" + errorStyle.Render(m.errText)
	}
	return line
}

// renderCode shows a window of the script centred on the current line.
func (m Model) renderCode(height, width int) string {
	if len(m.code) == 1 && m.code[0] == "" {
		return subtitleStyle.Render("no script loaded")
	}

	start := 0
	if m.line > 0 {
		start = max(0, m.line-1-height/2)
	}
	end := min(len(m.code), start+height)

	var b strings.Builder
	for i := start; i < end; i++ {
		text := truncate(m.code[i], width-6)
		if i+1 == m.line {
			b.WriteString(currentLineStyle.Render(fmt.Sprintf("%4d %s", i+1, text)))
		} else {
			b.WriteString(lineNumberStyle.Render(fmt.Sprintf("%4d ", i+1)))
			b.WriteString(text)
		}
		if i < end-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m Model) renderVars(height, width int) string {
	if len(m.vars) == 0 {
		return subtitleStyle.Render("no variables")
	}

	var b strings.Builder
	for i, nv := range m.vars {
		if i == height {
			b.WriteString(subtitleStyle.Render(fmt.Sprintf("… %d more", len(m.vars)-i)))
			break
		}
		b.WriteString(nv.name)
		b.WriteString(" = ")
		v := nv.value
		v.Text = truncate(v.Text, width-len(nv.name)-3)
		b.WriteString(styleValue(v))
		if i < len(m.vars)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func truncate(s string, n int) string {
	if n <= 1 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
