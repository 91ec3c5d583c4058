// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 MindustryJsMicrocontroller Authors

package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fmoel/MindustryJsMicrocontroller/internal/engine"
)

// refreshMsg triggers a poll of the processor.
type refreshMsg time.Time

// stepDoneMsg reports a finished manual step.
type stepDoneMsg struct {
	stepped bool
	err     error
}

func refreshCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return refreshMsg(t)
	})
}

// stepCmd advances the script once and waits for it to park again.
func stepCmd(eng *engine.Engine) tea.Cmd {
	return func() tea.Msg {
		if !eng.Step() {
			return stepDoneMsg{}
		}
		ctx, cancel := context.WithTimeout(context.Background(), stepWait)
		defer cancel()
		return stepDoneMsg{stepped: true, err: eng.AwaitParked(ctx)}
	}
}
