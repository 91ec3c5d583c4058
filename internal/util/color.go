// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 MindustryJsMicrocontroller Authors

package util

import (
	"os"

	"golang.org/x/term"
)

// ColorFormatter provides a function type for getting color codes by key type
type ColorFormatter func(keyType string) string

// SupportsColor checks if stdout is a terminal that takes ANSI color codes
func SupportsColor() bool {
	if !term.IsTerminal(int(os.Stdout.Fd())) { // #nosec G115 - file descriptors are small integers
		return false
	}

	termEnv := os.Getenv("TERM")
	if termEnv == "" || termEnv == "dumb" {
		return false
	}

	return os.Getenv("NO_COLOR") == ""
}

// FormatWithColor wraps text in the ANSI color the formatter picks for key.
// Text is returned unchanged when color is off or the formatter has no code.
func FormatWithColor(text, key string, colorFormatter ColorFormatter) string {
	return formatWithColor(SupportsColor(), text, key, colorFormatter)
}

func formatWithColor(enabled bool, text, key string, colorFormatter ColorFormatter) string {
	if !enabled || colorFormatter == nil {
		return text
	}

	colorCode := colorFormatter(key)
	if colorCode == "" {
		return text
	}

	return "\033[" + colorCode + "m" + text + "\033[0m"
}
