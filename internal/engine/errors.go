// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 MindustryJsMicrocontroller Authors

package engine

import (
	"errors"

	"github.com/fmoel/MindustryJsMicrocontroller/internal/scripting"
)

var (
	// ErrRunaway indicates a script ran past runaway_timeout without
	// reaching a suspension point
	ErrRunaway = errors.New("script ran too long without yielding")

	// ErrInterrupted is the unwind signal of an interrupted session. It never
	// becomes the processor's error.
	ErrInterrupted = scripting.ErrInterrupted
)
