// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 MindustryJsMicrocontroller Authors

// Package version provides build version information for the mcu binaries.
// Values are injected at build time via -ldflags.
package version

import (
	"fmt"
	"runtime"
	"strings"
)

// These variables are set at build time via -ldflags.
// Example: go build -ldflags "-X github.com/fmoel/MindustryJsMicrocontroller/internal/version.Version=0.3.0"
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// String returns a formatted version string suitable for -version output.
func String() string {
	return fmt.Sprintf("%s (commit: %s, built: %s, %s/%s)",
		Version, GitCommit, BuildTime, runtime.GOOS, runtime.GOARCH)
}

// IsDev reports whether the binary was built without a release version.
func IsDev() bool {
	return Version == "dev" || strings.HasSuffix(Version, "-dev")
}

// Banner returns the one-line greeting a front end prints on start.
func Banner(program string) string {
	if IsDev() {
		return fmt.Sprintf("%s %s (commit %s)", program, Version, GitCommit)
	}
	return fmt.Sprintf("%s %s", program, Version)
}
