// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 MindustryJsMicrocontroller Authors

package main

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/chzyer/readline"

	"github.com/fmoel/MindustryJsMicrocontroller/internal/cmdspec"
	"github.com/fmoel/MindustryJsMicrocontroller/internal/command"
)

// newCompleter builds tab completion from the registry's argument specs.
func newCompleter(registry *command.Registry) readline.AutoCompleter {
	var items []readline.PrefixCompleterInterface
	for _, cmd := range registry.All() {
		names := append([]string{cmd.Name}, cmd.Aliases...)
		for _, name := range names {
			items = append(items, pcItemForArgSpecs(name, cmd.ArgSpecs))
		}
	}
	return readline.NewPrefixCompleter(items...)
}

// pcItemForArgSpecs creates a PcItem completing the first argument.
func pcItemForArgSpecs(name string, specs []cmdspec.ArgSpec) *readline.PrefixCompleter {
	if len(specs) == 0 {
		return readline.PcItem(name)
	}
	spec := specs[0]
	switch {
	case spec.IsFile():
		return readline.PcItem(name,
			readline.PcItemDynamic(func(line string) []string {
				parts := strings.Fields(line)
				partial := ""
				if len(parts) > 1 && !strings.HasSuffix(line, " ") {
					partial = parts[len(parts)-1]
				}
				return completeFiles(partial, spec.Extensions())
			}),
		)
	case spec.Type == cmdspec.ArgTypeKeyword:
		var children []readline.PrefixCompleterInterface
		for _, v := range spec.Values {
			children = append(children, readline.PcItem(v))
		}
		return readline.PcItem(name, children...)
	}
	return readline.PcItem(name)
}

// completeFiles lists directory entries matching partial. Directories are
// always offered; files only with one of exts, or any file when exts is
// empty.
func completeFiles(partial string, exts []string) []string {
	dir, prefix := filepath.Split(partial)
	readDir := dir
	if readDir == "" {
		readDir = "."
	}

	entries, err := os.ReadDir(readDir)
	if err != nil {
		return nil
	}

	var out []string
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") && !strings.HasPrefix(prefix, ".") {
			continue
		}
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		switch {
		case e.IsDir():
			out = append(out, dir+name+string(filepath.Separator))
		case len(exts) == 0 || slices.Contains(exts, filepath.Ext(name)):
			out = append(out, dir+name)
		}
	}
	return out
}
