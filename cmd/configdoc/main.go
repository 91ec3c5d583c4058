// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 MindustryJsMicrocontroller Authors

// configdoc generates markdown documentation from Go struct tags.
// Usage: go run ./cmd/configdoc > doc/CONFIG_REFERENCE.md
package main

import (
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/fmoel/MindustryJsMicrocontroller/internal/util"
)

// EnvVar represents an environment variable configuration
type EnvVar struct {
	Name        string
	Description string
}

var envVars = []EnvVar{
	{"MCU_DATA", "Data directory (config.yaml, REPL history, inspector log)"},
	{"MCU_DEBUG", "Set to any value to enable debug logging"},
	{"NO_COLOR", "Set to any value to disable colored REPL output"},
}

func main() {
	if len(os.Args) > 1 && os.Args[1] == "--help" {
		fmt.Println("Usage: go run ./cmd/configdoc > doc/CONFIG_REFERENCE.md")
		fmt.Println()
		fmt.Println("Generates markdown documentation from Go struct tags.")
		return
	}
	render(os.Stdout)
}

func render(w io.Writer) {
	p := func(format string, args ...any) { _, _ = fmt.Fprintf(w, format, args...) }

	p("# Configuration Reference\n\n")
	p("Auto-generated from Go struct tags. Do not edit manually.\n\n")
	p("---\n\n")

	p("## mcu Configuration\n\n")
	p("File: `%s` in the mcu data directory (`-d`, `MCU_DATA`, or `%s`)\n\n",
		"config.yaml", util.DefaultDataDir)
	printStructTable(w, reflect.TypeOf(util.Config{}))
	p("\n")

	p("## Environment Variables\n\n")
	p("| Variable | Description |\n")
	p("|----------|-------------|\n")
	for _, env := range envVars {
		p("| `%s` | %s |\n", env.Name, env.Description)
	}
}

func printStructTable(w io.Writer, t reflect.Type) {
	_, _ = fmt.Fprintln(w, "| Field | Type | Default | Description |")
	_, _ = fmt.Fprintln(w, "|-------|------|---------|-------------|")

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		tag := field.Tag.Get("yaml")
		if tag == "" || tag == "-" {
			continue
		}
		fieldName := strings.Split(tag, ",")[0]

		desc := field.Tag.Get("description")
		if desc == "" {
			desc = "(no description)"
		}

		def := field.Tag.Get("default")
		switch def {
		case "":
			def = "(none)"
		case `""`:
			def = "(empty string)"
		}

		_, _ = fmt.Fprintf(w, "| `%s` | %s | `%s` | %s |\n", fieldName, formatType(field.Type), def, desc)
	}
}

var durationType = reflect.TypeOf(time.Duration(0))

func formatType(t reflect.Type) string {
	if t == durationType {
		return "duration"
	}
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return "int"
	case reflect.Bool:
		return "bool"
	case reflect.Slice:
		return "[]" + formatType(t.Elem())
	case reflect.Ptr:
		return "*" + formatType(t.Elem())
	default:
		return t.String()
	}
}
