// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 MindustryJsMicrocontroller Authors

// Package transform rewrites processor scripts so that they yield control
// cooperatively. Every while, do-while and C-style for loop gets a checkpoint
// call evaluated on each iteration, and every statement list gets a line
// checkpoint in front of each source line.
//
// Insertions are computed from the goja AST and spliced into the original
// text. No newlines are added, so line numbers reported by the runtime match
// the user's source.
package transform

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/dop251/goja/ast"
	"github.com/dop251/goja/parser"
)

const (
	// Prefix is reserved for injected names. User code may not declare or
	// reference identifiers starting with it.
	Prefix = "__mcu_"

	// Checkpoint is the global function called at every loop iteration.
	Checkpoint = Prefix + "yield"

	// LineHook is the global function called before each source line with
	// the line number as its only argument.
	LineHook = Prefix + "line"
)

var (
	// ErrReservedIdentifier is returned when user source uses the reserved
	// prefix for a name or a property key.
	ErrReservedIdentifier = errors.New("identifier uses reserved prefix " + Prefix)

	// ErrWithStatement is returned for with statements, whose dynamic scope
	// could shadow the injected checkpoints.
	ErrWithStatement = errors.New("with statements are not supported")
)

// SyntaxError describes source that could not be parsed.
type SyntaxError struct {
	Line    int
	Column  int
	Message string
}

func (e *SyntaxError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("SyntaxError: line %d:%d %s", e.Line, e.Column, e.Message)
	}
	return "SyntaxError: " + e.Message
}

// Result is the outcome of one transformation.
type Result struct {
	// Source is the user's script, unchanged.
	Source string
	// Code is the cooperative script handed to the runtime.
	Code string
	// Loops counts rewritten loop heads.
	Loops int
	// Lines counts injected line checkpoints.
	Lines int
}

// Empty reports whether the transformed program does nothing.
func (r Result) Empty() bool {
	return strings.TrimSpace(r.Code) == ""
}

// Transform parses src and returns the cooperative version of it.
// Whitespace-only input produces an empty program and no error.
func Transform(src string) (res Result, err error) {
	res.Source = src
	if strings.TrimSpace(src) == "" {
		return res, nil
	}

	defer func() {
		if r := recover(); r != nil {
			res = Result{Source: src}
			err = &SyntaxError{Message: fmt.Sprint(r)}
		}
	}()

	program, err := parser.ParseFile(nil, "script", src, 0, parser.WithDisableSourceMaps)
	if err != nil {
		return Result{Source: src}, syntaxError(err)
	}

	w := newWalker(src)
	w.program(program)
	if w.err != nil {
		return Result{Source: src}, w.err
	}

	res.Code = splice(src, w.edits)
	res.Loops = w.loops
	res.Lines = w.lines
	return res, nil
}

func syntaxError(err error) error {
	var list parser.ErrorList
	if errors.As(err, &list) && len(list) > 0 {
		return &SyntaxError{
			Line:    list[0].Position.Line,
			Column:  list[0].Position.Column,
			Message: list[0].Message,
		}
	}
	var single *parser.Error
	if errors.As(err, &single) {
		return &SyntaxError{
			Line:    single.Position.Line,
			Column:  single.Position.Column,
			Message: single.Message,
		}
	}
	return &SyntaxError{Message: err.Error()}
}

// edit inserts text before the byte at offset.
type edit struct {
	offset int
	text   string
}

func splice(src string, edits []edit) string {
	if len(edits) == 0 {
		return src
	}
	sort.SliceStable(edits, func(i, j int) bool { return edits[i].offset < edits[j].offset })

	var b strings.Builder
	size := len(src)
	for _, e := range edits {
		size += len(e.text)
	}
	b.Grow(size)

	last := 0
	for _, e := range edits {
		b.WriteString(src[last:e.offset])
		b.WriteString(e.text)
		last = e.offset
	}
	b.WriteString(src[last:])
	return b.String()
}

// reserved reports whether an identifier collides with injected names.
func reserved(id *ast.Identifier) bool {
	return id != nil && strings.HasPrefix(id.Name.String(), Prefix)
}

// reservedKey reports whether a literal property or member key collides
// with injected names.
func reservedKey(k ast.Expression) bool {
	var name string
	switch k := k.(type) {
	case *ast.StringLiteral:
		name = k.Value.String()
	case *ast.Identifier:
		name = k.Name.String()
	case *ast.PrivateIdentifier:
		name = k.Name.String()
	}
	return strings.HasPrefix(name, Prefix)
}
