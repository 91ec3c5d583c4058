// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 MindustryJsMicrocontroller Authors

package transform

import (
	"strconv"

	"github.com/dop251/goja/ast"
	"github.com/dop251/goja/file"
)

// walker visits every node once, collecting insertions.
type walker struct {
	src   string
	file  *file.File
	edits []edit
	loops int
	lines int
	err   error
}

func newWalker(src string) *walker {
	return &walker{src: src}
}

// offset converts a parser index to a byte offset into src.
func offset(idx file.Idx) int {
	return int(idx) - 1
}

func (w *walker) line(off int) int {
	if w.file == nil {
		return 0
	}
	return w.file.Position(off).Line
}

func (w *walker) insert(off int, text string) {
	w.edits = append(w.edits, edit{offset: off, text: text})
}

func (w *walker) program(p *ast.Program) {
	w.file = p.File
	w.list(p.Body, 0)
}

// list instruments a statement list whose first statement may start at or
// after from, then walks each statement.
func (w *walker) list(stmts []ast.Statement, from int) {
	prevLine := -1
	prologue := true
	for _, s := range stmts {
		if prologue && isDirective(s) {
			from = offset(s.Idx1())
			w.stmt(s)
			continue
		}
		prologue = false

		start := offset(s.Idx0())
		if _, empty := s.(*ast.EmptyStatement); !empty {
			if ln := w.line(start); ln != prevLine {
				if at, ok := w.statementStart(from, start); ok {
					w.insert(at, LineHook+"("+strconv.Itoa(ln)+");")
					w.lines++
					prevLine = ln
				}
			}
		}
		w.stmt(s)
		from = offset(s.Idx1())
	}
}

// statementStart finds where a line checkpoint can go in front of the
// statement beginning at start. The previous statement ends at from.
func (w *walker) statementStart(from, start int) (int, bool) {
	at := from
	for {
		at = skipTrivia(w.src, at)
		if at >= len(w.src) || (w.src[at] != ';' && w.src[at] != ')') {
			break
		}
		at++
	}
	if at > start || !onlyOpeners(w.src, at, start) {
		return 0, false
	}
	return at, true
}

func isDirective(s ast.Statement) bool {
	es, ok := s.(*ast.ExpressionStatement)
	if !ok {
		return false
	}
	_, ok = es.Expression.(*ast.StringLiteral)
	return ok
}

func (w *walker) block(b *ast.BlockStatement) {
	if b == nil {
		return
	}
	w.list(b.List, offset(b.LeftBrace)+1)
}

func (w *walker) stmt(s ast.Statement) {
	if s == nil || w.err != nil {
		return
	}
	switch s := s.(type) {
	case *ast.BlockStatement:
		w.block(s)
	case *ast.ExpressionStatement:
		w.expr(s.Expression)
	case *ast.VariableStatement:
		w.bindings(s.List)
	case *ast.LexicalDeclaration:
		w.bindings(s.List)
	case *ast.FunctionDeclaration:
		w.function(s.Function)
	case *ast.ClassDeclaration:
		w.class(s.Class)
	case *ast.IfStatement:
		w.expr(s.Test)
		w.stmt(s.Consequent)
		w.stmt(s.Alternate)
	case *ast.WhileStatement:
		w.whileHead(s)
		w.expr(s.Test)
		w.stmt(s.Body)
	case *ast.DoWhileStatement:
		w.doWhileHead(s)
		w.stmt(s.Body)
		w.expr(s.Test)
	case *ast.ForStatement:
		w.forHead(s)
		w.forInit(s.Initializer)
		w.expr(s.Test)
		w.expr(s.Update)
		w.stmt(s.Body)
	case *ast.ForInStatement:
		w.forInto(s.Into)
		w.expr(s.Source)
		w.stmt(s.Body)
	case *ast.ForOfStatement:
		w.forInto(s.Into)
		w.expr(s.Source)
		w.stmt(s.Body)
	case *ast.SwitchStatement:
		w.expr(s.Discriminant)
		for _, c := range s.Body {
			w.caseClause(c)
		}
	case *ast.TryStatement:
		w.block(s.Body)
		if s.Catch != nil {
			w.target(s.Catch.Parameter)
			w.block(s.Catch.Body)
		}
		w.block(s.Finally)
	case *ast.ThrowStatement:
		w.expr(s.Argument)
	case *ast.ReturnStatement:
		w.expr(s.Argument)
	case *ast.LabelledStatement:
		w.ident(s.Label)
		w.stmt(s.Statement)
	case *ast.BranchStatement:
		w.ident(s.Label)
	case *ast.WithStatement:
		w.fail(ErrWithStatement)
	case *ast.CaseStatement:
		w.caseClause(s)
	}
}

func (w *walker) caseClause(c *ast.CaseStatement) {
	from := offset(c.Case) + len("default")
	if c.Test != nil {
		w.expr(c.Test)
		from = offset(c.Test.Idx1())
	}
	colon, ok := seek(w.src, from, ':', ")")
	if !ok {
		for _, s := range c.Consequent {
			w.stmt(s)
		}
		return
	}
	w.list(c.Consequent, colon+1)
}

// whileHead turns while (test) into while (__mcu_yield(), test).
func (w *walker) whileHead(s *ast.WhileStatement) {
	open, ok := seek(w.src, offset(s.While)+len("while"), '(', "")
	if !ok {
		return
	}
	w.insert(open+1, Checkpoint+"(), ")
	w.loops++
}

func (w *walker) doWhileHead(s *ast.DoWhileStatement) {
	at := skipTrivia(w.src, offset(s.Body.Idx1()))
	if at < len(w.src) && w.src[at] == ';' {
		at = skipTrivia(w.src, at+1)
	}
	if !keyword(w.src, at, "while") {
		return
	}
	open, ok := seek(w.src, at+len("while"), '(', "")
	if !ok {
		return
	}
	w.insert(open+1, Checkpoint+"(), ")
	w.loops++
}

// forHead puts the checkpoint at the front of the update clause, so it runs
// on every iteration including those ended by continue.
func (w *walker) forHead(s *ast.ForStatement) {
	open, ok := seek(w.src, offset(s.For)+len("for"), '(', "")
	if !ok {
		return
	}
	from := open + 1
	if s.Initializer != nil {
		from = offset(s.Initializer.Idx1())
	}
	first, ok := seek(w.src, from, ';', ")")
	if !ok {
		return
	}
	from = first + 1
	if s.Test != nil {
		from = offset(s.Test.Idx1())
	}
	second, ok := seek(w.src, from, ';', ")")
	if !ok {
		return
	}
	if s.Update != nil {
		w.insert(second+1, " "+Checkpoint+"(),")
	} else {
		w.insert(second+1, " "+Checkpoint+"()")
	}
	w.loops++
}

func (w *walker) forInit(init ast.ForLoopInitializer) {
	switch init := init.(type) {
	case *ast.ForLoopInitializerExpression:
		w.expr(init.Expression)
	case *ast.ForLoopInitializerVarDeclList:
		w.bindings(init.List)
	case *ast.ForLoopInitializerLexicalDecl:
		w.bindings(init.LexicalDeclaration.List)
	}
}

func (w *walker) forInto(into ast.ForInto) {
	switch into := into.(type) {
	case *ast.ForIntoVar:
		w.binding(into.Binding)
	case *ast.ForDeclaration:
		w.target(into.Target)
	case *ast.ForIntoExpression:
		w.expr(into.Expression)
	}
}

func (w *walker) bindings(list []*ast.Binding) {
	for _, b := range list {
		w.binding(b)
	}
}

func (w *walker) binding(b *ast.Binding) {
	if b == nil {
		return
	}
	w.target(b.Target)
	w.expr(b.Initializer)
}

func (w *walker) target(t ast.BindingTarget) {
	if t == nil {
		return
	}
	if e, ok := t.(ast.Expression); ok {
		w.expr(e)
	}
}

func (w *walker) fail(err error) {
	if w.err == nil {
		w.err = err
	}
}

func (w *walker) ident(id *ast.Identifier) {
	if reserved(id) {
		w.fail(ErrReservedIdentifier)
	}
}

// key checks a property or class member key.
func (w *walker) key(k ast.Expression, computed bool) {
	if computed {
		w.expr(k)
		return
	}
	if reservedKey(k) {
		w.fail(ErrReservedIdentifier)
	}
}

func (w *walker) function(f *ast.FunctionLiteral) {
	if f == nil {
		return
	}
	w.ident(f.Name)
	w.params(f.ParameterList)
	w.block(f.Body)
}

func (w *walker) params(p *ast.ParameterList) {
	if p == nil {
		return
	}
	w.bindings(p.List)
	w.expr(p.Rest)
}

func (w *walker) class(c *ast.ClassLiteral) {
	if c == nil {
		return
	}
	w.ident(c.Name)
	w.expr(c.SuperClass)
	for _, el := range c.Body {
		switch el := el.(type) {
		case *ast.FieldDefinition:
			w.key(el.Key, el.Computed)
			w.expr(el.Initializer)
		case *ast.MethodDefinition:
			w.key(el.Key, el.Computed)
			w.function(el.Body)
		case *ast.ClassStaticBlock:
			w.block(el.Block)
		}
	}
}

func (w *walker) exprs(list []ast.Expression) {
	for _, e := range list {
		w.expr(e)
	}
}

func (w *walker) expr(e ast.Expression) {
	if e == nil || w.err != nil {
		return
	}
	switch e := e.(type) {
	case *ast.Identifier:
		w.ident(e)
	case *ast.FunctionLiteral:
		w.function(e)
	case *ast.ArrowFunctionLiteral:
		w.params(e.ParameterList)
		switch body := e.Body.(type) {
		case *ast.BlockStatement:
			w.block(body)
		case *ast.ExpressionBody:
			w.expr(body.Expression)
		}
	case *ast.ClassLiteral:
		w.class(e)
	case *ast.AssignExpression:
		w.expr(e.Left)
		w.expr(e.Right)
	case *ast.BinaryExpression:
		w.expr(e.Left)
		w.expr(e.Right)
	case *ast.UnaryExpression:
		w.expr(e.Operand)
	case *ast.ConditionalExpression:
		w.expr(e.Test)
		w.expr(e.Consequent)
		w.expr(e.Alternate)
	case *ast.SequenceExpression:
		w.exprs(e.Sequence)
	case *ast.CallExpression:
		w.expr(e.Callee)
		w.exprs(e.ArgumentList)
	case *ast.NewExpression:
		w.expr(e.Callee)
		w.exprs(e.ArgumentList)
	case *ast.DotExpression:
		w.expr(e.Left)
	case *ast.PrivateDotExpression:
		w.expr(e.Left)
	case *ast.BracketExpression:
		w.expr(e.Left)
		w.expr(e.Member)
	case *ast.OptionalChain:
		w.expr(e.Expression)
	case *ast.Optional:
		w.expr(e.Expression)
	case *ast.SpreadElement:
		w.expr(e.Expression)
	case *ast.ArrayLiteral:
		w.exprs(e.Value)
	case *ast.ArrayPattern:
		w.exprs(e.Elements)
		w.expr(e.Rest)
	case *ast.ObjectLiteral:
		w.properties(e.Value)
	case *ast.ObjectPattern:
		w.properties(e.Properties)
		w.expr(e.Rest)
	case *ast.TemplateLiteral:
		w.expr(e.Tag)
		w.exprs(e.Expressions)
	case *ast.YieldExpression:
		w.expr(e.Argument)
	case *ast.AwaitExpression:
		w.expr(e.Argument)
	case *ast.Binding:
		w.binding(e)
	}
}

func (w *walker) properties(props []ast.Property) {
	for _, p := range props {
		switch p := p.(type) {
		case *ast.PropertyShort:
			w.ident(&p.Name)
			w.expr(p.Initializer)
		case *ast.PropertyKeyed:
			w.key(p.Key, p.Computed)
			w.expr(p.Value)
		case *ast.SpreadElement:
			w.expr(p.Expression)
		}
	}
}
