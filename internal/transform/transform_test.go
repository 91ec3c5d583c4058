// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 MindustryJsMicrocontroller Authors

package transform

import (
	"errors"
	"strings"
	"testing"

	"github.com/dop251/goja"
)

func TestTransformEmpty(t *testing.T) {
	for _, src := range []string{"", "   ", "\n\t\n"} {
		res, err := Transform(src)
		if err != nil {
			t.Fatalf("Transform(%q) error: %v", src, err)
		}
		if !res.Empty() {
			t.Errorf("Transform(%q).Code = %q, want empty", src, res.Code)
		}
		if res.Source != src {
			t.Errorf("Source not preserved: %q", res.Source)
		}
	}
}

func TestTransformLoopHeads(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		want  string
		loops int
	}{
		{"while", "while (x) { f(); }", "while (__mcu_yield(), x)", 1},
		{"while comment", "while /* c */ (x) {}", "while /* c */ (__mcu_yield(), x)", 1},
		{"do while", "do { n++ } while (n < 3)", "while (__mcu_yield(), n < 3)", 1},
		{"do while statement body", "do n++; while (n < 3);", "while (__mcu_yield(), n < 3)", 1},
		{"for", "for (let i = 0; i < 3; i++) {}", "i < 3; __mcu_yield(), i++)", 1},
		{"for no update", "for (var i = 0; i < 3;) { i++ }", "i < 3; __mcu_yield())", 1},
		{"for empty", "for (;;) { break }", "for (;; __mcu_yield())", 1},
		{"for parenthesized test", "for (i = 0; (i < 3); i++) {}", "(i < 3); __mcu_yield(), i++)", 1},
		{"nested", "while (a) { for (;b;) { do {} while (c) } }", "while (__mcu_yield(), c)", 3},
		{"for of untouched", "for (const x of xs) { f(x) }", "for (const x of xs)", 0},
		{"for in untouched", "for (var k in o) {}", "for (var k in o)", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Transform(tt.src)
			if err != nil {
				t.Fatalf("Transform error: %v", err)
			}
			if !strings.Contains(res.Code, tt.want) {
				t.Errorf("Code = %q, want it to contain %q", res.Code, tt.want)
			}
			if res.Loops != tt.loops {
				t.Errorf("Loops = %d, want %d", res.Loops, tt.loops)
			}
		})
	}
}

func TestTransformLineHooks(t *testing.T) {
	res, err := Transform("a();\nb(); c();\n\nd();\n")
	if err != nil {
		t.Fatal(err)
	}
	want := "__mcu_line(1);a();\n__mcu_line(2);b(); c();\n\n__mcu_line(4);d();\n"
	if res.Code != want {
		t.Errorf("Code = %q, want %q", res.Code, want)
	}
	if res.Lines != 3 {
		t.Errorf("Lines = %d, want 3", res.Lines)
	}
}

func TestTransformPreservesLineCount(t *testing.T) {
	src := `let n = 0
// count up
while (n < 10) {
  n++
  /* multi
     line */
  if (n > 5) { break }
}
function f(x) {
  return x * 2
}
`
	res, err := Transform(src)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := strings.Count(res.Code, "\n"), strings.Count(src, "\n"); got != want {
		t.Errorf("newline count = %d, want %d", got, want)
	}
	if !strings.Contains(res.Code, "__mcu_line(10);return x * 2") {
		t.Errorf("function body not instrumented: %q", res.Code)
	}
}

func TestTransformDirectivePrologue(t *testing.T) {
	res, err := Transform("\"use strict\";\nx = 1;\n")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(res.Code, "\"use strict\";") {
		t.Errorf("directive moved: %q", res.Code)
	}
}

func TestTransformReserved(t *testing.T) {
	tests := []string{
		"var __mcu_yield = 1",
		"__mcu_line(3)",
		"function f(__mcu_x) {}",
		"let o = { __mcu_yield }",
		"class __mcu_C {}",
		"const f = () => __mcu_yield()",
		"let p = { __mcu_y: 2 }",
		"let p = { \"__mcu_line\": 2 }",
		"let p = { __mcu_yield() {} }",
		"class C { __mcu_line() {} }",
		"class C { static __mcu_yield = 1 }",
	}
	for _, src := range tests {
		if _, err := Transform(src); !errors.Is(err, ErrReservedIdentifier) {
			t.Errorf("Transform(%q) error = %v, want ErrReservedIdentifier", src, err)
		}
	}

	// Member access and computed keys are checked at runtime, not here.
	if _, err := Transform("o.__mcu_x = 1; let p = { [k]: 2 }"); err != nil {
		t.Errorf("member access rejected: %v", err)
	}
}

func TestTransformRejectsWith(t *testing.T) {
	tests := []string{
		"with (o) { x = 1 }",
		"var n = 0;\nwith ({__mcu_yield() {}, __mcu_line() {}}) { while (n < 100000) { n++; } }",
		"function f() { with (Math) return max(1, 2) }",
	}
	for _, src := range tests {
		if _, err := Transform(src); !errors.Is(err, ErrWithStatement) {
			t.Errorf("Transform(%q) error = %v, want ErrWithStatement", src, err)
		}
	}
}

func TestTransformSyntaxError(t *testing.T) {
	_, err := Transform("let a = 1\nwhile (")
	var se *SyntaxError
	if !errors.As(err, &se) {
		t.Fatalf("error = %v, want *SyntaxError", err)
	}
	if se.Line != 2 {
		t.Errorf("Line = %d, want 2", se.Line)
	}
	if !strings.HasPrefix(se.Error(), "SyntaxError: line 2:") {
		t.Errorf("Error() = %q", se.Error())
	}
}

// run executes transformed code, counting checkpoint calls.
func run(t *testing.T, src string) (yields, lines int, vm *goja.Runtime) {
	t.Helper()
	res, err := Transform(src)
	if err != nil {
		t.Fatalf("Transform error: %v", err)
	}
	vm = goja.New()
	_ = vm.Set(Checkpoint, func() { yields++ })
	_ = vm.Set(LineHook, func(int) { lines++ })
	if _, err := vm.RunString(res.Code); err != nil {
		t.Fatalf("run %q: %v", res.Code, err)
	}
	return yields, lines, vm
}

func TestTransformedSemantics(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		yields int
		result int64
	}{
		{"while", "var n = 0; while (n < 5) { n++ }", 6, 5},
		{"do while", "var n = 0; do { n++ } while (n < 5)", 5, 5},
		{"for", "var n = 0; for (var i = 0; i < 5; i++) { n += i }", 5, 10},
		{"for continue", "var n = 0; for (var i = 0; i < 5; i++) { if (i % 2) continue; n++ }", 5, 3},
		{"for no test", "var n = 0; for (;;) { if (++n == 4) break }", 3, 4},
		{"labelled", "var n = 0; outer: while (true) { while (true) { n++; if (n > 2) break outer } }", 4, 3},
		{"nullish test", "var a = null, n = 0; while (a ?? n < 2) { n++ }", 3, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			yields, _, vm := run(t, tt.src)
			if yields != tt.yields {
				t.Errorf("yields = %d, want %d", yields, tt.yields)
			}
			if got := vm.Get("n").ToInteger(); got != tt.result {
				t.Errorf("n = %d, want %d", got, tt.result)
			}
		})
	}
}

func TestTransformedStatementsRun(t *testing.T) {
	src := `var out = [];
(function () { out.push(1) })();
switch (out.length) {
case 1:
  out.push(2);
  break;
default:
  out.push(0);
}
class P {
  static { out.push(3) }
  m() { return 4 }
}
out.push(new P().m());
var s = ` + "`v${out.length}`" + `;
`
	_, lines, vm := run(t, src)
	if got := vm.Get("s").String(); got != "v4" {
		t.Errorf("s = %q, want v4", got)
	}
	if lines == 0 {
		t.Error("no line checkpoints executed")
	}
}
