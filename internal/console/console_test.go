// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 MindustryJsMicrocontroller Authors

package console

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestAppendPrefixes(t *testing.T) {
	tests := []struct {
		name  string
		write func(c *Console)
		want  string
	}{
		{name: "log", write: func(c *Console) { c.Log("hello") }, want: "LOG: hello \n"},
		{name: "warn", write: func(c *Console) { c.Warn("careful") }, want: "WARN: careful \n"},
		{name: "error", write: func(c *Console) { c.Error("boom") }, want: "ERROR: boom \n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(0)
			tt.write(c)
			if got := c.Content(); got != tt.want {
				t.Errorf("Content() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTruncatesOldest(t *testing.T) {
	c := New(20)
	c.Log("first line")
	c.Log("second line")

	got := c.Content()
	if len(got) != 20 {
		t.Fatalf("len(Content()) = %d, want 20", len(got))
	}
	if !strings.HasSuffix(got, "second line \n") {
		t.Errorf("Content() = %q, want most recent text kept", got)
	}
}

func TestTruncateKeepsRuneBoundary(t *testing.T) {
	c := New(8)
	c.Log("ääää")
	if got := c.Content(); !utf8.ValidString(got) {
		t.Errorf("Content() = %q is not valid UTF-8", got)
	}
}

func TestOnChangedSingleSubscriber(t *testing.T) {
	c := New(0)
	var first, second []string
	c.OnChanged(func(s string) { first = append(first, s) })
	c.Log("a")
	c.OnChanged(func(s string) { second = append(second, s) })
	c.Log("b")
	c.Clear()

	if len(first) != 1 {
		t.Errorf("first subscriber got %d notifications, want 1", len(first))
	}
	if len(second) != 2 {
		t.Fatalf("second subscriber got %d notifications, want 2", len(second))
	}
	if second[1] != "" {
		t.Errorf("notification after Clear = %q, want empty", second[1])
	}

	c.OnChanged(nil)
	c.Log("c") // must not panic
}

func TestLevelString(t *testing.T) {
	if LevelWarn.String() != "warn" || LevelError.String() != "error" || LevelInfo.String() != "info" {
		t.Error("unexpected level names")
	}
}
