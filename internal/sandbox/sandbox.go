// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 MindustryJsMicrocontroller Authors

// Package sandbox decides which host types and members a processor script
// may observe. Policies are immutable once built and safe for concurrent use.
package sandbox

import (
	"reflect"
	"sort"
	"strings"
)

// WrapperPrefix covers every command-surface wrapper type exported to scripts.
const WrapperPrefix = "github.com/fmoel/MindustryJsMicrocontroller/internal/jsapi."

// DefaultAllowList seeds Default: the wrapper package plus primitive kinds.
var DefaultAllowList = []string{
	WrapperPrefix,
	"string",
	"bool",
	"float32",
	"float64",
	"int",
	"int8",
	"int16",
	"int32",
	"int64",
	"uint",
	"uint8",
	"uint16",
	"uint32",
	"uint64",
}

// hiddenMembers are never resolved, whatever the allow-list says.
var hiddenMembers = map[string]struct{}{
	"getClass":         {},
	"constructor":      {},
	"__proto__":        {},
	"__defineGetter__": {},
	"__defineSetter__": {},
	"__lookupGetter__": {},
	"__lookupSetter__": {},
}

// Default is the process-wide policy.
var Default = New(DefaultAllowList...)

// Policy is an allow-list of qualified type names. Entries ending in "." or
// "/" match every type whose name starts with them.
type Policy struct {
	exact    map[string]struct{}
	prefixes []string
}

// New builds a policy from allow-list entries.
func New(entries ...string) *Policy {
	p := &Policy{exact: make(map[string]struct{}, len(entries))}
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		if strings.HasSuffix(e, ".") || strings.HasSuffix(e, "/") {
			p.prefixes = append(p.prefixes, e)
			continue
		}
		p.exact[e] = struct{}{}
	}
	sort.Strings(p.prefixes)
	return p
}

// IsVisible reports whether values of the named type may be exposed.
func (p *Policy) IsVisible(typeName string) bool {
	if p == nil || typeName == "" {
		return false
	}
	if _, ok := p.exact[typeName]; ok {
		return true
	}
	for _, prefix := range p.prefixes {
		if strings.HasPrefix(typeName, prefix) {
			return true
		}
	}
	return false
}

// Allows reports whether v itself may be exposed. nil is always allowed.
func (p *Policy) Allows(v any) bool {
	if v == nil {
		return true
	}
	return p.IsVisible(TypeName(v))
}

// Entries returns the allow-list, exact names first.
func (p *Policy) Entries() []string {
	out := make([]string, 0, len(p.exact)+len(p.prefixes))
	for e := range p.exact {
		out = append(out, e)
	}
	sort.Strings(out)
	return append(out, p.prefixes...)
}

// IsHiddenMember reports whether a member name is suppressed on every host
// object. Reflective self-inspection goes through these names.
func IsHiddenMember(name string) bool {
	_, ok := hiddenMembers[name]
	return ok
}

// TypeName returns the package-qualified name of v's type with pointers
// stripped, e.g. "os.File". Unnamed types fall back to their kind.
func TypeName(v any) string {
	if v == nil {
		return ""
	}
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Name() == "" {
		return t.Kind().String()
	}
	if t.PkgPath() == "" {
		return t.Name()
	}
	return t.PkgPath() + "." + t.Name()
}
