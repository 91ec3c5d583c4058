// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 MindustryJsMicrocontroller Authors

// Package cmdspec describes command arguments for autocomplete.
package cmdspec

// ArgType constants for autocomplete argument types
const (
	ArgTypeKeyword = "keyword" // Fixed keyword values
	ArgTypeNumber  = "number"  // Numeric value (no completion)
	ArgTypeFile    = "file"    // File path
	ArgTypeScript  = "script"  // Script file (.js)
	ArgTypeSave    = "save"    // Save file (.yaml, .cbor)
)

// ArgSpec describes an argument's autocomplete behavior.
//
//	ArgSpec{Type: ArgTypeScript}
//	ArgSpec{Type: ArgTypeKeyword, Values: []string{"on", "off"}}
type ArgSpec struct {
	Type   string   `json:"type,omitempty"`   // One of ArgType* constants
	Values []string `json:"values,omitempty"` // For "keyword": valid values
}

// Extensions returns the file extensions an argument type completes, or nil
// for any file.
func (s ArgSpec) Extensions() []string {
	switch s.Type {
	case ArgTypeScript:
		return []string{".js"}
	case ArgTypeSave:
		return []string{".yaml", ".yml", ".cbor"}
	}
	return nil
}

// IsFile reports whether the argument names a file.
func (s ArgSpec) IsFile() bool {
	return s.Type == ArgTypeFile || s.Type == ArgTypeScript || s.Type == ArgTypeSave
}
