// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 MindustryJsMicrocontroller Authors

package store

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const script = "var n = 0;\nwhile (true) {\n  n++;\n  cpu.print(n);\n}\n"

func TestWriteRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saves", "processor1.yaml")

	if err := Write(path, "processor1", script); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("save permissions = %o, want 600", perm)
	}

	s, err := Read(path)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if s.Name != "processor1" || s.Code != script || s.Version != FormatVersion {
		t.Errorf("Read() = %+v", s)
	}
}

func TestWriteReplaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p.yaml")
	if err := Write(path, "p", "var a = 1;"); err != nil {
		t.Fatal(err)
	}
	if err := Write(path, "p", "var a = 2;"); err != nil {
		t.Fatal(err)
	}
	s, err := Read(path)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if s.Code != "var a = 2;" {
		t.Errorf("Code = %q, want the second save", s.Code)
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("directory has %d entries, want no leftover temp files", len(entries))
	}
}

func TestUnmarshalRejects(t *testing.T) {
	good, err := Marshal("p", script)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		data    string
		wantErr error
	}{
		{
			name:    "tampered code",
			data:    strings.Replace(string(good), "n++", "n--", 1),
			wantErr: ErrChecksumMismatch,
		},
		{
			name:    "future version",
			data:    strings.Replace(string(good), "version: 1", "version: 9", 1),
			wantErr: ErrUnsupportedVersion,
		},
		{
			name:    "missing version",
			data:    "name: p\ncode: x\n",
			wantErr: ErrUnsupportedVersion,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Unmarshal([]byte(tt.data)); !errors.Is(err, tt.wantErr) {
				t.Errorf("Unmarshal() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestUnmarshalInvalidYAML(t *testing.T) {
	if _, err := Unmarshal([]byte("code: [unclosed")); err == nil {
		t.Error("Unmarshal() accepted invalid YAML")
	}
}

func TestReadMissing(t *testing.T) {
	if _, err := Read(filepath.Join(t.TempDir(), "nope.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Read() error = %v, want not exist", err)
	}
}

func TestChecksum(t *testing.T) {
	if Checksum("a") == Checksum("b") {
		t.Error("different code has the same checksum")
	}
	if got := len(Checksum("")); got != 64 {
		t.Errorf("checksum length = %d, want 64 hex digits", got)
	}
}

func TestCBORSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "processor1.cbor")
	if err := Write(path, "processor1", script); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Unmarshal(data); err == nil {
		t.Error("CBOR save parsed as a YAML save")
	}

	s, err := Read(path)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if s.Name != "processor1" || s.Code != script {
		t.Errorf("Read() = %+v", s)
	}

	again, err := MarshalFormat(FormatCBOR, "processor1", script)
	if err != nil {
		t.Fatal(err)
	}
	if string(again) != string(data) {
		t.Error("CBOR encoding is not deterministic")
	}
}

func TestFormatFor(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"p.yaml", FormatYAML},
		{"p.yml", FormatYAML},
		{"p.CBOR", FormatCBOR},
		{"dir.cbor/p", FormatYAML},
	}
	for _, tt := range tests {
		if got := FormatFor(tt.path); got != tt.want {
			t.Errorf("FormatFor(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
