// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 MindustryJsMicrocontroller Authors

// Package store persists processor scripts. The script text is the only
// state that survives a save: sessions, sleep gates and the console are
// rebuilt on load.
package store

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/blake2b"
	"gopkg.in/yaml.v3"

	"github.com/fmoel/MindustryJsMicrocontroller/internal/fsutil"
)

// FormatVersion is the current save file format.
const FormatVersion = 1

var (
	// ErrChecksumMismatch indicates the saved code does not match its checksum
	ErrChecksumMismatch = errors.New("saved script does not match its checksum")

	// ErrUnsupportedVersion indicates a save file from a newer format
	ErrUnsupportedVersion = errors.New("unsupported save file version")
)

// Save is one saved processor.
type Save struct {
	Version  int    `yaml:"version" cbor:"1,keyasint"`
	Name     string `yaml:"name" cbor:"2,keyasint"`
	Checksum string `yaml:"checksum" cbor:"3,keyasint"` // BLAKE2b-256 of Code, hex
	Code     string `yaml:"code" cbor:"4,keyasint"`
}

// Format is a save file encoding.
type Format int

const (
	FormatYAML Format = iota
	FormatCBOR
)

// FormatFor picks the encoding from a save file's extension. Anything but
// .cbor is YAML.
func FormatFor(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".cbor") {
		return FormatCBOR
	}
	return FormatYAML
}

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("store: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Checksum returns the hex BLAKE2b-256 digest of code.
func Checksum(code string) string {
	sum := blake2b.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}

// Marshal encodes a processor's script as a YAML save file.
func Marshal(name, code string) ([]byte, error) {
	return MarshalFormat(FormatYAML, name, code)
}

// MarshalFormat encodes a processor's script as a save file in format f.
func MarshalFormat(f Format, name, code string) ([]byte, error) {
	save := Save{
		Version:  FormatVersion,
		Name:     name,
		Checksum: Checksum(code),
		Code:     code,
	}

	var data []byte
	var err error
	if f == FormatCBOR {
		data, err = cborEncMode.Marshal(save)
	} else {
		data, err = yaml.Marshal(save)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to marshal save: %w", err)
	}
	return data, nil
}

// Unmarshal decodes and verifies a YAML save file.
func Unmarshal(data []byte) (Save, error) {
	return UnmarshalFormat(FormatYAML, data)
}

// UnmarshalFormat decodes and verifies a save file in format f.
func UnmarshalFormat(f Format, data []byte) (Save, error) {
	var s Save
	var err error
	if f == FormatCBOR {
		err = cbor.Unmarshal(data, &s)
	} else {
		err = yaml.Unmarshal(data, &s)
	}
	if err != nil {
		return Save{}, fmt.Errorf("failed to parse save: %w", err)
	}
	if s.Version < 1 || s.Version > FormatVersion {
		return Save{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, s.Version)
	}
	if s.Checksum != Checksum(s.Code) {
		return Save{}, ErrChecksumMismatch
	}
	return s, nil
}

// Write saves a processor's script to path, replacing any previous save.
// The extension selects the format.
func Write(path, name, code string) error {
	data, err := MarshalFormat(FormatFor(path), name, code)
	if err != nil {
		return err
	}
	if err := fsutil.WriteFile(path, data); err != nil {
		return fmt.Errorf("failed to write save: %w", err)
	}
	return nil
}

// Read loads and verifies the save at path.
func Read(path string) (Save, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Save{}, fmt.Errorf("failed to read save: %w", err)
	}
	s, err := UnmarshalFormat(FormatFor(path), data)
	if err != nil {
		return Save{}, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}
