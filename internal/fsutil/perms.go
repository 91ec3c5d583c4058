// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 MindustryJsMicrocontroller Authors

// Package fsutil provides filesystem helpers for the mcu data directory.
// Saved scripts and config are private to the user (0600 files, 0700 dirs),
// and files are replaced atomically so a crash never leaves half a script.
package fsutil

import (
	"fmt"
	"os"
	"path/filepath"
)

// DataDirPerm is the permission mode for data directories.
const DataDirPerm os.FileMode = 0700

// DataFilePerm is the permission mode for data files.
const DataFilePerm os.FileMode = 0600

// MkdirAll creates a directory and all parents with data permissions.
// Unlike os.MkdirAll, this explicitly sets permissions after creation to
// bypass umask restrictions.
func MkdirAll(path string) error {
	if err := os.MkdirAll(path, DataDirPerm); err != nil {
		return err
	}
	return os.Chmod(path, DataDirPerm)
}

// WriteFile replaces path with data. The data is written to a temporary
// file in the same directory and renamed over path.
func WriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := MkdirAll(dir); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	f, err := CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

// CreateTemp creates a temporary file with data permissions.
// Caller is responsible for closing and removing it.
func CreateTemp(dir, pattern string) (*os.File, error) {
	f, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return nil, err
	}
	if err := f.Chmod(DataFilePerm); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return nil, fmt.Errorf("failed to set permissions on %s: %w", f.Name(), err)
	}
	return f, nil
}
