// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 MindustryJsMicrocontroller Authors

package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/fmoel/MindustryJsMicrocontroller/internal/util"
)

// startScriptWatcher reloads path whenever it changes on disk. The parent
// directory is watched so editors that replace the file by rename are seen.
// onReload, if set, is called after each reload.
func startScriptWatcher(ctx context.Context, a *app, path string, onReload func()) error {
	path = filepath.Clean(path)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch script directory: %w", err)
	}

	go func() {
		defer func() { _ = watcher.Close() }()

		// Debounce timer to avoid rapid reloads
		var debounceTimer *time.Timer
		defer func() {
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
		}()

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != path {
					continue
				}
				if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
					continue
				}

				if debounceTimer != nil {
					debounceTimer.Stop()
				}
				debounceTimer = time.AfterFunc(a.config.WatchDebounce, func() {
					if err := a.loadFile(path); err != nil {
						util.Logger.Warn("script reload failed", "path", path, "error", err)
						return
					}
					util.Logger.Info("script reloaded", "path", path, "errors", a.eng.HasErrors())
					if onReload != nil {
						onReload()
					}
				})

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				util.Logger.Warn("file watcher error", "error", err)
			}
		}
	}()

	return nil
}
