// SPDX-License-Identifier: EPL-2.0

package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// watchFile calls fn each time path is written or recreated, until ctx is
// done. The parent directory is watched so files replaced by a rename are
// still tracked.
func watchFile(ctx context.Context, path string, logger *slog.Logger, fn func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	name := filepath.Clean(path)
	if err := watcher.Add(filepath.Dir(name)); err != nil {
		return fmt.Errorf("watching %s: %w", path, err)
	}
	logger.Info("watching for changes", slog.String("file", name))

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != name {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				logger.Debug("file changed", slog.String("op", event.Op.String()))
				fn()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", slog.Any("error", err))
		}
	}
}
