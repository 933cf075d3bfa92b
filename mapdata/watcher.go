package mapdata

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
)

// reloadDelay coalesces bursts of file events (editors write several files
// in quick succession) into one reload.
const reloadDelay = 500 * time.Millisecond

// Watch reloads the index whenever the map package directory changes. It
// blocks until ctx is done. A failed reload keeps the previous package and
// is only logged — the next change gets another chance.
func (idx *Index) Watch(ctx context.Context, dir string, logger *slog.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "creating map package watcher")
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return errors.Wrapf(err, "watching %s", dir)
	}
	for _, sub := range []string{"levels", "groups", "locations"} {
		subDir := filepath.Join(dir, sub)
		if _, err := os.Stat(subDir); err == nil {
			if err := watcher.Add(subDir); err != nil {
				return errors.Wrapf(err, "watching %s", subDir)
			}
		}
	}

	var reload <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			logger.Debug("map package changed", "file", event.Name, "op", event.Op.String())
			reload = time.After(reloadDelay)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("map package watcher error", "error", err)
		case <-reload:
			reload = nil
			if err := idx.LoadDir(dir); err != nil {
				logger.Error("map package reload failed", "error", err)
				continue
			}
			logger.Info("map package reloaded", "package", idx.Package().Name)
		}
	}
}
