package generator

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/crossgen/crossgen/pkg/telemetry"
)

// watchDebounce coalesces bursts of filesystem events into one
// regeneration.
const watchDebounce = 500 * time.Millisecond

// Watch watches the given files and directories and invokes regenerate on
// every (debounced) change. It blocks until the context is cancelled. A
// failing regeneration is logged and watching continues; the next change
// gets another chance.
func Watch(ctx context.Context, paths []string, logger *telemetry.Logger, regenerate func() error) error {
	if logger == nil {
		logger = telemetry.NopLogger()
	}
	log := logger.NewComponentLogger("watch")

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			log.WithError(err).WithField("path", path).Warn("Failed to stat path for watching")
			continue
		}

		if info.IsDir() {
			if err := watchDirectory(watcher, path); err != nil {
				log.WithError(err).WithField("path", path).Warn("Failed to watch directory")
			}
		} else {
			if err := watcher.Add(path); err != nil {
				log.WithError(err).WithField("path", path).Warn("Failed to watch file")
			}
		}
	}

	log.WithField("paths", len(paths)).Info("Watching for changes")

	var debounce *time.Timer
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			log.WithField("file", event.Name).Debug("Change detected")

			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(watchDebounce, func() {
				if err := regenerate(); err != nil {
					log.WithError(err).Error("Regeneration failed")
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.WithError(err).Warn("Watch error")
		}
	}
}

// watchDirectory adds a directory tree to the watcher.
func watchDirectory(watcher *fsnotify.Watcher, dirPath string) error {
	return filepath.WalkDir(dirPath, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
}
