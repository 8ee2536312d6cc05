// Package watch re-runs the ledger when its current document changes on disk.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/notesman/internal/storage"
)

// Callback is called once the watched document has been quiet for the
// debounce interval after a change.
type Callback func(ctx context.Context, path string)

// Watch observes dir and calls cb when the file called name is created,
// written or replaced. It blocks until ctx is cancelled.
//
// The directory is watched rather than the file because editors and the
// ledger itself replace the document by rename, which drops a file watch.
// Scratch files from atomic writes and every other name are ignored.
func Watch(ctx context.Context, dir, name string, debounce time.Duration, logger *slog.Logger, cb Callback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer w.Close()

	if err := w.Add(dir); err != nil {
		return fmt.Errorf("watch: add %s: %w", dir, err)
	}
	target := filepath.Join(dir, name)

	logger.Info("watcher: started", slog.String("dir", dir), slog.String("document", name))

	var timer *time.Timer
	var fire <-chan time.Time
	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(debounce)
			fire = timer.C
			return
		}
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(debounce)
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-fire:
			logger.Debug("watcher: document settled", slog.String("document", name))
			cb(ctx, target)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if storage.IsTemp(ev.Name) || filepath.Clean(ev.Name) != target {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				if ev.Op&fsnotify.Remove != 0 {
					logger.Warn("watcher: document removed", slog.String("document", name))
				}
				continue
			}
			logger.Debug("watcher: change", slog.String("document", name), slog.String("op", ev.Op.String()))
			schedule()

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
