// Package watch turns file writes into debounced callbacks.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/lotas/tabputz/internal/applog"
)

// DefaultQuiet is how long a watched directory must stay quiet before the
// callback fires.
const DefaultQuiet = 250 * time.Millisecond

// Dir watches dir and calls fn once per burst of write, create or rename
// events on files whose base name satisfies match. It blocks until ctx is
// done. The directory is watched instead of the file because browsers and
// SQLite replace files rather than rewriting them in place.
func Dir(ctx context.Context, dir string, quiet time.Duration, match func(name string) bool, fn func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	applog.Info("watch.start", "dir", dir)

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if !match(filepath.Base(ev.Name)) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(quiet)
			} else {
				timer.Reset(quiet)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			fn()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			applog.Error("watch.error", err, "dir", dir)
		}
	}
}
