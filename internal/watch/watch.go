// Package watch reports changes to a fixed set of files.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce collapses a burst of events into one callback.
const DefaultDebounce = 200 * time.Millisecond

// Watcher invokes a callback when any of its files change.
type Watcher struct {
	files    map[string]bool
	dirs     []string
	debounce time.Duration
	logger   *slog.Logger
}

// New watches files. Their parent directories are watched so files that do
// not exist yet are picked up when created.
func New(files []string, debounce time.Duration, logger *slog.Logger) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = slog.Default()
	}
	w := &Watcher{files: make(map[string]bool, len(files)), debounce: debounce, logger: logger}
	seen := map[string]bool{}
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			abs = filepath.Clean(f)
		}
		w.files[abs] = true
		dir := filepath.Dir(abs)
		if !seen[dir] {
			seen[dir] = true
			w.dirs = append(w.dirs, dir)
		}
	}
	return w
}

// Matches reports whether name is one of the watched files.
func (w *Watcher) Matches(name string) bool {
	abs, err := filepath.Abs(name)
	if err != nil {
		abs = filepath.Clean(name)
	}
	return w.files[abs]
}

// Run blocks until ctx is cancelled, calling onChange after each debounced
// burst of changes. Callbacks run on the Run goroutine, one at a time.
func (w *Watcher) Run(ctx context.Context, onChange func()) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	added := 0
	for _, d := range w.dirs {
		if err := fw.Add(d); err != nil {
			w.logger.Warn("cannot watch directory", slog.String("dir", d), slog.String("error", err.Error()))
			continue
		}
		added++
	}
	if added == 0 {
		return fmt.Errorf("no watchable directories among %v", w.dirs)
	}

	timer := time.NewTimer(w.debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !w.Matches(ev.Name) {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
				continue
			}
			w.logger.Debug("source changed", slog.String("file", ev.Name), slog.String("op", ev.Op.String()))
			timer.Reset(w.debounce)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", slog.String("error", err.Error()))
		case <-timer.C:
			onChange()
		}
	}
}
