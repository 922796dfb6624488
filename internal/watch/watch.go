// Package watch reloads a file-backed asset when it changes on disk.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"glowview/internal/logx"
)

// DefaultDebounce coalesces the bursts of events editors emit per save.
const DefaultDebounce = 150 * time.Millisecond

// Watcher reports changes to one file. It watches the parent directory so
// that editors which replace the file by rename are still seen.
type Watcher struct {
	Debounce time.Duration

	path string
	fw   *fsnotify.Watcher
}

// New starts watching path.
func New(path string) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("watch: %s: %w", path, err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch: add %s: %w", filepath.Dir(abs), err)
	}
	return &Watcher{Debounce: DefaultDebounce, path: abs, fw: fw}, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string { return w.path }

// Run calls onChange, from Run's goroutine, once per settled burst of
// writes, creates or renames of the file. It returns when ctx is done or
// the watcher is closed.
func (w *Watcher) Run(ctx context.Context, onChange func()) error {
	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			switch {
			case event.Op&fsnotify.Write == fsnotify.Write ||
				event.Op&fsnotify.Create == fsnotify.Create ||
				event.Op&fsnotify.Rename == fsnotify.Rename:
				if timer == nil {
					timer = time.NewTimer(w.Debounce)
				} else {
					timer.Reset(w.Debounce)
				}
				fire = timer.C
			}
		case <-fire:
			fire = nil
			logx.Logger().Info("asset changed", "path", w.path)
			onChange()
		case err, ok := <-w.fw.Errors:
			if !ok {
				return nil
			}
			logx.Logger().Warn("watch error", "path", w.path, "err", err)
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error { return w.fw.Close() }
