package daemon

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/docgen/internal/logfields"
)

// Watcher reports debounced changes below a source directory.
type Watcher struct {
	root     string
	debounce time.Duration
	watcher  *fsnotify.Watcher

	readyOnce sync.Once
	ready     chan struct{}
}

// NewWatcher creates a watcher for root. Changes are reported once no event
// has arrived for the debounce window.
func NewWatcher(root string, debounce time.Duration) (*Watcher, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve source path: %w", err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if debounce <= 0 {
		debounce = 300 * time.Millisecond
	}
	return &Watcher{root: abs, debounce: debounce, watcher: fw, ready: make(chan struct{})}, nil
}

// Ready is closed once every directory below root is being watched.
func (w *Watcher) Ready() <-chan struct{} {
	return w.ready
}

// Run watches until ctx is done, calling onChange after each burst of
// changes. onChange runs on its own goroutine; Run waits for outstanding
// calls before returning.
func (w *Watcher) Run(ctx context.Context, onChange func()) error {
	defer func() { _ = w.watcher.Close() }()

	if err := w.addTree(w.root); err != nil {
		return err
	}
	w.readyOnce.Do(func() { close(w.ready) })
	slog.InfoContext(ctx, "Watching source tree", logfields.Path(w.root))

	var wg sync.WaitGroup
	defer wg.Wait()

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			slog.DebugContext(ctx, "Source change detected", logfields.Path(event.Name), slog.String("op", event.Op.String()))
			if event.Has(fsnotify.Create) {
				if err := w.addTree(event.Name); err != nil {
					slog.WarnContext(ctx, "Failed to watch new directory", logfields.Path(event.Name), logfields.Error(err))
				}
			}
			timer.Reset(w.debounce)
			timerC = timer.C

		case <-timerC:
			timerC = nil
			wg.Add(1)
			go func() {
				defer wg.Done()
				onChange()
			}()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			slog.ErrorContext(ctx, "Source watcher error", logfields.Error(err))
		}
	}
}

// relevant drops chmod-only events and hidden directories. Hidden files are
// published as static assets and still count.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	if !strings.HasPrefix(filepath.Base(event.Name), ".") {
		return true
	}
	info, err := os.Stat(event.Name)
	return err != nil || !info.IsDir()
}

// addTree watches dir and every non-hidden directory below it. Paths that
// are not directories are ignored.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir && path != w.root {
				return nil
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	})
}
