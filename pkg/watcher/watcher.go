// Package watcher reruns work when input files change on disk.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/philipparndt/meshcut/pkg/logging"
)

// Watcher collects change events for a set of files. Bursts of events for
// the same file are merged into one after the debounce interval.
type Watcher struct {
	fs       *fsnotify.Watcher
	debounce time.Duration
	log      logging.Logger

	mu      sync.Mutex
	files   map[string]struct{}
	pending map[string]*time.Timer
	changes chan string
}

// New creates a watcher. A nil logger discards messages.
func New(debounce time.Duration, log logging.Logger) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	return &Watcher{
		fs:       fs,
		debounce: debounce,
		log:      logging.OrNop(log),
		files:    make(map[string]struct{}),
		pending:  make(map[string]*time.Timer),
		changes:  make(chan string, 16),
	}, nil
}

// Add starts watching files.
func (w *Watcher) Add(files ...string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, file := range files {
		absPath, err := filepath.Abs(file)
		if err != nil {
			return fmt.Errorf("failed to resolve path %s: %w", file, err)
		}
		if _, ok := w.files[absPath]; ok {
			continue
		}
		if err := w.fs.Add(absPath); err != nil {
			return fmt.Errorf("failed to watch %s: %w", absPath, err)
		}
		w.files[absPath] = struct{}{}
	}
	return nil
}

// Files returns the watched paths, sorted.
func (w *Watcher) Files() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, 0, len(w.files))
	for f := range w.files {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Run calls onChange for every debounced change until ctx is done. Calls
// are made one at a time from the calling goroutine; an error from onChange
// is logged and watching continues.
func (w *Watcher) Run(ctx context.Context, onChange func(path string) error) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.log.Warnf("watcher error: %v", err)

		case path := <-w.changes:
			w.log.Infof("%s changed", filepath.Base(path))
			if err := onChange(path); err != nil {
				w.log.Errorf("%v", err)
			}
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.files[event.Name]; !ok {
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
		return
	}

	path := event.Name
	replaced := event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove)
	if timer, ok := w.pending[path]; ok {
		timer.Stop()
	}
	w.pending[path] = time.AfterFunc(w.debounce, func() {
		if replaced {
			// editors that save by rename leave the old inode behind
			if err := w.fs.Add(path); err != nil {
				w.log.Debugf("re-watch %s: %v", path, err)
				return
			}
		}
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()
		select {
		case w.changes <- path:
		default:
		}
	})
}

// Close stops the watcher
func (w *Watcher) Close() error {
	w.mu.Lock()
	for _, timer := range w.pending {
		timer.Stop()
	}
	w.mu.Unlock()
	return w.fs.Close()
}
