package search

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/noh-rs/nohrs/errors"
)

// DefaultDebounce is the watcher's batching window. Editors and sync tools
// touch files in bursts; two seconds folds a burst into one reindex.
const DefaultDebounce = 2 * time.Second

// Watcher watches a directory tree recursively and emits debounced batches
// of changed paths. New subdirectories are picked up as they appear.
type Watcher struct {
	fw       *fsnotify.Watcher
	root     string
	debounce time.Duration
	logger   *slog.Logger

	events chan []string
	done   chan struct{}
	once   sync.Once
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithWatcherLogger sets the logger. The default discards everything.
func WithWatcherLogger(logger *slog.Logger) WatcherOption {
	return func(w *Watcher) {
		w.logger = logger
	}
}

// WithDebounce overrides the batching window.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// NewWatcher starts watching root and all its subdirectories.
func NewWatcher(root string, opts ...WatcherOption) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeIO, "create watcher")
	}

	w := &Watcher{
		fw:       fw,
		root:     filepath.Clean(root),
		debounce: DefaultDebounce,
		logger:   slog.New(slog.DiscardHandler),
		events:   make(chan []string, 16),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	if err := w.addTree(w.root); err != nil {
		_ = fw.Close()
		return nil, err
	}

	go w.loop()
	return w, nil
}

// Events delivers batches of changed paths. The channel closes when the
// watcher is closed.
func (w *Watcher) Events() <-chan []string {
	return w.events
}

// Close stops watching and closes the events channel.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.fw.Close()
	})
	return err
}

// addTree registers root and every subdirectory with the watcher.
func (w *Watcher) addTree(root string) error {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			w.logger.Warn("watch walk", "path", path, "error", err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if d.Name() == ".git" && path != root {
			return filepath.SkipDir
		}
		if err := w.fw.Add(path); err != nil {
			w.logger.Warn("watch directory", "path", path, "error", err)
		}
		return nil
	})
	if err != nil {
		return errors.Wrap(err, errors.CodeIO, "register watch tree")
	}
	return nil
}

// loop collects raw events into a pending set and flushes it once the
// debounce window passes without needing per-event timers.
func (w *Watcher) loop() {
	defer close(w.events)

	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	pending := make(map[string]struct{})

	for {
		select {
		case <-w.done:
			return

		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			pending[ev.Name] = struct{}{}

			// Watch new directories as soon as they appear so deeper
			// changes are not lost.
			if ev.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := w.addTree(ev.Name); err != nil {
						w.logger.Warn("watch new directory", "path", ev.Name, "error", err)
					}
				}
			}

		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", "error", err)

		case <-ticker.C:
			if len(pending) == 0 {
				continue
			}
			batch := make([]string, 0, len(pending))
			for path := range pending {
				batch = append(batch, path)
			}
			pending = make(map[string]struct{})

			select {
			case w.events <- batch:
			case <-w.done:
				return
			}
		}
	}
}
