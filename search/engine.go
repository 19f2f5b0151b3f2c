package search

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/noh-rs/nohrs/errors"
)

// EngineConfig wires an Engine together.
type EngineConfig struct {
	// IndexPath is the SQLite database file for the content index.
	IndexPath string

	// ContentRoot is the tree the index covers and the watcher observes.
	ContentRoot string

	// RipgrepRoot is the tree the root scope searches. Defaults to "/".
	RipgrepRoot string

	// MaxFileSize caps the size of files whose content is indexed.
	// Zero means DefaultMaxFileSize.
	MaxFileSize int64

	// Debounce is the watcher batching window. Zero means DefaultDebounce.
	Debounce time.Duration

	// DisableWatcher turns off live index updates.
	DisableWatcher bool

	// Logger defaults to a discarding logger.
	Logger *slog.Logger
}

// Engine owns the index, the ripgrep fallback, and the watcher feeding
// index updates. Construction kicks off a full indexing pass in the
// background; Progress reports how far it has gotten.
type Engine struct {
	index   *Index
	ripgrep *Ripgrep
	watcher *Watcher
	logger  *slog.Logger

	// progress holds a float64 in [0,1] as bits.
	progress atomic.Uint64

	wg       sync.WaitGroup
	stopOnce sync.Once
	stop     chan struct{}
}

// NewEngine opens the index and starts background indexing plus the
// watcher pipeline. Callers must Close the engine to release them.
func NewEngine(cfg EngineConfig) (*Engine, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	index, err := OpenIndex(cfg.IndexPath, cfg.ContentRoot,
		WithIndexLogger(logger), WithMaxFileSize(cfg.MaxFileSize))
	if err != nil {
		return nil, err
	}

	rgRoot := cfg.RipgrepRoot
	if rgRoot == "" {
		rgRoot = "/"
	}

	e := &Engine{
		index:   index,
		ripgrep: NewRipgrep(rgRoot, WithRipgrepLogger(logger)),
		logger:  logger,
		stop:    make(chan struct{}),
	}

	if !cfg.DisableWatcher {
		watcherOpts := []WatcherOption{WithWatcherLogger(logger)}
		if cfg.Debounce > 0 {
			watcherOpts = append(watcherOpts, WithDebounce(cfg.Debounce))
		}
		watcher, err := NewWatcher(cfg.ContentRoot, watcherOpts...)
		if err != nil {
			_ = index.Close()
			return nil, err
		}
		e.watcher = watcher

		e.wg.Add(1)
		go e.consumeChanges()
	}

	e.wg.Add(1)
	go e.initialIndex()

	return e, nil
}

// initialIndex runs the first full pass. A pass interrupted by Close leaves
// the index partially filled; the next start repairs it.
func (e *Engine) initialIndex() {
	defer e.wg.Done()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-e.stop:
			cancel()
		case <-ctx.Done():
		}
	}()

	err := e.index.IndexTree(ctx, func(p float64) {
		e.progress.Store(math.Float64bits(p))
	})
	if err != nil {
		e.logger.Error("initial indexing failed", "root", e.index.Root(), "error", err)
	}
}

// consumeChanges feeds watcher batches into the index.
func (e *Engine) consumeChanges() {
	defer e.wg.Done()

	for batch := range e.watcher.Events() {
		if err := e.index.ProcessChanges(batch); err != nil {
			e.logger.Warn("process change batch", "paths", len(batch), "error", err)
		}
	}
}

// Progress reports initial indexing completion in [0,1].
func (e *Engine) Progress() float64 {
	return math.Float64frombits(e.progress.Load())
}

// Index exposes the underlying index for direct maintenance operations.
func (e *Engine) Index() *Index {
	return e.index
}

// Search dispatches the query to the backend for the scope.
func (e *Engine) Search(ctx context.Context, query string, scope Scope) ([]Result, error) {
	switch scope {
	case ScopeHome:
		return e.index.Search(ctx, query)
	case ScopeRoot:
		return e.ripgrep.Search(ctx, query)
	default:
		return nil, errors.Newf(errors.CodeInvalidScope, "unknown search scope %d", int(scope))
	}
}

// Close stops the watcher and background work, then closes the index.
func (e *Engine) Close() error {
	var firstErr error
	e.stopOnce.Do(func() {
		close(e.stop)
		if e.watcher != nil {
			if err := e.watcher.Close(); err != nil {
				firstErr = err
			}
		}
		e.wg.Wait()
		if err := e.index.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	})
	return firstErr
}
