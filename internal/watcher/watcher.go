// Package watcher re-runs a sync whenever the pack source tree changes.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ccconfigs/packsync/internal/logging"
)

// DefaultDebounce applies when Config.DebounceDelay is zero.
const DefaultDebounce = 300 * time.Millisecond

// Watcher monitors a source root and batches changes into sync runs.
type Watcher struct {
	root          string
	ignore        []string
	debounceDelay time.Duration
	onChange      func(ctx context.Context, paths []string) error
	logger        *slog.Logger

	fsWatcher *fsnotify.Watcher
	pending   map[string]time.Time
	mu        sync.Mutex
}

// Config holds configuration options for the Watcher.
type Config struct {
	// Root is the pack source root.
	Root string
	// Ignore lists absolute paths whose events are dropped, typically the
	// sync target when it lives inside the source tree.
	Ignore        []string
	DebounceDelay time.Duration
	// OnChange receives the changed paths once the tree has been quiet for
	// DebounceDelay. Its errors are logged and watching continues.
	OnChange func(ctx context.Context, paths []string) error
	Logger   *slog.Logger
}

// New creates a new Watcher with the given configuration.
func New(cfg Config) (*Watcher, error) {
	if cfg.Root == "" {
		return nil, fmt.Errorf("source root is required")
	}
	if cfg.OnChange == nil {
		return nil, fmt.Errorf("change handler is required")
	}
	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("resolve source root: %w", err)
	}

	debounce := cfg.DebounceDelay
	if debounce == 0 {
		debounce = DefaultDebounce
	}

	ignore := make([]string, 0, len(cfg.Ignore))
	for _, p := range cfg.Ignore {
		if p != "" {
			ignore = append(ignore, filepath.Clean(p))
		}
	}

	return &Watcher{
		root:          root,
		ignore:        ignore,
		debounceDelay: debounce,
		onChange:      cfg.OnChange,
		logger:        logging.OrDiscard(cfg.Logger),
		pending:       make(map[string]time.Time),
	}, nil
}

// Start watches the source root until ctx is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	var err error
	w.fsWatcher, err = fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer w.fsWatcher.Close()

	if err := w.addWatchRecursive(w.root); err != nil {
		return fmt.Errorf("failed to watch source root: %w", err)
	}
	w.logger.Debug("watching source root", "path", w.root)

	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		w.processDebounced(ctx)
	}()
	// A sync already running in OnChange finishes before Start returns.
	defer wg.Wait()
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := event.Name
	if w.shouldIgnore(path) {
		return
	}

	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			_ = w.addWatchRecursive(path)
		}
	}
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}

	w.logger.Debug("source event", "op", event.Op.String(), "path", path)
	w.schedule(path)
}

func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending[path] = time.Now()
}

func (w *Watcher) processDebounced(ctx context.Context) {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.processPending(ctx, time.Now())
		}
	}
}

// processPending fires one change once every pending event is older than
// the debounce delay. It reports whether the handler ran.
func (w *Watcher) processPending(ctx context.Context, now time.Time) bool {
	w.mu.Lock()
	if len(w.pending) == 0 {
		w.mu.Unlock()
		return false
	}
	for _, at := range w.pending {
		if now.Sub(at) < w.debounceDelay {
			w.mu.Unlock()
			return false
		}
	}
	paths := make([]string, 0, len(w.pending))
	for path := range w.pending {
		paths = append(paths, path)
	}
	w.pending = make(map[string]time.Time)
	w.mu.Unlock()

	sort.Strings(paths)
	if err := w.onChange(ctx, paths); err != nil {
		w.logger.Error("sync after change failed", "error", err, "paths", len(paths))
	}
	return true
}

func (w *Watcher) addWatchRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && (shouldIgnoreDir(path) || w.shouldIgnore(path)) {
			return filepath.SkipDir
		}
		if err := w.fsWatcher.Add(path); err != nil {
			w.logger.Debug("failed to watch directory", "path", path, "error", err)
		}
		return nil
	})
}

func (w *Watcher) shouldIgnore(path string) bool {
	for _, prefix := range w.ignore {
		if path == prefix || strings.HasPrefix(path, prefix+string(filepath.Separator)) {
			return true
		}
	}

	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return false
	}
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		if ignoredDirs[part] {
			return true
		}
	}
	return false
}

var ignoredDirs = map[string]bool{
	".git":         true,
	".opencode":    true,
	"node_modules": true,
}

func shouldIgnoreDir(path string) bool {
	return ignoredDirs[filepath.Base(path)]
}
