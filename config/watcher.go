package config

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const (
	// defaultDebounceDelay is how long to wait for more writes before reloading.
	defaultDebounceDelay = 500 * time.Millisecond
)

// ReloadFunc receives the freshly loaded configuration after a file change.
type ReloadFunc func(*Config)

// Watcher watches a config file and reloads it on change.
//
// Editors commonly replace files via rename, so the watch is placed on the
// parent directory and events are filtered to the config file itself.
type Watcher struct {
	path     string
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
	onReload ReloadFunc
	debounce time.Duration

	pendingMu sync.Mutex
	pending   bool
}

// NewWatcher creates a watcher for the config file at path. The onReload
// callback is invoked with the merged config after each successful reload.
func NewWatcher(path string, onReload ReloadFunc, logger *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Watcher{
		path:     path,
		watcher:  fsw,
		logger:   logger,
		onReload: onReload,
		debounce: defaultDebounceDelay,
	}, nil
}

// Start begins watching the config file for changes.
func (w *Watcher) Start(ctx context.Context) error {
	dir := filepath.Dir(w.path)
	if err := w.watcher.Add(dir); err != nil {
		return err
	}

	go w.processEvents(ctx)

	w.logger.Info("Config watcher started",
		"path", w.path,
		"debounce", w.debounce)

	return nil
}

// Stop stops the watcher.
func (w *Watcher) Stop() error {
	return w.watcher.Close()
}

// processEvents handles fsnotify events with debouncing.
func (w *Watcher) processEvents(ctx context.Context) {
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			w.pendingMu.Lock()
			w.pending = true
			w.pendingMu.Unlock()
			timer.Reset(w.debounce)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("Config watcher error", "error", err)

		case <-timer.C:
			w.pendingMu.Lock()
			dirty := w.pending
			w.pending = false
			w.pendingMu.Unlock()

			if dirty {
				w.reload()
			}
		}
	}
}

// reload re-reads the config file layered over defaults and invokes the
// callback. A broken file keeps the previous config in effect.
func (w *Watcher) reload() {
	fileConfig, err := LoadFromFile(w.path)
	if err != nil {
		w.logger.Warn("Config reload failed, keeping previous config",
			"path", w.path, "error", err)
		return
	}

	config := DefaultConfig()
	config.Merge(fileConfig)

	if err := config.Validate(); err != nil {
		w.logger.Warn("Reloaded config invalid, keeping previous config",
			"path", w.path, "error", err)
		return
	}

	w.logger.Info("Config reloaded",
		"path", w.path,
		"providers", len(config.Providers))

	if w.onReload != nil {
		w.onReload(config)
	}
}
