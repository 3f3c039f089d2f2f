// Package watch clears the content caches when definition files change on
// disk.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Clearer drops cached content. *content.Store implements it.
type Clearer interface {
	ClearCaches()
}

// Watcher observes content roots and calls ClearCaches once per burst of
// changes.
type Watcher struct {
	roots    []string
	debounce time.Duration
	target   Clearer
	logger   *zap.Logger

	fsw *fsnotify.Watcher

	mu    sync.Mutex
	timer *time.Timer
	// fired counts debounced clears; read by tests.
	fired int
}

// New creates a Watcher over every existing directory under roots. Roots
// that do not exist are skipped.
func New(roots []string, debounce time.Duration, target Clearer, logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create watcher: %w", err)
	}
	w := &Watcher{
		roots:    roots,
		debounce: debounce,
		target:   target,
		logger:   logger,
		fsw:      fsw,
	}
	for _, root := range roots {
		if err := w.addTree(root); err != nil {
			_ = fsw.Close()
			return nil, err
		}
	}
	return w, nil
}

func (w *Watcher) addTree(root string) error {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.fsw.Add(path)
		}
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		w.logger.Debug("watch root missing", zap.String("root", root))
		return nil
	}
	if err != nil {
		return fmt.Errorf("watch: register %s: %w", root, err)
	}
	return nil
}

// Run processes events until ctx is done, then closes the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() {
		w.mu.Lock()
		if w.timer != nil {
			w.timer.Stop()
		}
		w.mu.Unlock()
		_ = w.fsw.Close()
	}()

	w.logger.Info("watching content", zap.Strings("roots", w.roots), zap.Duration("debounce", w.debounce))
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", zap.Error(err))
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return
	}
	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := w.addTree(ev.Name); err != nil {
				w.logger.Warn("failed to watch new directory", zap.String("path", ev.Name), zap.Error(err))
			}
		}
	}
	w.logger.Debug("content changed", zap.String("path", ev.Name), zap.String("op", ev.Op.String()))
	w.schedule()
}

// schedule restarts the debounce timer.
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.clear)
}

func (w *Watcher) clear() {
	w.mu.Lock()
	w.fired++
	w.mu.Unlock()
	w.target.ClearCaches()
}

// Fired returns how many times the caches have been cleared.
func (w *Watcher) Fired() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.fired
}
