package catalog

import (
	"fmt"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"gopkg.in/fsnotify.v1"
)

// Watcher reloads a catalog file whenever it changes on disk. A failed
// reload keeps the previously loaded catalog; the error is logged and
// watching continues.
type Watcher struct {
	path     string
	logger   *zap.Logger
	onReload func(*Catalog)

	mu      sync.RWMutex
	current *Catalog

	watcher  *fsnotify.Watcher
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewWatcher loads the catalog at path and prepares a watcher for it.
// The logger may be nil.
func NewWatcher(path string, logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	return &Watcher{
		path:    path,
		logger:  logger,
		current: c,
	}, nil
}

// Catalog returns the most recently loaded catalog.
func (w *Watcher) Catalog() *Catalog {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// SetOnReload sets a callback invoked with each successfully reloaded
// catalog.
func (w *Watcher) SetOnReload(fn func(*Catalog)) {
	w.onReload = fn
}

// Watch starts watching the catalog file's directory for changes.
// Watching the directory rather than the file survives editors that
// replace the file on save.
func (w *Watcher) Watch() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}

	w.watcher = watcher
	w.stopChan = make(chan struct{})

	go w.watchLoop()

	dir := filepath.Dir(w.path)
	if err := watcher.Add(dir); err != nil {
		w.watcher.Close()
		return fmt.Errorf("watching directory %s: %w", dir, err)
	}

	return nil
}

// watchLoop handles file system events until Stop is called.
func (w *Watcher) watchLoop() {
	for {
		select {
		case <-w.stopChan:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.reload()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("catalog watch error", zap.Error(err))
		}
	}
}

// Reload re-reads the catalog file immediately.
func (w *Watcher) Reload() error {
	c, err := Load(w.path)
	if err != nil {
		return err
	}
	w.swap(c)
	return nil
}

func (w *Watcher) reload() {
	c, err := Load(w.path)
	if err != nil {
		w.logger.Warn("catalog reload failed, keeping previous catalog",
			zap.String("path", w.path), zap.Error(err))
		return
	}
	w.swap(c)
	w.logger.Info("catalog reloaded",
		zap.String("path", w.path), zap.Int("requirements", c.Len()))
}

func (w *Watcher) swap(c *Catalog) {
	w.mu.Lock()
	w.current = c
	w.mu.Unlock()

	if w.onReload != nil {
		w.onReload(c)
	}
}

// Stop stops watching the catalog file. The fields stay set so the
// watch goroutine drains the closed channels; repeated calls are
// no-ops.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		if w.stopChan != nil {
			close(w.stopChan)
		}
		if w.watcher != nil {
			w.watcher.Close()
		}
	})
}
