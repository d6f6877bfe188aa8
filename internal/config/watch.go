package config

import (
	"log"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// Watcher holds the live catalog and polls its file's modification time,
// swapping in a fresh catalog when the file changes. A reload that fails to
// parse or validate is logged and the previous catalog stays active.
type Watcher struct {
	path     string
	interval time.Duration
	logger   *log.Logger

	current   atomic.Pointer[Catalog]
	lastMTime time.Time
	onReload  func(*Catalog)

	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewWatcher loads path once and fails if that first load fails.
func NewWatcher(path string, interval time.Duration, logger *log.Logger) (*Watcher, error) {
	if logger == nil {
		logger = log.New(os.Stdout, "[CONFIG] ", log.LstdFlags)
	}
	w := &Watcher{
		path:     path,
		interval: interval,
		logger:   logger,
		stopCh:   make(chan struct{}),
	}
	if fi, err := os.Stat(path); err == nil {
		w.lastMTime = fi.ModTime()
	}
	cat, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	w.current.Store(cat)
	return w, nil
}

// Catalog returns the active catalog.
func (w *Watcher) Catalog() *Catalog {
	return w.current.Load()
}

// OnReload registers a callback run after each successful reload. Set it before Start.
func (w *Watcher) OnReload(fn func(*Catalog)) {
	w.onReload = fn
}

// Reload re-reads the file now.
func (w *Watcher) Reload() error {
	cat, err := LoadFile(w.path)
	if err != nil {
		w.logger.Printf("config_reload_failed path=%s error=%v", w.path, err)
		return err
	}
	w.current.Store(cat)
	w.logger.Printf("config_reloaded path=%s wheels=%d", w.path, len(cat.Wheels))
	if w.onReload != nil {
		w.onReload(cat)
	}
	return nil
}

// Start begins polling in a goroutine. A non-positive interval disables polling.
func (w *Watcher) Start() {
	if w.interval <= 0 {
		return
	}
	ticker := time.NewTicker(w.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				w.scan()
			case <-w.stopCh:
				return
			}
		}
	}()
}

// Stop terminates polling. It is safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
}

// scan reloads when the file's mtime moved forward. A missing file is skipped.
func (w *Watcher) scan() {
	fi, err := os.Stat(w.path)
	if err != nil {
		return
	}
	mt := fi.ModTime()
	if !mt.After(w.lastMTime) {
		return
	}
	w.lastMTime = mt
	_ = w.Reload()
}
