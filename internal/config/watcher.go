// ABOUTME: Polling file watcher that reports settings and credential changes
// ABOUTME: Compares mtimes on a ticker; created, modified, and removed files all count

package config

import (
	"context"
	"os"
	"sync"
	"time"
)

// Watcher monitors files for changes by polling mtime at regular intervals.
type Watcher struct {
	paths    []string
	onChange func()
	interval time.Duration

	mu     sync.Mutex
	mtimes map[string]time.Time
}

// NewWatcher creates a watcher that calls onChange when any monitored file
// is created, modified, or removed.
func NewWatcher(paths []string, onChange func()) *Watcher {
	w := &Watcher{
		paths:    paths,
		onChange: onChange,
		interval: 2 * time.Second,
		mtimes:   make(map[string]time.Time),
	}
	w.snapshot()
	return w
}

// SetInterval overrides the default polling interval (2s). Call before Run.
func (w *Watcher) SetInterval(d time.Duration) {
	w.interval = d
}

// Run polls until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.Check()
		}
	}
}

// Check compares current mtimes with the last snapshot and calls onChange
// synchronously if anything differs.
func (w *Watcher) Check() bool {
	w.mu.Lock()
	changed := w.changedLocked()
	if changed {
		w.snapshotLocked()
	}
	w.mu.Unlock()

	if changed {
		w.onChange()
	}
	return changed
}

func (w *Watcher) snapshot() {
	w.mu.Lock()
	w.snapshotLocked()
	w.mu.Unlock()
}

// changedLocked must be called with mu held.
func (w *Watcher) changedLocked() bool {
	for _, path := range w.paths {
		info, err := os.Stat(path)
		prev, existed := w.mtimes[path]
		if err != nil {
			if existed {
				return true
			}
			continue
		}
		if !existed || !info.ModTime().Equal(prev) {
			return true
		}
	}
	return false
}

// snapshotLocked must be called with mu held.
func (w *Watcher) snapshotLocked() {
	for _, path := range w.paths {
		info, err := os.Stat(path)
		if err != nil {
			delete(w.mtimes, path)
			continue
		}
		w.mtimes[path] = info.ModTime()
	}
}
