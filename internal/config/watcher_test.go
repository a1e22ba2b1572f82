// ABOUTME: Tests for the polling file watcher
// ABOUTME: Uses Check directly for deterministic detection and Run for the ticker path

package config

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func TestWatcher_CheckDetectsCreateModifyRemove(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.json")
	var calls atomic.Int32
	w := NewWatcher([]string{path}, func() { calls.Add(1) })

	if w.Check() {
		t.Fatal("Check reported a change with nothing on disk")
	}

	if err := os.WriteFile(path, []byte(`{}`), 0o600); err != nil {
		t.Fatal(err)
	}
	if !w.Check() {
		t.Fatal("creation not detected")
	}
	if w.Check() {
		t.Fatal("unchanged file reported as changed")
	}

	future := time.Now().Add(time.Hour)
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatal(err)
	}
	if !w.Check() {
		t.Fatal("modification not detected")
	}

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	if !w.Check() {
		t.Fatal("removal not detected")
	}

	if got := calls.Load(); got != 3 {
		t.Errorf("onChange called %d times, want 3", got)
	}
}

func TestWatcher_RunStopsOnCancel(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "auth.json")
	changed := make(chan struct{}, 1)
	w := NewWatcher([]string{path}, func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	w.SetInterval(10 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	if err := os.WriteFile(path, []byte(`{}`), 0o600); err != nil {
		t.Fatal(err)
	}

	select {
	case <-changed:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not report the new file")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
