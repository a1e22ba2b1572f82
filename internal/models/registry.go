// ABOUTME: Chat model registry: lazily populated cache of usable language models
// ABOUTME: Refreshes replace the cache atomically; readers never block on a refresh

package models

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mauromedda/api-tryit-go/internal/eventbus"
	pilog "github.com/mauromedda/api-tryit-go/internal/log"
	"github.com/mauromedda/api-tryit-go/pkg/ai"
)

// refreshTimeout bounds background refreshes triggered by change events.
const refreshTimeout = 30 * time.Second

// Selector enumerates the chat models currently available.
type Selector interface {
	SelectChatModels(ctx context.Context) ([]*ai.Model, error)
}

// SelectorFunc adapts a function to Selector.
type SelectorFunc func(ctx context.Context) ([]*ai.Model, error)

// SelectChatModels calls f.
func (f SelectorFunc) SelectChatModels(ctx context.Context) ([]*ai.Model, error) {
	return f(ctx)
}

// Registry caches the result of the last successful selection.
// The zero cache (before the first Refresh) reads as nil.
type Registry struct {
	selector Selector
	cache    atomic.Pointer[[]*ai.Model]
	// mu serializes refreshes so a later refresh always lands last.
	mu sync.Mutex
}

// NewRegistry creates an empty registry backed by selector.
func NewRegistry(selector Selector) *Registry {
	return &Registry{selector: selector}
}

// Models returns the cached models in preference order. The slice is
// shared and must not be modified. A refresh may be in flight; callers
// that find it empty should Refresh and look again.
func (r *Registry) Models() []*ai.Model {
	p := r.cache.Load()
	if p == nil {
		return nil
	}
	return *p
}

// Refresh queries the selector and replaces the cache. On error the
// previous cache is kept.
func (r *Registry) Refresh(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	models, err := r.selector.SelectChatModels(ctx)
	if err != nil {
		return fmt.Errorf("selecting chat models: %w", err)
	}
	snapshot := append([]*ai.Model(nil), models...)
	r.cache.Store(&snapshot)
	pilog.Debug("models: cache refreshed with %d models", len(snapshot))
	return nil
}

// RefreshAsync starts a refresh in the background. The returned channel
// is closed when it completes; failures are logged.
func (r *Registry) RefreshAsync() <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()
		if err := r.Refresh(ctx); err != nil {
			pilog.Warn("models: background refresh failed: %v", err)
		}
	}()
	return done
}

// Watch refreshes in the background whenever bus reports a change.
// The returned function stops watching.
func (r *Registry) Watch(bus *eventbus.Bus[eventbus.ModelsChanged]) func() {
	return bus.Subscribe(func(ev eventbus.ModelsChanged) {
		pilog.Info("models: change detected (%s), refreshing", ev.Source)
		r.RefreshAsync()
	})
}
