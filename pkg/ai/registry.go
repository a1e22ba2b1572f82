// ABOUTME: Provider registry mapping API wire formats to provider factories
// ABOUTME: Owned by the caller (no package globals); safe for concurrent use

package ai

import (
	"context"
	"sync"
)

// ProviderFactory creates an ApiProvider given a base URL override (optional).
type ProviderFactory func(baseURL string) ApiProvider

// ApiProvider is the interface all LLM providers implement.
type ApiProvider interface {
	// Api returns the provider's API identifier.
	Api() Api

	// Stream initiates a streaming LLM call and returns an EventStream.
	// The context.Context controls cancellation of the underlying HTTP request.
	Stream(ctx context.Context, model *Model, llmCtx *Context, opts *StreamOptions) *EventStream
}

// Providers holds the registered provider factories.
type Providers struct {
	mu        sync.RWMutex
	factories map[Api]ProviderFactory
}

// NewProviders creates an empty provider registry.
func NewProviders() *Providers {
	return &Providers{factories: make(map[Api]ProviderFactory)}
}

// Register registers a factory for the given API, replacing any previous one.
func (p *Providers) Register(api Api, factory ProviderFactory) {
	p.mu.Lock()
	p.factories[api] = factory
	p.mu.Unlock()
}

// Get returns a provider for the given API and optional base URL.
// Returns nil if no provider is registered.
func (p *Providers) Get(api Api, baseURL string) ApiProvider {
	p.mu.RLock()
	factory, ok := p.factories[api]
	p.mu.RUnlock()
	if !ok {
		return nil
	}
	return factory(baseURL)
}

// Has checks if a provider is registered for the given API.
func (p *Providers) Has(api Api) bool {
	p.mu.RLock()
	_, ok := p.factories[api]
	p.mu.RUnlock()
	return ok
}

// For returns the provider serving the given model.
func (p *Providers) For(model *Model) ApiProvider {
	if model == nil {
		return nil
	}
	return p.Get(model.Api, model.BaseURL)
}
