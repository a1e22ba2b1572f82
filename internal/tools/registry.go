// ABOUTME: Tool registry: the host-side set of tools offered to chat models
// ABOUTME: Safe for concurrent use; the chat participant looks the try-tool up by name

package tools

import (
	"sync"

	"github.com/mauromedda/api-tryit-go/internal/agent"
	"github.com/mauromedda/api-tryit-go/internal/tryit"
)

// Registry manages the collection of available agent tools.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]agent.Tool
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]agent.Tool)}
}

// NewDefaultRegistry creates a Registry holding the try-tool bound to client.
func NewDefaultRegistry(client *tryit.Client) *Registry {
	r := NewRegistry()
	r.Register(NewTryTool(client))
	return r
}

// Register adds a tool, replacing any existing tool with the same name.
func (r *Registry) Register(tool agent.Tool) {
	r.mu.Lock()
	r.tools[tool.Info().Name] = tool
	r.mu.Unlock()
}

// Get returns a tool by name, or nil if not found.
func (r *Registry) Get(name string) agent.Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tools[name]
}
