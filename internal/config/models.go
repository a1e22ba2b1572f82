// ABOUTME: Model resolution: built-in catalog, provider-prefixed custom ids, fuzzy fallback
// ABOUTME: Resolves the ids named in settings into ai.Model values

package config

import (
	"fmt"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/mauromedda/api-tryit-go/pkg/ai"
)

// OllamaBaseURL is the default endpoint of a local Ollama server.
const OllamaBaseURL = "http://localhost:11434"

// ResolveModel finds a model by ID.
// Checks built-in models first, then provider-prefixed custom models
// ("ollama:llama3"), then the closest built-in id by fuzzy match.
func ResolveModel(id string) (*ai.Model, error) {
	if id == "" {
		return nil, fmt.Errorf("empty model id")
	}

	if m := ai.FindModel(id); m != nil {
		return m, nil
	}

	if provider, modelID, ok := strings.Cut(id, ":"); ok {
		return customModel(provider, modelID)
	}

	if match := closestModelID(id); match != "" {
		return ai.FindModel(match), nil
	}

	return nil, fmt.Errorf("unknown model %q (known: %s)", id, strings.Join(ai.BuiltinModelIDs(), ", "))
}

// closestModelID returns the best fuzzy match among the built-in ids, or "".
func closestModelID(id string) string {
	matches := fuzzy.Find(strings.ToLower(id), ai.BuiltinModelIDs())
	if len(matches) == 0 {
		return ""
	}
	return matches[0].Str
}

func customModel(provider, modelID string) (*ai.Model, error) {
	if modelID == "" {
		return nil, fmt.Errorf("empty model id for provider %q", provider)
	}

	m := &ai.Model{
		ID:              modelID,
		Name:            modelID,
		Api:             ai.ApiOpenAI,
		Vendor:          strings.ToLower(provider),
		MaxOutputTokens: 16384,
		SupportsTools:   true,
	}

	switch m.Vendor {
	case "openai":
	case "ollama":
		m.BaseURL = OllamaBaseURL
	case "vllm", "compat":
		// Served from the configured base_url.
	default:
		return nil, fmt.Errorf("unknown provider %q", provider)
	}
	return m, nil
}
