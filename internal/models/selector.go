// ABOUTME: ConfigSelector derives available chat models from settings and credentials
// ABOUTME: Explicit model lists win; otherwise built-ins whose provider has a key

package models

import (
	"context"

	"github.com/mauromedda/api-tryit-go/internal/config"
	pilog "github.com/mauromedda/api-tryit-go/internal/log"
	"github.com/mauromedda/api-tryit-go/pkg/ai"
)

// ConfigSelector reloads settings and credentials on every selection, so a
// refresh after a file change sees the new state.
type ConfigSelector struct {
	ProjectRoot string
}

// SelectChatModels implements Selector.
func (c ConfigSelector) SelectChatModels(ctx context.Context) ([]*ai.Model, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	settings, err := config.Load(c.ProjectRoot)
	if err != nil {
		return nil, err
	}
	auth, err := config.LoadAuth()
	if err != nil {
		return nil, err
	}
	return Select(settings, auth), nil
}

// Select applies the selection rules to already loaded configuration.
//
// With a "models" list, each id is resolved (unknown ids are skipped with a
// warning). Without one, the built-in catalog is filtered to models that
// have credentials or a custom endpoint.
func Select(settings *config.Settings, auth *config.AuthStore) []*ai.Model {
	var out []*ai.Model
	if len(settings.Models) > 0 {
		for _, id := range settings.Models {
			m, err := config.ResolveModel(id)
			if err != nil {
				pilog.Warn("models: skipping %q: %v", id, err)
				continue
			}
			applyBaseURL(m, settings.BaseURL)
			out = append(out, m)
		}
		return out
	}

	for _, builtin := range ai.BuiltinModels() {
		m := builtin
		applyBaseURL(&m, settings.BaseURL)
		if !usable(&m, auth) {
			continue
		}
		out = append(out, &m)
	}
	return out
}

func applyBaseURL(m *ai.Model, baseURL string) {
	if m.BaseURL == "" && baseURL != "" {
		m.BaseURL = baseURL
	}
}

// usable reports whether a model can be called: a local endpoint needs no
// key; the hosted API does.
func usable(m *ai.Model, auth *config.AuthStore) bool {
	if m.Vendor == "ollama" || m.BaseURL != "" {
		return true
	}
	return auth.HasKey(m.Vendor)
}
