// ABOUTME: Built-in model definitions for the OpenAI-compatible provider
// ABOUTME: Catalog order is the preference order used by automatic model selection

package ai

// Built-in model definitions.
var (
	ModelGPT41 = Model{
		ID:              "gpt-4.1",
		Name:            "GPT-4.1",
		Api:             ApiOpenAI,
		Vendor:          "openai",
		MaxOutputTokens: 32768,
		ContextWindow:   1047576,
		SupportsTools:   true,
	}

	ModelGPT41Mini = Model{
		ID:              "gpt-4.1-mini",
		Name:            "GPT-4.1 Mini",
		Api:             ApiOpenAI,
		Vendor:          "openai",
		MaxOutputTokens: 32768,
		ContextWindow:   1047576,
		SupportsTools:   true,
	}

	ModelGPT4o = Model{
		ID:              "gpt-4o",
		Name:            "GPT-4o",
		Api:             ApiOpenAI,
		Vendor:          "openai",
		MaxOutputTokens: 16384,
		ContextWindow:   128000,
		SupportsTools:   true,
	}

	ModelGPT4oMini = Model{
		ID:              "gpt-4o-mini",
		Name:            "GPT-4o Mini",
		Api:             ApiOpenAI,
		Vendor:          "openai",
		MaxOutputTokens: 16384,
		ContextWindow:   128000,
		SupportsTools:   true,
	}
)

// BuiltinModels returns all built-in model definitions in preference order.
func BuiltinModels() []Model {
	return []Model{
		ModelGPT41,
		ModelGPT41Mini,
		ModelGPT4o,
		ModelGPT4oMini,
	}
}

// modelIndex is a pre-built map for O(1) model lookups by ID.
var modelIndex = func() map[string]*Model {
	models := BuiltinModels()
	idx := make(map[string]*Model, len(models))
	for i := range models {
		idx[models[i].ID] = &models[i]
	}
	return idx
}()

// FindModel looks up a model by ID from the built-in list.
// Returns nil if not found. The returned model is a copy the caller may modify.
func FindModel(id string) *Model {
	m, ok := modelIndex[id]
	if !ok {
		return nil
	}
	cp := *m
	return &cp
}

// BuiltinModelIDs returns the IDs of the built-in models in catalog order.
func BuiltinModelIDs() []string {
	models := BuiltinModels()
	ids := make([]string, len(models))
	for i, m := range models {
		ids[i] = m.ID
	}
	return ids
}
