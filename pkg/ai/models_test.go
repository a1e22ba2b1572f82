// ABOUTME: Tests for built-in model lookup and catalog ordering
// ABOUTME: FindModel must hand out copies so callers cannot mutate the catalog

package ai

import "testing"

func TestFindModel_Found(t *testing.T) {
	t.Parallel()

	m := FindModel("gpt-4o")
	if m == nil {
		t.Fatal("expected non-nil model")
	}
	if m.Name != "GPT-4o" {
		t.Errorf("Name = %q, want %q", m.Name, "GPT-4o")
	}
	if m.Api != ApiOpenAI {
		t.Errorf("Api = %q, want %q", m.Api, ApiOpenAI)
	}
}

func TestFindModel_NotFound(t *testing.T) {
	t.Parallel()

	if m := FindModel("nonexistent-model"); m != nil {
		t.Errorf("expected nil for unknown model, got %v", m)
	}
}

func TestFindModel_ReturnsCopy(t *testing.T) {
	t.Parallel()

	m := FindModel("gpt-4o-mini")
	m.BaseURL = "http://mutated"

	again := FindModel("gpt-4o-mini")
	if again.BaseURL != "" {
		t.Errorf("catalog entry mutated: BaseURL = %q", again.BaseURL)
	}
}

func TestBuiltinModelIDs_Order(t *testing.T) {
	t.Parallel()

	ids := BuiltinModelIDs()
	want := []string{"gpt-4.1", "gpt-4.1-mini", "gpt-4o", "gpt-4o-mini"}
	if len(ids) != len(want) {
		t.Fatalf("got %d ids, want %d", len(ids), len(want))
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("ids[%d] = %q, want %q", i, ids[i], want[i])
		}
	}
}

func BenchmarkFindModel(b *testing.B) {
	for b.Loop() {
		FindModel("gpt-4o")
	}
}
