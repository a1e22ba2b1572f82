// ABOUTME: Tests for AuthStore: stored keys, env fallback order, and persistence
// ABOUTME: HOME is redirected to a temp dir so the real auth file is never touched

package config

import (
	"os"
	"testing"
)

func TestAuthStore_GetKey_Stored(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "env-key")
	store := &AuthStore{Keys: map[string]string{"openai": "sk-stored"}}

	if got := store.GetKey("openai"); got != "sk-stored" {
		t.Errorf("GetKey = %q, want stored key", got)
	}
}

func TestAuthStore_GetKey_EnvFallbackOrder(t *testing.T) {
	store := &AuthStore{Keys: map[string]string{}}

	t.Setenv("OPENAI_API_KEY", "generic")
	if got := store.GetKey("openai"); got != "generic" {
		t.Errorf("GetKey = %q, want %q", got, "generic")
	}

	t.Setenv("API_TRYIT_API_KEY_OPENAI", "scoped")
	if got := store.GetKey("openai"); got != "scoped" {
		t.Errorf("GetKey = %q, want %q", got, "scoped")
	}
}

func TestAuthStore_HasKey(t *testing.T) {
	t.Setenv("OLLAMA_API_KEY", "")
	t.Setenv("API_TRYIT_API_KEY_OLLAMA", "")
	store := &AuthStore{Keys: map[string]string{}}
	if store.HasKey("ollama") {
		t.Error("HasKey returned true with no key configured")
	}
}

func TestAuthStore_SaveAndLoad(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv(EnvHome, "")

	store, err := LoadAuth()
	if err != nil {
		t.Fatalf("LoadAuth on empty home: %v", err)
	}
	store.SetKey("openai", "sk-roundtrip")
	if err := store.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	info, err := os.Stat(AuthFile())
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("auth file perm = %o, want 600", perm)
	}

	loaded, err := LoadAuth()
	if err != nil {
		t.Fatalf("LoadAuth: %v", err)
	}
	if loaded.Keys["openai"] != "sk-roundtrip" {
		t.Errorf("loaded key = %q", loaded.Keys["openai"])
	}
}

func TestAuthStore_SetEmptyKeyRemoves(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("API_TRYIT_API_KEY_OPENAI", "")

	store := &AuthStore{Keys: map[string]string{"openai": "sk-old"}}
	store.SetKey("openai", "")
	if _, ok := store.Keys["openai"]; ok {
		t.Error("empty SetKey should delete the entry")
	}
	if store.HasKey("openai") {
		t.Error("HasKey after removal")
	}
}
