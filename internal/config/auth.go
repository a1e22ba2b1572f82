// ABOUTME: Credential storage for model providers in ~/.api-tryit/auth.json
// ABOUTME: Stored keys win; API_TRYIT_API_KEY_<PROVIDER> and <PROVIDER>_API_KEY are fallbacks

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
)

// AuthStore holds API keys per provider.
type AuthStore struct {
	Keys map[string]string `json:"keys"` // provider -> api key
	mu   sync.Mutex
}

// LoadAuth reads the auth file, or returns an empty store if it doesn't exist.
func LoadAuth() (*AuthStore, error) {
	store := &AuthStore{Keys: make(map[string]string)}
	data, err := os.ReadFile(AuthFile())
	if errors.Is(err, os.ErrNotExist) {
		return store, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading auth file: %w", err)
	}
	if err := json.Unmarshal(data, store); err != nil {
		return nil, fmt.Errorf("parsing auth file: %w", err)
	}
	if store.Keys == nil {
		store.Keys = make(map[string]string)
	}
	return store, nil
}

// Save writes the auth store to disk with restricted permissions.
func (a *AuthStore) Save() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := EnsureDir(GlobalDir()); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling auth: %w", err)
	}

	if err := os.WriteFile(AuthFile(), data, 0o600); err != nil {
		return fmt.Errorf("writing auth file: %w", err)
	}
	return nil
}

// GetKey returns the API key for a provider, falling back to the
// environment when the store has none.
func (a *AuthStore) GetKey(provider string) string {
	a.mu.Lock()
	key := a.Keys[provider]
	a.mu.Unlock()

	if key != "" {
		return key
	}

	upper := strings.ToUpper(provider)
	for _, env := range []string{"API_TRYIT_API_KEY_" + upper, upper + "_API_KEY"} {
		if v := os.Getenv(env); v != "" {
			return v
		}
	}
	return ""
}

// HasKey reports whether a key is available for the provider.
func (a *AuthStore) HasKey(provider string) bool {
	return a.GetKey(provider) != ""
}

// SetKey stores an API key for a provider. An empty key removes it.
func (a *AuthStore) SetKey(provider, key string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if key == "" {
		delete(a.Keys, provider)
		return
	}
	a.Keys[provider] = key
}
