// ABOUTME: Settings loading with defaults, global + project deep merge, and env overrides
// ABOUTME: JSON files validated with go-playground/validator after merging

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Default values applied when neither file nor environment sets a field.
const (
	DefaultPort           = 3000
	DefaultModel          = "auto"
	DefaultMaxTokens      = 4096
	DefaultMaxConnections = 256
	DefaultResponseLimit  = 5 << 20
)

// Settings holds the merged configuration.
type Settings struct {
	Port           int               `json:"port,omitempty" validate:"min=1,max=65535"`
	Model          string            `json:"model,omitempty" validate:"required"`
	Models         []string          `json:"models,omitempty" validate:"dive,required"`
	BaseURL        string            `json:"base_url,omitempty" validate:"omitempty,url"`
	Temperature    float64           `json:"temperature,omitempty" validate:"gte=0,lte=2"`
	MaxTokens      int               `json:"max_tokens,omitempty" validate:"gte=0"`
	RequestTimeout string            `json:"request_timeout,omitempty" validate:"omitempty,duration"`
	ResponseLimit  int64             `json:"response_limit,omitempty" validate:"gte=0"`
	MaxConnections int               `json:"max_connections,omitempty" validate:"gte=0"`
	LogLevel       string            `json:"log_level,omitempty" validate:"omitempty,oneof=debug info warn warning error"`
	Workspace      Workspace         `json:"workspace"`
	Env            map[string]string `json:"env,omitempty"`
}

// Workspace configures which documents the chat collector reads.
// Empty lists select the collector's built-in globs.
type Workspace struct {
	Include []string `json:"include,omitempty" validate:"dive,required"`
	Exclude []string `json:"exclude,omitempty" validate:"dive,required"`
	// Partial skips unreadable files instead of failing the turn.
	Partial bool `json:"partial,omitempty"`
}

// Timeout returns the parsed request timeout; zero means no overall timeout.
func (s *Settings) Timeout() time.Duration {
	d, _ := time.ParseDuration(s.RequestTimeout)
	return d
}

// Defaults returns settings populated with built-in defaults.
func Defaults() *Settings {
	return &Settings{
		Port:           DefaultPort,
		Model:          DefaultModel,
		MaxTokens:      DefaultMaxTokens,
		MaxConnections: DefaultMaxConnections,
		ResponseLimit:  DefaultResponseLimit,
	}
}

// Load reads and merges global and project-local settings, applies
// environment overrides, and validates the result.
// Precedence: defaults < global < project < environment.
func Load(projectRoot string) (*Settings, error) {
	global, err := loadFile(GlobalConfigFile())
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading global config: %w", err)
	}

	project, err := loadFile(ProjectConfigFile(projectRoot))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	merged := merge(merge(Defaults(), global), project)
	ResolveEnvVars(merged)
	if err := applyEnv(merged); err != nil {
		return nil, err
	}
	if err := Validate(merged); err != nil {
		return nil, err
	}
	return merged, nil
}

// loadFile reads a Settings from a JSON file. A missing file yields an
// empty Settings and an error wrapping os.ErrNotExist.
func loadFile(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return &Settings{}, err
	}
	var s Settings
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &s, nil
}

// merge overlays non-zero fields of over onto base and returns a new value.
func merge(base, over *Settings) *Settings {
	if base == nil {
		base = &Settings{}
	}
	if over == nil {
		return base
	}

	result := *base

	if over.Port != 0 {
		result.Port = over.Port
	}
	if over.Model != "" {
		result.Model = over.Model
	}
	if len(over.Models) > 0 {
		result.Models = append([]string(nil), over.Models...)
	}
	if over.BaseURL != "" {
		result.BaseURL = over.BaseURL
	}
	if over.Temperature != 0 {
		result.Temperature = over.Temperature
	}
	if over.MaxTokens != 0 {
		result.MaxTokens = over.MaxTokens
	}
	if over.RequestTimeout != "" {
		result.RequestTimeout = over.RequestTimeout
	}
	if over.ResponseLimit != 0 {
		result.ResponseLimit = over.ResponseLimit
	}
	if over.MaxConnections != 0 {
		result.MaxConnections = over.MaxConnections
	}
	if over.LogLevel != "" {
		result.LogLevel = over.LogLevel
	}
	if len(over.Workspace.Include) > 0 {
		result.Workspace.Include = append([]string(nil), over.Workspace.Include...)
	}
	if len(over.Workspace.Exclude) > 0 {
		result.Workspace.Exclude = append([]string(nil), over.Workspace.Exclude...)
	}
	if over.Workspace.Partial {
		result.Workspace.Partial = true
	}

	if len(base.Env) > 0 || len(over.Env) > 0 {
		env := make(map[string]string, len(base.Env)+len(over.Env))
		for k, v := range base.Env {
			env[k] = v
		}
		for k, v := range over.Env {
			env[k] = v
		}
		result.Env = env
	}

	return &result
}

// Environment variables that override file settings.
const (
	EnvPort     = "PORT"
	EnvLogLevel = "API_TRYIT_LOG_LEVEL"
	EnvBaseURL  = "OPENAI_BASE_URL"
)

func applyEnv(s *Settings) error {
	if v := os.Getenv(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvPort, v, err)
		}
		s.Port = port
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		s.LogLevel = v
	}
	if v := os.Getenv(EnvBaseURL); v != "" {
		s.BaseURL = v
	}
	return nil
}
