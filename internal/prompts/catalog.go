// ABOUTME: Prompt catalog: system prompt, slash-command prompts, composite template
// ABOUTME: Embedded YAML with an optional on-disk override merged entry by entry

package prompts

import (
	"bytes"
	"errors"
	"fmt"
	"maps"
	"os"
	"sync"
	"text/template"

	"gopkg.in/yaml.v3"
)

// Catalog holds the prompt texts used by the chat participant.
type Catalog struct {
	Version   int               `yaml:"version"`
	System    string            `yaml:"system"`
	Commands  map[string]string `yaml:"commands"`
	Composite string            `yaml:"composite"`

	tmpl *template.Template
}

// Input carries the per-request values of the composite prompt.
type Input struct {
	Command string // slash command without the slash; may be empty or unknown
	Specs   string // serialized document snapshot
	Prompt  string // the user's text
}

var defaultCatalog = sync.OnceValues(func() (*Catalog, error) {
	return Parse(embeddedCatalog)
})

// Default returns the embedded catalog.
func Default() *Catalog {
	c, err := defaultCatalog()
	if err != nil {
		panic(fmt.Sprintf("embedded prompt catalog: %v", err))
	}
	return c
}

// Parse reads a catalog from YAML bytes.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse prompt catalog: %w", err)
	}
	if err := c.compile(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Load returns the embedded catalog overlaid with the file at path.
// A missing file is not an error.
func Load(path string) (*Catalog, error) {
	base := Default()
	if path == "" {
		return base, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return base, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read prompt catalog: %w", err)
	}

	var over Catalog
	if err := yaml.Unmarshal(data, &over); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	merged := &Catalog{
		Version:   base.Version,
		System:    base.System,
		Commands:  maps.Clone(base.Commands),
		Composite: base.Composite,
	}
	if over.Version != 0 {
		merged.Version = over.Version
	}
	if over.System != "" {
		merged.System = over.System
	}
	if over.Composite != "" {
		merged.Composite = over.Composite
	}
	if merged.Commands == nil {
		merged.Commands = make(map[string]string)
	}
	maps.Copy(merged.Commands, over.Commands)

	if err := merged.compile(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return merged, nil
}

func (c *Catalog) compile() error {
	if c.Composite == "" {
		return errors.New("prompt catalog has no composite template")
	}
	tmpl, err := template.New("composite").Option("missingkey=zero").Parse(c.Composite)
	if err != nil {
		return fmt.Errorf("parse composite template: %w", err)
	}
	c.tmpl = tmpl
	return nil
}

// CommandPrompt returns the prompt of a recognized command.
func (c *Catalog) CommandPrompt(command string) (string, bool) {
	if command == "" {
		return "", false
	}
	p, ok := c.Commands[command]
	return p, ok && p != ""
}

// Compose renders the composite prompt. The command line appears only for
// a recognized command.
func (c *Catalog) Compose(in Input) (string, error) {
	vars := map[string]string{
		"System": c.System,
		"Specs":  in.Specs,
		"Prompt": in.Prompt,
	}
	if p, ok := c.CommandPrompt(in.Command); ok {
		vars["Command"] = in.Command
		vars["CommandPrompt"] = p
	}

	var buf bytes.Buffer
	if err := c.tmpl.Execute(&buf, vars); err != nil {
		return "", fmt.Errorf("render composite prompt: %w", err)
	}
	return buf.String(), nil
}
