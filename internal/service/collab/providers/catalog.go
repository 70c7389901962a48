// Package providers holds the assist provider implementations and the
// embedded model catalog they share.
package providers

import (
	"embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed config/*.yaml
var configFiles embed.FS

// ModelSpec describes one model's limits and capabilities
type ModelSpec struct {
	ID             string `yaml:"id"`
	DisplayName    string `yaml:"display_name"`
	MaxTokens      int    `yaml:"max_tokens"`
	SupportsImages bool   `yaml:"supports_images"`
}

// providerSpec is one provider's YAML file
type providerSpec struct {
	Provider string      `yaml:"provider"`
	Models   []ModelSpec `yaml:"models"`
}

// Catalog manages model specs across all providers
type Catalog struct {
	providers map[string][]ModelSpec
	mu        sync.RWMutex
}

// NewCatalog creates a catalog from the embedded YAML files
func NewCatalog() (*Catalog, error) {
	c := &Catalog{providers: make(map[string][]ModelSpec)}

	for _, name := range []string{"anthropic", "lorem"} {
		if err := c.loadProviderFile(name); err != nil {
			return nil, fmt.Errorf("load %s catalog: %w", name, err)
		}
	}

	return c, nil
}

func (c *Catalog) loadProviderFile(provider string) error {
	data, err := configFiles.ReadFile(fmt.Sprintf("config/%s.yaml", provider))
	if err != nil {
		return err
	}

	var spec providerSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return err
	}

	c.mu.Lock()
	c.providers[provider] = spec.Models
	c.mu.Unlock()
	return nil
}

// Lookup returns the spec for a model, searching all providers
func (c *Catalog) Lookup(model string) (*ModelSpec, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, specs := range c.providers {
		for i := range specs {
			if specs[i].ID == model {
				return &specs[i], true
			}
		}
	}
	return nil, false
}

// MaxTokens returns the model's output budget, or def when unknown
func (c *Catalog) MaxTokens(model string, def int) int {
	if spec, ok := c.Lookup(model); ok && spec.MaxTokens > 0 {
		return spec.MaxTokens
	}
	return def
}

// SupportsImages reports whether the model accepts image attachments
func (c *Catalog) SupportsImages(model string) bool {
	spec, ok := c.Lookup(model)
	return ok && spec.SupportsImages
}

// ListModels returns all models for a provider (ordered as in the YAML)
func (c *Catalog) ListModels(provider string) ([]ModelSpec, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	specs, ok := c.providers[provider]
	if !ok {
		return nil, fmt.Errorf("unknown provider: %s", provider)
	}
	return specs, nil
}

// InferProvider maps a model name onto the provider that serves it.
// Returns "" for an unrecognized model.
func InferProvider(model string) string {
	lower := strings.ToLower(model)
	switch {
	case strings.HasPrefix(lower, "claude"):
		return "anthropic"
	case strings.HasPrefix(lower, "lorem-"):
		return "lorem"
	default:
		return ""
	}
}
