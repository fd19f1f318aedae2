// Package config provides configuration loading and management for the
// assistant: model endpoints for the language services and the capability
// provider table the pipeline executes against.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jainds/agentic-ai-mcp-workflows-sub001/model"
)

// Config represents the complete assistant configuration.
type Config struct {
	Model     ModelConfig      `yaml:"model"`
	NATS      NATSConfig       `yaml:"nats"`
	Providers []ProviderConfig `yaml:"providers"`
}

// ModelConfig configures the capability→model registry for the language
// services.
type ModelConfig struct {
	// Capabilities maps capability names (classification, generation,
	// fast) to model preference chains.
	Capabilities map[string]*model.CapabilityConfig `yaml:"capabilities"`

	// Endpoints maps model names to endpoint definitions.
	Endpoints map[string]*model.EndpointConfig `yaml:"endpoints"`

	// Default is the model used when no capability matches.
	Default string `yaml:"default"`

	// Temperature controls generation randomness (0.0-1.0).
	Temperature float64 `yaml:"temperature"`
}

// NATSConfig configures the connection used by remote capability providers.
type NATSConfig struct {
	// URL is the NATS server URL. Empty disables remote providers.
	URL string `yaml:"url"`
}

// ProviderKind selects how a capability provider is invoked.
type ProviderKind string

const (
	// ProviderKindMemory wires the in-process fixture backend.
	ProviderKindMemory ProviderKind = "memory"

	// ProviderKindNATS wires a remote service over NATS request/reply.
	ProviderKindNATS ProviderKind = "nats"
)

// ProviderConfig describes one entry of the capability provider table.
type ProviderConfig struct {
	// Name is the provider name plan templates address.
	Name string `yaml:"name"`

	// Kind selects the transport (memory, nats).
	Kind ProviderKind `yaml:"kind"`

	// Subject is the NATS request subject (nats kind only).
	Subject string `yaml:"subject,omitempty"`

	// Timeout bounds one invocation (nats kind only).
	Timeout time.Duration `yaml:"timeout,omitempty"`

	// AllowActions restricts the provider to matching action patterns
	// (doublestar globs). Empty allows every action.
	AllowActions []string `yaml:"allow_actions,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults: default model
// chains and the full in-memory provider table.
func DefaultConfig() *Config {
	return &Config{
		Model: ModelConfig{
			Default:     "qwen",
			Temperature: 0.2,
		},
		Providers: []ProviderConfig{
			{Name: "customer-service", Kind: ProviderKindMemory},
			{Name: "policy-service", Kind: ProviderKindMemory},
			{Name: "claims-service", Kind: ProviderKindMemory},
			{Name: "billing-service", Kind: ProviderKindMemory},
			{Name: "quote-service", Kind: ProviderKindMemory},
			{Name: "knowledge-service", Kind: ProviderKindMemory},
		},
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Model.Temperature < 0 || c.Model.Temperature > 1 {
		return fmt.Errorf("model.temperature must be between 0 and 1")
	}
	seen := make(map[string]bool, len(c.Providers))
	for i, p := range c.Providers {
		if p.Name == "" {
			return fmt.Errorf("providers[%d]: name is required", i)
		}
		if seen[p.Name] {
			return fmt.Errorf("providers[%d]: duplicate provider %s", i, p.Name)
		}
		seen[p.Name] = true

		switch p.Kind {
		case ProviderKindMemory:
		case ProviderKindNATS:
			if p.Subject == "" {
				return fmt.Errorf("providers[%d]: subject is required for nats provider %s", i, p.Name)
			}
			if c.NATS.URL == "" {
				return fmt.Errorf("providers[%d]: nats provider %s configured without nats.url", i, p.Name)
			}
		default:
			return fmt.Errorf("providers[%d]: unknown kind %q", i, p.Kind)
		}
	}
	return nil
}

// ModelRegistry builds a model.Registry from the model section. Sections
// left empty fall back to the registry defaults.
func (c *Config) ModelRegistry() *model.Registry {
	if len(c.Model.Capabilities) == 0 && len(c.Model.Endpoints) == 0 {
		return model.NewDefaultRegistry()
	}

	caps := make(map[model.Capability]*model.CapabilityConfig, len(c.Model.Capabilities))
	for name, cfg := range c.Model.Capabilities {
		cap := model.ParseCapability(name)
		if cap == "" {
			cap = model.Capability(name)
		}
		caps[cap] = cfg
	}

	reg := model.NewRegistry(caps, c.Model.Endpoints)
	if c.Model.Default != "" {
		reg.SetDefault(c.Model.Default)
	}
	return reg
}

// LoadFromFile reads one YAML config file as written, without layering
// defaults underneath. Fields the file leaves unset stay zero so a later
// Merge only overrides what the file actually says.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	config := &Config{}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file.
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one; other takes precedence for
// non-zero values. The provider table is replaced wholesale, not unioned:
// a project config's table is authoritative.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	if len(other.Model.Capabilities) > 0 {
		c.Model.Capabilities = other.Model.Capabilities
	}
	if len(other.Model.Endpoints) > 0 {
		c.Model.Endpoints = other.Model.Endpoints
	}
	if other.Model.Default != "" {
		c.Model.Default = other.Model.Default
	}
	if other.Model.Temperature != 0 {
		c.Model.Temperature = other.Model.Temperature
	}

	if other.NATS.URL != "" {
		c.NATS.URL = other.NATS.URL
	}

	if len(other.Providers) > 0 {
		c.Providers = other.Providers
	}
}
