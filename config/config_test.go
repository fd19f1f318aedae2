package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jainds/agentic-ai-mcp-workflows-sub001/model"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Model.Default != "qwen" {
		t.Errorf("Model.Default = %q, want qwen", cfg.Model.Default)
	}
	if cfg.Model.Temperature != 0.2 {
		t.Errorf("Model.Temperature = %v, want 0.2", cfg.Model.Temperature)
	}
	if len(cfg.Providers) != 6 {
		t.Fatalf("Providers = %d entries, want 6", len(cfg.Providers))
	}
	for _, p := range cfg.Providers {
		if p.Kind != ProviderKindMemory {
			t.Errorf("provider %s kind = %q, want memory", p.Name, p.Kind)
		}
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "valid defaults",
			mutate:  func(*Config) {},
			wantErr: "",
		},
		{
			name: "temperature too high",
			mutate: func(c *Config) {
				c.Model.Temperature = 1.5
			},
			wantErr: "temperature",
		},
		{
			name: "temperature negative",
			mutate: func(c *Config) {
				c.Model.Temperature = -0.1
			},
			wantErr: "temperature",
		},
		{
			name: "provider without name",
			mutate: func(c *Config) {
				c.Providers = []ProviderConfig{{Kind: ProviderKindMemory}}
			},
			wantErr: "name is required",
		},
		{
			name: "duplicate provider",
			mutate: func(c *Config) {
				c.Providers = []ProviderConfig{
					{Name: "claims-service", Kind: ProviderKindMemory},
					{Name: "claims-service", Kind: ProviderKindMemory},
				}
			},
			wantErr: "duplicate provider",
		},
		{
			name: "nats provider without subject",
			mutate: func(c *Config) {
				c.NATS.URL = "nats://localhost:4222"
				c.Providers = []ProviderConfig{{Name: "claims-service", Kind: ProviderKindNATS}}
			},
			wantErr: "subject is required",
		},
		{
			name: "nats provider without url",
			mutate: func(c *Config) {
				c.Providers = []ProviderConfig{
					{Name: "claims-service", Kind: ProviderKindNATS, Subject: "svc.claims"},
				}
			},
			wantErr: "nats.url",
		},
		{
			name: "unknown kind",
			mutate: func(c *Config) {
				c.Providers = []ProviderConfig{{Name: "claims-service", Kind: "grpc"}}
			},
			wantErr: "unknown kind",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestMerge(t *testing.T) {
	base := DefaultConfig()
	base.Merge(&Config{
		Model: ModelConfig{Default: "llama", Temperature: 0.7},
		NATS:  NATSConfig{URL: "nats://broker:4222"},
		Providers: []ProviderConfig{
			{Name: "claims-service", Kind: ProviderKindNATS, Subject: "svc.claims"},
		},
	})

	if base.Model.Default != "llama" {
		t.Errorf("Model.Default = %q, want llama", base.Model.Default)
	}
	if base.Model.Temperature != 0.7 {
		t.Errorf("Model.Temperature = %v, want 0.7", base.Model.Temperature)
	}
	if base.NATS.URL != "nats://broker:4222" {
		t.Errorf("NATS.URL = %q", base.NATS.URL)
	}
	// The provider table is replaced wholesale, not unioned.
	if len(base.Providers) != 1 || base.Providers[0].Name != "claims-service" {
		t.Errorf("Providers = %+v, want single claims-service entry", base.Providers)
	}
}

func TestMerge_ZeroValuesKeepBase(t *testing.T) {
	base := DefaultConfig()
	base.Merge(&Config{})

	if base.Model.Default != "qwen" {
		t.Errorf("Model.Default = %q, want qwen", base.Model.Default)
	}
	if len(base.Providers) != 6 {
		t.Errorf("Providers = %d entries, want 6", len(base.Providers))
	}

	base.Merge(nil)
	if len(base.Providers) != 6 {
		t.Error("merging nil should be a no-op")
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "assistant.yaml")
	content := `model:
  default: llama
  temperature: 0.4
nats:
  url: nats://localhost:4222
providers:
  - name: claims-service
    kind: nats
    subject: svc.claims
    timeout: 5s
    allow_actions:
      - get_*
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if cfg.Model.Default != "llama" {
		t.Errorf("Model.Default = %q, want llama", cfg.Model.Default)
	}
	if cfg.Model.Temperature != 0.4 {
		t.Errorf("Model.Temperature = %v, want 0.4", cfg.Model.Temperature)
	}
	if len(cfg.Providers) != 1 {
		t.Fatalf("Providers = %+v, want one entry", cfg.Providers)
	}
	p := cfg.Providers[0]
	if p.Kind != ProviderKindNATS || p.Subject != "svc.claims" {
		t.Errorf("provider = %+v", p)
	}
	if p.Timeout.Seconds() != 5 {
		t.Errorf("Timeout = %v, want 5s", p.Timeout)
	}
	if len(p.AllowActions) != 1 || p.AllowActions[0] != "get_*" {
		t.Errorf("AllowActions = %v", p.AllowActions)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("loaded config should validate: %v", err)
	}
}

func TestLoadFromFile_LeavesUnsetFieldsZero(t *testing.T) {
	path := filepath.Join(t.TempDir(), "assistant.yaml")
	if err := os.WriteFile(path, []byte("model:\n  temperature: 0.4\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	// A file layer must only carry what it says; defaults are merged in by
	// the caller, so a later layer cannot resurrect them over earlier layers.
	if cfg.Model.Default != "" {
		t.Errorf("Model.Default = %q, want empty", cfg.Model.Default)
	}
	if len(cfg.Providers) != 0 {
		t.Errorf("Providers = %+v, want none", cfg.Providers)
	}
	if cfg.Model.Temperature != 0.4 {
		t.Errorf("Model.Temperature = %v, want 0.4", cfg.Model.Temperature)
	}
}

func TestLoadFromFile_Missing(t *testing.T) {
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestSaveToFile_RoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Model.Default = "llama"
	cfg.NATS.URL = "nats://localhost:4222"

	path := filepath.Join(t.TempDir(), "nested", "assistant.yaml")
	if err := cfg.SaveToFile(path); err != nil {
		t.Fatalf("SaveToFile: %v", err)
	}

	loaded, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if loaded.Model.Default != "llama" {
		t.Errorf("Model.Default = %q, want llama", loaded.Model.Default)
	}
	if loaded.NATS.URL != cfg.NATS.URL {
		t.Errorf("NATS.URL = %q, want %q", loaded.NATS.URL, cfg.NATS.URL)
	}
	if len(loaded.Providers) != len(cfg.Providers) {
		t.Errorf("Providers = %d entries, want %d", len(loaded.Providers), len(cfg.Providers))
	}
}

func TestModelRegistry_DefaultsWhenEmpty(t *testing.T) {
	reg := DefaultConfig().ModelRegistry()
	if reg == nil {
		t.Fatal("ModelRegistry returned nil")
	}
	if got := reg.Resolve(model.CapabilityClassification); got == "" {
		t.Error("default registry should resolve classification to a model")
	}
}

func TestModelRegistry_CustomCapabilities(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Model.Capabilities = map[string]*model.CapabilityConfig{
		"classification": {Preferred: []string{"llama"}, Fallback: []string{"qwen"}},
	}
	cfg.Model.Endpoints = map[string]*model.EndpointConfig{
		"llama": {Provider: "openai", URL: "http://localhost:8081/v1", Model: "llama-3.1-8b"},
		"qwen":  {Provider: "openai", URL: "http://localhost:8082/v1", Model: "qwen-2.5-7b"},
	}
	cfg.Model.Default = "llama"

	reg := cfg.ModelRegistry()
	if got := reg.Resolve(model.CapabilityClassification); got != "llama" {
		t.Errorf("Resolve = %q, want llama", got)
	}

	chain := reg.GetFallbackChain(model.CapabilityClassification)
	if len(chain) != 2 || chain[0] != "llama" || chain[1] != "qwen" {
		t.Errorf("fallback chain = %v, want [llama qwen]", chain)
	}

	// An unknown capability falls through to the configured default model.
	if got := reg.Resolve(model.Capability("summarization")); got != "llama" {
		t.Errorf("default Resolve = %q, want llama", got)
	}
}
