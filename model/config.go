package model

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// RegistryConfig represents the YAML configuration structure for the model
// registry. This is the format accepted under a "models" key in a config
// file, or as a standalone models file.
type RegistryConfig struct {
	Capabilities map[string]*CapabilityConfig `yaml:"capabilities"`
	Endpoints    map[string]*EndpointConfig   `yaml:"endpoints"`
	Defaults     *DefaultsConfig              `yaml:"defaults,omitempty"`
}

// LoadFromFile loads a registry configuration from a YAML file.
func LoadFromFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read models file: %w", err)
	}

	return LoadFromYAML(data)
}

// LoadFromYAML loads a registry from YAML data.
// Accepts either a document with a "models" key or just the registry config.
func LoadFromYAML(data []byte) (*Registry, error) {
	var wrapped struct {
		Models *RegistryConfig `yaml:"models"`
	}
	if err := yaml.Unmarshal(data, &wrapped); err == nil && wrapped.Models != nil {
		return registryFromConfig(wrapped.Models), nil
	}

	var regConfig RegistryConfig
	if err := yaml.Unmarshal(data, &regConfig); err != nil {
		return nil, fmt.Errorf("parse models config: %w", err)
	}

	return registryFromConfig(&regConfig), nil
}

// registryFromConfig converts a RegistryConfig to a Registry.
func registryFromConfig(cfg *RegistryConfig) *Registry {
	caps := make(map[Capability]*CapabilityConfig, len(cfg.Capabilities))
	for k, v := range cfg.Capabilities {
		cap := ParseCapability(k)
		if cap == "" {
			// Keep unknown capability names as-is so custom setups still resolve
			cap = Capability(k)
		}
		caps[cap] = v
	}

	defaults := cfg.Defaults
	if defaults == nil {
		defaults = &DefaultsConfig{Model: "gemini-2.5-flash"}
	}

	return &Registry{
		capabilities: caps,
		endpoints:    cfg.Endpoints,
		defaults:     defaults,
	}
}

// ToConfig converts a Registry to a RegistryConfig for serialization.
func (r *Registry) ToConfig() *RegistryConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()

	caps := make(map[string]*CapabilityConfig, len(r.capabilities))
	for k, v := range r.capabilities {
		caps[string(k)] = v
	}

	return &RegistryConfig{
		Capabilities: caps,
		Endpoints:    r.endpoints,
		Defaults:     r.defaults,
	}
}

// MergeFromConfig merges configuration into an existing registry.
// Existing entries are overwritten by the new config.
func (r *Registry) MergeFromConfig(cfg *RegistryConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for k, v := range cfg.Capabilities {
		cap := ParseCapability(k)
		if cap == "" {
			cap = Capability(k)
		}
		r.capabilities[cap] = v
	}

	for k, v := range cfg.Endpoints {
		r.endpoints[k] = v
	}

	if cfg.Defaults != nil {
		r.defaults = cfg.Defaults
	}
}
