package model

import (
	"sync"

	"gopkg.in/yaml.v3"
)

// Registry manages model selection based on capabilities.
// It maps capabilities to preferred models with fallback chains.
type Registry struct {
	mu           sync.RWMutex
	capabilities map[Capability]*CapabilityConfig
	endpoints    map[string]*EndpointConfig
	defaults     *DefaultsConfig
	health       *healthState
}

// CapabilityConfig defines model preferences for a capability.
type CapabilityConfig struct {
	// Description explains what this capability is for.
	Description string `yaml:"description,omitempty"`

	// Preferred lists models in order of preference.
	// The first available model is used.
	Preferred []string `yaml:"preferred"`

	// Fallback lists backup models if all preferred fail.
	Fallback []string `yaml:"fallback,omitempty"`
}

// EndpointConfig defines an available model endpoint.
type EndpointConfig struct {
	// Provider is the backend wire format (openai, gemini, ollama, anthropic).
	Provider string `yaml:"provider"`

	// URL is the API base URL. Providers supply their default when empty.
	URL string `yaml:"url,omitempty"`

	// Model is the actual model identifier to send to the provider.
	Model string `yaml:"model"`

	// APIKeyEnv names the environment variable holding the API key.
	APIKeyEnv string `yaml:"api_key_env,omitempty"`

	// MaxTokens is the context window size.
	MaxTokens int `yaml:"max_tokens,omitempty"`

	// SupportsStreaming indicates the endpoint can stream token chunks.
	SupportsStreaming bool `yaml:"supports_streaming,omitempty"`
}

// DefaultsConfig holds default model settings.
type DefaultsConfig struct {
	// Model is the default model when no capability matches.
	Model string `yaml:"model"`
}

// NewRegistry creates a new model registry with the given configuration.
func NewRegistry(caps map[Capability]*CapabilityConfig, endpoints map[string]*EndpointConfig) *Registry {
	return &Registry{
		capabilities: caps,
		endpoints:    endpoints,
		defaults: &DefaultsConfig{
			Model: "gemini-2.5-flash",
		},
	}
}

// NewDefaultRegistry creates a registry with the built-in model set.
// Used when no configuration is provided.
func NewDefaultRegistry() *Registry {
	return &Registry{
		capabilities: map[Capability]*CapabilityConfig{
			CapabilitySelection: {
				Description: "Link relevance ranking, structured JSON output",
				Preferred:   []string{"gpt-5-nano"},
				Fallback:    []string{"gemini-2.5-flash"},
			},
			CapabilityGeneration: {
				Description: "Brochure writing, streaming markdown output",
				Preferred:   []string{"gemini-2.5-flash"},
				Fallback:    []string{"gpt-5-nano"},
			},
		},
		endpoints: map[string]*EndpointConfig{
			"gpt-5-nano": {
				Provider:          "openai",
				URL:               "https://api.openai.com/v1",
				Model:             "gpt-5-nano",
				APIKeyEnv:         "OPENAI_API_KEY",
				MaxTokens:         16000,
				SupportsStreaming: true,
			},
			"gemini-2.5-flash": {
				Provider:          "gemini",
				URL:               "https://generativelanguage.googleapis.com/v1beta/openai",
				Model:             "gemini-2.5-flash",
				APIKeyEnv:         "GOOGLE_API_KEY",
				MaxTokens:         32000,
				SupportsStreaming: true,
			},
			"claude-haiku": {
				Provider:          "anthropic",
				Model:             "claude-haiku-3-5-20241022",
				APIKeyEnv:         "ANTHROPIC_API_KEY",
				MaxTokens:         200000,
				SupportsStreaming: true,
			},
			"llama3.2": {
				Provider:          "ollama",
				URL:               "http://localhost:11434/v1",
				Model:             "llama3.2",
				MaxTokens:         128000,
				SupportsStreaming: true,
			},
		},
		defaults: &DefaultsConfig{
			Model: "gemini-2.5-flash",
		},
	}
}

// Resolve returns the preferred model for a capability.
// Returns the first model in the preferred list.
// Fallback handling is done by the llm client on failure (lazy approach).
func (r *Registry) Resolve(cap Capability) string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if cfg, ok := r.capabilities[cap]; ok && len(cfg.Preferred) > 0 {
		return cfg.Preferred[0]
	}
	return r.defaults.Model
}

// GetFallbackChain returns all models for a capability in order of preference.
// Used by the llm client when the primary fails to try alternatives.
func (r *Registry) GetFallbackChain(cap Capability) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if cfg, ok := r.capabilities[cap]; ok {
		chain := make([]string, 0, len(cfg.Preferred)+len(cfg.Fallback))
		chain = append(chain, cfg.Preferred...)
		chain = append(chain, cfg.Fallback...)
		return chain
	}
	return []string{r.defaults.Model}
}

// GetEndpoint returns the endpoint configuration for a model name.
// Returns nil if the model is not configured.
func (r *Registry) GetEndpoint(modelName string) *EndpointConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.endpoints[modelName]
}

// SetCapability updates or adds a capability configuration.
func (r *Registry) SetCapability(cap Capability, cfg *CapabilityConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.capabilities == nil {
		r.capabilities = make(map[Capability]*CapabilityConfig)
	}
	r.capabilities[cap] = cfg
}

// SetEndpoint updates or adds an endpoint configuration.
func (r *Registry) SetEndpoint(name string, cfg *EndpointConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.endpoints == nil {
		r.endpoints = make(map[string]*EndpointConfig)
	}
	r.endpoints[name] = cfg
}

// SetDefault sets the default model.
func (r *Registry) SetDefault(model string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.defaults == nil {
		r.defaults = &DefaultsConfig{}
	}
	r.defaults.Model = model
}

// DefaultModel returns the model used when no capability matches.
func (r *Registry) DefaultModel() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.defaults == nil {
		return ""
	}
	return r.defaults.Model
}

// ListCapabilities returns all configured capabilities.
func (r *Registry) ListCapabilities() []Capability {
	r.mu.RLock()
	defer r.mu.RUnlock()

	caps := make([]Capability, 0, len(r.capabilities))
	for cap := range r.capabilities {
		caps = append(caps, cap)
	}
	return caps
}

// ListEndpoints returns all configured endpoint names.
func (r *Registry) ListEndpoints() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.endpoints))
	for name := range r.endpoints {
		names = append(names, name)
	}
	return names
}

// MarshalYAML implements yaml.Marshaler for the registry.
func (r *Registry) MarshalYAML() (any, error) {
	return r.ToConfig(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler for the registry.
func (r *Registry) UnmarshalYAML(value *yaml.Node) error {
	var cfg RegistryConfig
	if err := value.Decode(&cfg); err != nil {
		return err
	}

	fresh := registryFromConfig(&cfg)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.capabilities = fresh.capabilities
	r.endpoints = fresh.endpoints
	r.defaults = fresh.defaults
	return nil
}
