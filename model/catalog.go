package model

import "strings"

// Info describes a selectable model for presentation surfaces.
type Info struct {
	// Key is the registry endpoint name.
	Key string
	// DisplayName is the human-readable name shown in pickers.
	DisplayName string
	// Provider is the backend wire format.
	Provider string
	// MaxTokens is the context window size.
	MaxTokens int
	// SupportsStreaming indicates the model can stream token chunks.
	SupportsStreaming bool
}

// catalog lists the built-in models in display order.
var catalog = []Info{
	{
		Key:               "gpt-5-nano",
		DisplayName:       "GPT-5 Nano",
		Provider:          "openai",
		MaxTokens:         16000,
		SupportsStreaming: true,
	},
	{
		Key:               "gemini-2.5-flash",
		DisplayName:       "Gemini 2.5 Flash",
		Provider:          "gemini",
		MaxTokens:         32000,
		SupportsStreaming: true,
	},
	{
		Key:               "claude-haiku",
		DisplayName:       "Claude Haiku 3.5",
		Provider:          "anthropic",
		MaxTokens:         200000,
		SupportsStreaming: true,
	},
	{
		Key:               "llama3.2",
		DisplayName:       "Llama 3.2 (local)",
		Provider:          "ollama",
		MaxTokens:         128000,
		SupportsStreaming: true,
	},
}

// Catalog returns the built-in models in display order.
func Catalog() []Info {
	out := make([]Info, len(catalog))
	copy(out, catalog)
	return out
}

// ByKey finds a model by its registry key.
func ByKey(key string) (Info, bool) {
	for _, info := range catalog {
		if info.Key == key {
			return info, true
		}
	}
	return Info{}, false
}

// ByDisplayName finds a model by its display name (case-insensitive).
func ByDisplayName(name string) (Info, bool) {
	for _, info := range catalog {
		if strings.EqualFold(info.DisplayName, name) {
			return info, true
		}
	}
	return Info{}, false
}

// ResolveKey accepts a model key or display name and returns the registry
// key. Unknown names fall back to defaultKey, mirroring how pickers treat
// free-form input.
func ResolveKey(nameOrKey, defaultKey string) string {
	if nameOrKey == "" {
		return defaultKey
	}
	if info, ok := ByKey(nameOrKey); ok {
		return info.Key
	}
	if info, ok := ByDisplayName(nameOrKey); ok {
		return info.Key
	}
	return defaultKey
}
