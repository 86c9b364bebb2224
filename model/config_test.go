package model

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testModelsYAML = `
capabilities:
  selection:
    description: "Link ranking"
    preferred: ["fast-model"]
    fallback: ["slow-model"]
  generation:
    preferred: ["slow-model"]
endpoints:
  fast-model:
    provider: openai
    url: "https://api.example.com/v1"
    model: fast-1
    api_key_env: EXAMPLE_API_KEY
    max_tokens: 8000
    supports_streaming: true
  slow-model:
    provider: ollama
    url: "http://localhost:11434/v1"
    model: slow-1
defaults:
  model: slow-model
`

func TestLoadFromYAML(t *testing.T) {
	r, err := LoadFromYAML([]byte(testModelsYAML))
	if err != nil {
		t.Fatalf("LoadFromYAML() error = %v", err)
	}

	if got := r.Resolve(CapabilitySelection); got != "fast-model" {
		t.Errorf("Resolve(selection) = %q, want fast-model", got)
	}
	if got := r.Resolve(CapabilityGeneration); got != "slow-model" {
		t.Errorf("Resolve(generation) = %q, want slow-model", got)
	}

	ep := r.GetEndpoint("fast-model")
	if ep == nil {
		t.Fatal("expected fast-model endpoint")
	}
	if ep.Provider != "openai" {
		t.Errorf("expected provider openai, got %q", ep.Provider)
	}
	if ep.APIKeyEnv != "EXAMPLE_API_KEY" {
		t.Errorf("expected api_key_env EXAMPLE_API_KEY, got %q", ep.APIKeyEnv)
	}
	if !ep.SupportsStreaming {
		t.Error("expected fast-model to support streaming")
	}
}

func TestLoadFromYAMLWrapped(t *testing.T) {
	wrapped := "models:\n" + indent(testModelsYAML, "  ")

	r, err := LoadFromYAML([]byte(wrapped))
	if err != nil {
		t.Fatalf("LoadFromYAML() error = %v", err)
	}

	if got := r.Resolve(CapabilitySelection); got != "fast-model" {
		t.Errorf("Resolve(selection) = %q, want fast-model", got)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "models.yaml")
	if err := os.WriteFile(path, []byte(testModelsYAML), 0644); err != nil {
		t.Fatalf("write models file: %v", err)
	}

	r, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}
	if got := r.DefaultModel(); got != "slow-model" {
		t.Errorf("DefaultModel = %q, want slow-model", got)
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	if _, err := LoadFromFile("/nonexistent/models.yaml"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestMergeFromConfig(t *testing.T) {
	r := NewDefaultRegistry()

	r.MergeFromConfig(&RegistryConfig{
		Capabilities: map[string]*CapabilityConfig{
			"selection": {Preferred: []string{"merged-model"}},
		},
		Endpoints: map[string]*EndpointConfig{
			"merged-model": {Provider: "ollama", URL: "http://localhost:11434/v1", Model: "merged"},
		},
	})

	if got := r.Resolve(CapabilitySelection); got != "merged-model" {
		t.Errorf("Resolve(selection) = %q, want merged-model", got)
	}
	// Untouched capability keeps its original preference
	if got := r.Resolve(CapabilityGeneration); got != "gemini-2.5-flash" {
		t.Errorf("Resolve(generation) = %q, want gemini-2.5-flash", got)
	}
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = prefix + line
		}
	}
	return strings.Join(lines, "\n")
}
