package providers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"prospectus/model"
)

func TestOpenAIProvider_Name(t *testing.T) {
	p := &OpenAIProvider{}
	assert.Equal(t, "openai", p.Name())
}

func TestOpenAIProvider_BuildURL(t *testing.T) {
	p := &OpenAIProvider{}

	tests := []struct {
		name    string
		baseURL string
		want    string
	}{
		{
			name:    "empty uses default",
			baseURL: "",
			want:    "https://api.openai.com/v1/chat/completions",
		},
		{
			name:    "custom base URL (OpenRouter)",
			baseURL: "https://openrouter.ai/api/v1",
			want:    "https://openrouter.ai/api/v1/chat/completions",
		},
		{
			name:    "trailing slash handled",
			baseURL: "https://api.openai.com/v1/",
			want:    "https://api.openai.com/v1/chat/completions",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.BuildURL(&model.EndpointConfig{URL: tt.baseURL})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOpenAIProvider_SetHeaders(t *testing.T) {
	p := &OpenAIProvider{}

	t.Run("reads key from configured env var", func(t *testing.T) {
		t.Setenv("MY_CUSTOM_KEY", "custom-api-key")

		req, _ := http.NewRequest("POST", "https://api.openai.com/v1/chat/completions", nil)
		p.SetHeaders(req, &model.EndpointConfig{APIKeyEnv: "MY_CUSTOM_KEY"})

		assert.Equal(t, "Bearer custom-api-key", req.Header.Get("Authorization"))
	})

	t.Run("falls back to OPENAI_API_KEY", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "test-api-key")

		req, _ := http.NewRequest("POST", "https://api.openai.com/v1/chat/completions", nil)
		p.SetHeaders(req, &model.EndpointConfig{})

		assert.Equal(t, "Bearer test-api-key", req.Header.Get("Authorization"))
	})

	t.Run("sets OpenRouter headers when env vars present", func(t *testing.T) {
		t.Setenv("OPENROUTER_SITE_URL", "https://myapp.com")
		t.Setenv("OPENROUTER_SITE_NAME", "My App")

		req, _ := http.NewRequest("POST", "https://openrouter.ai/api/v1/chat/completions", nil)
		p.SetHeaders(req, &model.EndpointConfig{})

		assert.Equal(t, "https://myapp.com", req.Header.Get("HTTP-Referer"))
		assert.Equal(t, "My App", req.Header.Get("X-Title"))
	})

	t.Run("no auth header when key is empty", func(t *testing.T) {
		t.Setenv("EMPTY_KEY", "")

		req, _ := http.NewRequest("POST", "https://api.openai.com/v1/chat/completions", nil)
		p.SetHeaders(req, &model.EndpointConfig{APIKeyEnv: "EMPTY_KEY"})

		assert.Empty(t, req.Header.Get("Authorization"))
	})
}
