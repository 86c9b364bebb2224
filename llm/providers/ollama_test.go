package providers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prospectus/llm"
	"prospectus/model"
)

func TestOllamaProvider_BuildURL(t *testing.T) {
	p := &OllamaProvider{}

	tests := []struct {
		name    string
		baseURL string
		want    string
	}{
		{
			name:    "empty uses default",
			baseURL: "",
			want:    "http://localhost:11434/v1/chat/completions",
		},
		{
			name:    "custom base URL",
			baseURL: "http://myserver:8080/v1",
			want:    "http://myserver:8080/v1/chat/completions",
		},
		{
			name:    "trailing slash handled",
			baseURL: "http://localhost:11434/v1/",
			want:    "http://localhost:11434/v1/chat/completions",
		},
		{
			name:    "already has endpoint",
			baseURL: "http://localhost:11434/v1/chat/completions",
			want:    "http://localhost:11434/v1/chat/completions",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.BuildURL(&model.EndpointConfig{URL: tt.baseURL})
			assert.Equal(t, tt.want, got)
		})
	}

	// A nil endpoint also selects the default host.
	assert.Equal(t, "http://localhost:11434/v1/chat/completions", p.BuildURL(nil))
}

func TestOllamaProvider_BuildRequestBody(t *testing.T) {
	p := &OllamaProvider{}

	messages := []llm.Message{
		{Role: "system", Content: "You are helpful."},
		{Role: "user", Content: "Hello"},
	}

	temp := 0.7
	body, err := p.BuildRequestBody(messages, "llama3.2", llm.BodyOptions{
		Temperature: &temp,
		MaxTokens:   2048,
	})
	require.NoError(t, err)

	assert.Contains(t, string(body), `"model":"llama3.2"`)

	// OpenAI format keeps system as a message
	assert.Contains(t, string(body), `"role":"system"`)
	assert.Contains(t, string(body), `"role":"user"`)

	assert.Contains(t, string(body), `"temperature":0.7`)
	assert.Contains(t, string(body), `"max_tokens":2048`)

	// Neither streaming nor JSON mode was requested
	assert.NotContains(t, string(body), `"stream"`)
	assert.NotContains(t, string(body), `"response_format"`)
}

func TestOllamaProvider_BuildRequestBody_NoOptionalParams(t *testing.T) {
	p := &OllamaProvider{}

	messages := []llm.Message{
		{Role: "user", Content: "Hello"},
	}

	body, err := p.BuildRequestBody(messages, "test-model", llm.BodyOptions{})
	require.NoError(t, err)

	assert.NotContains(t, string(body), `"temperature"`)
	assert.NotContains(t, string(body), `"max_tokens"`)
}

func TestOllamaProvider_BuildRequestBody_ZeroTemperature(t *testing.T) {
	p := &OllamaProvider{}

	messages := []llm.Message{
		{Role: "user", Content: "Hello"},
	}

	temp := 0.0
	body, err := p.BuildRequestBody(messages, "test-model", llm.BodyOptions{Temperature: &temp})
	require.NoError(t, err)

	// Temperature should be present even when 0 (deterministic)
	assert.Contains(t, string(body), `"temperature":0`)
}

func TestOllamaProvider_BuildRequestBody_StreamAndJSON(t *testing.T) {
	p := &OllamaProvider{}

	messages := []llm.Message{
		{Role: "user", Content: "Hello"},
	}

	body, err := p.BuildRequestBody(messages, "test-model", llm.BodyOptions{
		JSONResponse: true,
		Stream:       true,
	})
	require.NoError(t, err)

	assert.Contains(t, string(body), `"stream":true`)
	assert.Contains(t, string(body), `"response_format":{"type":"json_object"}`)
}

func TestOllamaProvider_ParseResponse(t *testing.T) {
	p := &OllamaProvider{}

	responseBody := []byte(`{
		"id": "chatcmpl-123",
		"object": "chat.completion",
		"created": 1677652288,
		"model": "llama3.2",
		"choices": [{
			"index": 0,
			"message": {
				"role": "assistant",
				"content": "Hello! How can I help?"
			},
			"finish_reason": "stop"
		}],
		"usage": {
			"prompt_tokens": 10,
			"completion_tokens": 6,
			"total_tokens": 16
		}
	}`)

	resp, err := p.ParseResponse(responseBody)
	require.NoError(t, err)

	assert.Equal(t, "Hello! How can I help?", resp.Content)
	assert.Equal(t, "llama3.2", resp.Model)
	assert.Equal(t, "stop", resp.FinishReason)

	assert.Equal(t, 10, resp.Usage.PromptTokens)
	assert.Equal(t, 6, resp.Usage.CompletionTokens)
	assert.Equal(t, 16, resp.Usage.TotalTokens)
}

func TestOllamaProvider_ParseResponse_NoChoices(t *testing.T) {
	p := &OllamaProvider{}

	responseBody := []byte(`{
		"id": "chatcmpl-123",
		"choices": []
	}`)

	_, err := p.ParseResponse(responseBody)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}

func TestOllamaProvider_ParseStreamEvent(t *testing.T) {
	p := &OllamaProvider{}

	tests := []struct {
		name     string
		payload  string
		wantNil  bool
		wantErr  bool
		wantText string
		wantDone bool
	}{
		{
			name:     "done sentinel",
			payload:  "[DONE]",
			wantDone: true,
		},
		{
			name:     "content delta",
			payload:  `{"choices":[{"delta":{"content":"Hi"}}]}`,
			wantText: "Hi",
		},
		{
			name:     "finish chunk",
			payload:  `{"choices":[{"delta":{},"finish_reason":"stop"}]}`,
			wantDone: true,
		},
		{
			name:    "role-only delta skipped",
			payload: `{"choices":[{"delta":{"role":"assistant"}}]}`,
			wantNil: true,
		},
		{
			name:    "empty choices skipped",
			payload: `{"choices":[]}`,
			wantNil: true,
		},
		{
			name:    "malformed JSON",
			payload: `{"choices":`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := p.ParseStreamEvent([]byte(tt.payload))

			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)

			if tt.wantNil {
				assert.Nil(t, ev)
				return
			}

			require.NotNil(t, ev)
			assert.Equal(t, tt.wantText, ev.Text)
			assert.Equal(t, tt.wantDone, ev.Done)
		})
	}
}
