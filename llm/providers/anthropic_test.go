package providers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prospectus/llm"
	"prospectus/model"
)

func TestAnthropicProvider_BuildURL(t *testing.T) {
	p := &AnthropicProvider{}

	tests := []struct {
		name    string
		baseURL string
		want    string
	}{
		{
			name:    "empty uses default",
			baseURL: "",
			want:    "https://api.anthropic.com/v1/messages",
		},
		{
			name:    "custom base URL",
			baseURL: "https://proxy.example.com",
			want:    "https://proxy.example.com/v1/messages",
		},
		{
			name:    "trailing slash handled",
			baseURL: "https://api.anthropic.com/",
			want:    "https://api.anthropic.com/v1/messages",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.BuildURL(&model.EndpointConfig{URL: tt.baseURL})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAnthropicProvider_SetHeaders(t *testing.T) {
	p := &AnthropicProvider{}

	t.Setenv("ANTHROPIC_API_KEY", "test-anthropic-key")

	req, _ := http.NewRequest("POST", "https://api.anthropic.com/v1/messages", nil)
	p.SetHeaders(req, &model.EndpointConfig{})

	assert.Equal(t, "test-anthropic-key", req.Header.Get("x-api-key"))
	assert.Equal(t, anthropicVersion, req.Header.Get("anthropic-version"))
}

func TestAnthropicProvider_BuildRequestBody(t *testing.T) {
	p := &AnthropicProvider{}

	messages := []llm.Message{
		{Role: "system", Content: "You are a brochure writer."},
		{Role: "user", Content: "Write about Acme."},
	}

	temp := 0.7
	body, err := p.BuildRequestBody(messages, "claude-haiku-3-5-20241022", llm.BodyOptions{
		Temperature: &temp,
		MaxTokens:   2000,
	})
	require.NoError(t, err)

	var req map[string]any
	require.NoError(t, json.Unmarshal(body, &req))

	// System prompt is lifted to the top-level field
	assert.Equal(t, "You are a brochure writer.", req["system"])

	msgs, ok := req["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 1)

	first := msgs[0].(map[string]any)
	assert.Equal(t, "user", first["role"])

	assert.Equal(t, float64(2000), req["max_tokens"])
	assert.Equal(t, 0.7, req["temperature"])
	assert.NotContains(t, string(body), `"stream"`)
}

func TestAnthropicProvider_BuildRequestBody_DefaultMaxTokens(t *testing.T) {
	p := &AnthropicProvider{}

	body, err := p.BuildRequestBody([]llm.Message{
		{Role: "user", Content: "Hello"},
	}, "claude-haiku-3-5-20241022", llm.BodyOptions{})
	require.NoError(t, err)

	// max_tokens is required by the API, so a default is filled in
	assert.Contains(t, string(body), `"max_tokens":4096`)
}

func TestAnthropicProvider_BuildRequestBody_Stream(t *testing.T) {
	p := &AnthropicProvider{}

	body, err := p.BuildRequestBody([]llm.Message{
		{Role: "user", Content: "Hello"},
	}, "claude-haiku-3-5-20241022", llm.BodyOptions{Stream: true})
	require.NoError(t, err)

	assert.Contains(t, string(body), `"stream":true`)
}

func TestAnthropicProvider_ParseResponse(t *testing.T) {
	p := &AnthropicProvider{}

	responseBody := []byte(`{
		"id": "msg_123",
		"type": "message",
		"role": "assistant",
		"content": [
			{"type": "text", "text": "Hello! "},
			{"type": "text", "text": "How can I help?"}
		],
		"model": "claude-haiku-3-5-20241022",
		"stop_reason": "end_turn",
		"usage": {
			"input_tokens": 12,
			"output_tokens": 8
		}
	}`)

	resp, err := p.ParseResponse(responseBody)
	require.NoError(t, err)

	// Text blocks are concatenated
	assert.Equal(t, "Hello! How can I help?", resp.Content)
	assert.Equal(t, "claude-haiku-3-5-20241022", resp.Model)
	assert.Equal(t, "end_turn", resp.FinishReason)

	assert.Equal(t, 12, resp.Usage.PromptTokens)
	assert.Equal(t, 8, resp.Usage.CompletionTokens)
	assert.Equal(t, 20, resp.Usage.TotalTokens)
}

func TestAnthropicProvider_ParseStreamEvent(t *testing.T) {
	p := &AnthropicProvider{}

	tests := []struct {
		name     string
		payload  string
		wantNil  bool
		wantErr  bool
		wantText string
		wantDone bool
		wantStop string
	}{
		{
			name:     "text delta",
			payload:  `{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"Hi"}}`,
			wantText: "Hi",
		},
		{
			name:     "message delta with stop reason",
			payload:  `{"type":"message_delta","delta":{"stop_reason":"end_turn"},"usage":{"output_tokens":42}}`,
			wantDone: true,
			wantStop: "end_turn",
		},
		{
			name:     "message stop",
			payload:  `{"type":"message_stop"}`,
			wantDone: true,
		},
		{
			name:    "message start skipped",
			payload: `{"type":"message_start","message":{"id":"msg_123"}}`,
			wantNil: true,
		},
		{
			name:    "ping skipped",
			payload: `{"type":"ping"}`,
			wantNil: true,
		},
		{
			name:    "error event",
			payload: `{"type":"error","error":{"type":"overloaded_error","message":"Overloaded"}}`,
			wantErr: true,
		},
		{
			name:    "malformed JSON",
			payload: `{"type":`,
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
			assert.Equal(t, tt.wantStop, ev.FinishReason)
		})
	}
}
