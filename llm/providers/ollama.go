package providers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"

	"prospectus/llm"
	"prospectus/model"
)

// OllamaProvider implements the OpenAI-compatible API used by Ollama, vLLM
// and other local inference servers. It is also the shared wire format for
// the openai and gemini providers, which embed it.
type OllamaProvider struct{}

func init() {
	llm.RegisterProvider(&OllamaProvider{})
}

// Name returns the provider identifier.
func (o *OllamaProvider) Name() string {
	return "ollama"
}

// BuildURL constructs the chat completions endpoint.
func (o *OllamaProvider) BuildURL(ep *model.EndpointConfig) string {
	return buildChatURL(endpointURL(ep), "http://localhost:11434/v1")
}

// SetHeaders adds OpenAI-compatible headers. Local servers usually need no
// key, but one is sent when configured (vLLM behind a gateway, OpenRouter).
func (o *OllamaProvider) SetHeaders(req *http.Request, ep *model.EndpointConfig) {
	if key := apiKey(ep, "OPENAI_API_KEY"); key != "" {
		req.Header.Set("Authorization", "Bearer "+key)
	}
}

// openAIRequest is the OpenAI-compatible request format.
type openAIRequest struct {
	Model          string          `json:"model"`
	Messages       []openAIMessage `json:"messages"`
	Temperature    *float64        `json:"temperature,omitempty"`
	MaxTokens      *int            `json:"max_tokens,omitempty"`
	Stream         bool            `json:"stream,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

// BuildRequestBody creates the OpenAI-compatible request body.
func (o *OllamaProvider) BuildRequestBody(messages []llm.Message, modelID string, opts llm.BodyOptions) ([]byte, error) {
	apiMessages := make([]openAIMessage, len(messages))
	for i, msg := range messages {
		apiMessages[i] = openAIMessage{
			Role:    msg.Role,
			Content: msg.Content,
		}
	}

	req := openAIRequest{
		Model:       modelID,
		Messages:    apiMessages,
		Temperature: opts.Temperature, // nil = use default, 0 = deterministic
		Stream:      opts.Stream,
	}

	// Only set max_tokens if explicitly provided
	if opts.MaxTokens > 0 {
		maxTokens := opts.MaxTokens
		req.MaxTokens = &maxTokens
	}

	if opts.JSONResponse {
		req.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	return json.Marshal(req)
}

// openAIResponse is the OpenAI-compatible response format.
type openAIResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Created int64  `json:"created"`
	Model   string `json:"model"`
	Choices []struct {
		Index   int `json:"index"`
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// ParseResponse extracts content from an OpenAI-compatible response.
func (o *OllamaProvider) ParseResponse(body []byte) (*llm.Response, error) {
	var resp openAIResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parse openai response: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response")
	}

	return &llm.Response{
		Content: resp.Choices[0].Message.Content,
		Model:   resp.Model,
		Usage: llm.TokenUsage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
		FinishReason: resp.Choices[0].FinishReason,
	}, nil
}

// openAIStreamChunk is one SSE payload of a streaming completion.
type openAIStreamChunk struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Delta struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// ParseStreamEvent parses one OpenAI-compatible SSE payload. The terminal
// "[DONE]" sentinel maps to a Done event.
func (o *OllamaProvider) ParseStreamEvent(payload []byte) (*llm.StreamEvent, error) {
	if string(payload) == "[DONE]" {
		return &llm.StreamEvent{Done: true}, nil
	}

	var chunk openAIStreamChunk
	if err := json.Unmarshal(payload, &chunk); err != nil {
		return nil, fmt.Errorf("parse openai stream chunk: %w", err)
	}

	if len(chunk.Choices) == 0 {
		return nil, nil
	}

	choice := chunk.Choices[0]
	ev := &llm.StreamEvent{Text: choice.Delta.Content}
	if choice.FinishReason != "" {
		ev.Done = true
		ev.FinishReason = choice.FinishReason
	}

	// Role-only deltas carry nothing for the caller.
	if ev.Text == "" && !ev.Done {
		return nil, nil
	}
	return ev, nil
}

// endpointURL returns the configured base URL, or empty when the endpoint
// leaves it to the provider default.
func endpointURL(ep *model.EndpointConfig) string {
	if ep == nil {
		return ""
	}
	return ep.URL
}

// buildChatURL appends the chat completions path to a base URL unless it is
// already present.
func buildChatURL(baseURL, defaultBase string) string {
	if baseURL == "" {
		baseURL = defaultBase
	}
	baseURL = strings.TrimSuffix(baseURL, "/")

	if strings.HasSuffix(baseURL, "/chat/completions") {
		return baseURL
	}

	return baseURL + "/chat/completions"
}

// apiKey resolves the endpoint's API key. The endpoint config names the
// environment variable; providers supply their conventional fallback.
func apiKey(ep *model.EndpointConfig, fallbackEnv string) string {
	if ep != nil && ep.APIKeyEnv != "" {
		return os.Getenv(ep.APIKeyEnv)
	}
	return os.Getenv(fallbackEnv)
}
