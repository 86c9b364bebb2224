// Package providers implements LLM provider adapters. Each adapter is
// registered at init and looked up by the provider name in the endpoint
// configuration.
package providers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"prospectus/llm"
	"prospectus/model"
)

// AnthropicProvider implements the Anthropic messages API.
type AnthropicProvider struct{}

// anthropicVersion is the API version to use.
const anthropicVersion = "2023-06-01"

func init() {
	llm.RegisterProvider(&AnthropicProvider{})
}

// Name returns the provider identifier.
func (a *AnthropicProvider) Name() string {
	return "anthropic"
}

// BuildURL constructs the Anthropic messages endpoint.
func (a *AnthropicProvider) BuildURL(ep *model.EndpointConfig) string {
	baseURL := endpointURL(ep)
	if baseURL == "" {
		baseURL = "https://api.anthropic.com"
	}
	baseURL = strings.TrimSuffix(baseURL, "/")
	return baseURL + "/v1/messages"
}

// SetHeaders adds Anthropic-specific authentication headers.
func (a *AnthropicProvider) SetHeaders(req *http.Request, ep *model.EndpointConfig) {
	if key := apiKey(ep, "ANTHROPIC_API_KEY"); key != "" {
		req.Header.Set("x-api-key", key)
	}
	req.Header.Set("anthropic-version", anthropicVersion)
}

// anthropicRequest is the Anthropic API request format.
type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Messages    []anthropicMessage `json:"messages"`
	System      string             `json:"system,omitempty"`
	Temperature *float64           `json:"temperature,omitempty"`
	Stream      bool               `json:"stream,omitempty"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// BuildRequestBody creates the Anthropic API request body. Anthropic has no
// JSON response mode, so opts.JSONResponse relies on the system prompt
// carrying the formatting contract.
func (a *AnthropicProvider) BuildRequestBody(messages []llm.Message, modelID string, opts llm.BodyOptions) ([]byte, error) {
	// Anthropic takes the system prompt as a top-level field.
	var systemPrompt string
	var apiMessages []anthropicMessage

	for _, msg := range messages {
		if msg.Role == "system" {
			systemPrompt = msg.Content
		} else {
			apiMessages = append(apiMessages, anthropicMessage{
				Role:    msg.Role,
				Content: msg.Content,
			})
		}
	}

	// max_tokens is required by the API
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	req := anthropicRequest{
		Model:       modelID,
		MaxTokens:   maxTokens,
		Messages:    apiMessages,
		System:      systemPrompt,
		Temperature: opts.Temperature, // nil = use default, 0 = deterministic
		Stream:      opts.Stream,
	}

	return json.Marshal(req)
}

// anthropicResponse is the Anthropic API response format.
type anthropicResponse struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Role    string `json:"role"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Model        string `json:"model"`
	StopReason   string `json:"stop_reason"`
	StopSequence string `json:"stop_sequence,omitempty"`
	Usage        struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// ParseResponse extracts content from an Anthropic response.
func (a *AnthropicProvider) ParseResponse(body []byte) (*llm.Response, error) {
	var resp anthropicResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parse anthropic response: %w", err)
	}

	var content string
	for _, block := range resp.Content {
		if block.Type == "text" {
			content += block.Text
		}
	}

	return &llm.Response{
		Content: content,
		Model:   resp.Model,
		Usage: llm.TokenUsage{
			PromptTokens:     resp.Usage.InputTokens,
			CompletionTokens: resp.Usage.OutputTokens,
			TotalTokens:      resp.Usage.InputTokens + resp.Usage.OutputTokens,
		},
		FinishReason: resp.StopReason,
	}, nil
}

// anthropicStreamEvent is one SSE payload of a streaming message. The type
// field discriminates deltas from lifecycle events.
type anthropicStreamEvent struct {
	Type  string `json:"type"`
	Delta struct {
		Type       string `json:"type"`
		Text       string `json:"text"`
		StopReason string `json:"stop_reason"`
	} `json:"delta"`
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// ParseStreamEvent parses one Anthropic SSE payload. Text arrives in
// content_block_delta events; message_delta carries the stop reason.
func (a *AnthropicProvider) ParseStreamEvent(payload []byte) (*llm.StreamEvent, error) {
	var ev anthropicStreamEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		return nil, fmt.Errorf("parse anthropic stream event: %w", err)
	}

	switch ev.Type {
	case "content_block_delta":
		if ev.Delta.Type == "text_delta" && ev.Delta.Text != "" {
			return &llm.StreamEvent{Text: ev.Delta.Text}, nil
		}
		return nil, nil
	case "message_delta":
		if ev.Delta.StopReason != "" {
			return &llm.StreamEvent{Done: true, FinishReason: ev.Delta.StopReason}, nil
		}
		return nil, nil
	case "message_stop":
		return &llm.StreamEvent{Done: true}, nil
	case "error":
		return nil, fmt.Errorf("anthropic stream error (%s): %s", ev.Error.Type, ev.Error.Message)
	default:
		// message_start, content_block_start/stop, ping
		return nil, nil
	}
}
