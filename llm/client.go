// Package llm provides a provider-agnostic LLM client with retry, fallback
// and streaming support. Model selection goes through the model.Registry,
// either by capability or by an explicit model key.
package llm

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"prospectus/model"
)

// maxResponseSize limits the LLM response body to prevent memory exhaustion.
const maxResponseSize = 10 * 1024 * 1024 // 10MB

// maxStreamLineSize limits a single SSE line. Delta payloads are small;
// anything past this indicates a misbehaving server.
const maxStreamLineSize = 1024 * 1024

// Client is a provider-agnostic LLM client with retry and fallback support.
// The HTTP client timeout bounds each exchange end to end, including the
// body of a streaming response.
type Client struct {
	registry    *model.Registry
	httpClient  *http.Client
	retryConfig RetryConfig
	logger      *slog.Logger
}

// Message represents a chat message.
type Message struct {
	Role    string `json:"role"`    // "system", "user", or "assistant"
	Content string `json:"content"` // Message content
}

// Request defines an LLM completion request.
type Request struct {
	// Capability selects models by role ("selection", "generation").
	// The registry resolves it to a fallback chain of endpoints.
	Capability string

	// Model pins the request to a single registry endpoint and bypasses
	// capability resolution. Used when the caller picked a model
	// explicitly. Takes precedence over Capability.
	Model string

	// Messages is the chat history to send.
	Messages []Message

	// Temperature controls randomness. nil uses the endpoint default.
	Temperature *float64

	// MaxTokens limits response length. 0 uses the endpoint default.
	MaxTokens int

	// JSONResponse requests a JSON object response where the wire format
	// supports it.
	JSONResponse bool
}

// TokenUsage represents token consumption details for an LLM call.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response contains the LLM completion result.
type Response struct {
	// RequestID uniquely identifies this call for log correlation.
	RequestID string

	// Content is the generated text.
	Content string

	// Model is the registry key of the endpoint that served the request.
	Model string

	// Usage contains token consumption metrics when the API reports them.
	Usage TokenUsage

	// FinishReason indicates why generation stopped.
	FinishReason string
}

// StreamEvent is one unit of a streaming completion. Text events carry a
// content delta. The final event has Done or Err set; the channel closes
// after it.
type StreamEvent struct {
	Text         string
	Done         bool
	FinishReason string
	Err          error
}

// Stream is a live streaming completion.
type Stream struct {
	// RequestID uniquely identifies this call for log correlation.
	RequestID string

	// Model is the registry key of the endpoint serving the stream.
	Model string

	// Events delivers content deltas in order. Closed after the final
	// Done or Err event.
	Events <-chan StreamEvent
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(client *Client) {
		client.httpClient = c
	}
}

// WithRetryConfig sets the retry configuration.
func WithRetryConfig(cfg RetryConfig) ClientOption {
	return func(client *Client) {
		client.retryConfig = cfg
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(client *Client) {
		client.logger = logger
	}
}

// NewClient creates a new LLM client with the given model registry.
func NewClient(registry *model.Registry, opts ...ClientOption) *Client {
	c := &Client{
		registry:    registry,
		retryConfig: DefaultRetryConfig(),
		httpClient: &http.Client{
			Timeout: 180 * time.Second, // Allow time for LLM responses
		},
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Complete sends a completion request, handling retry and fallback logic.
func (c *Client) Complete(ctx context.Context, req Request) (*Response, error) {
	if len(req.Messages) == 0 {
		return nil, fmt.Errorf("at least one message is required")
	}

	chain, err := c.resolveChain(req)
	if err != nil {
		return nil, err
	}

	requestID := uuid.New().String()

	var lastErr error
	for _, modelName := range chain {
		endpoint := c.registry.GetEndpoint(modelName)
		if endpoint == nil {
			c.logger.Debug("No endpoint for model, skipping", "model", modelName)
			continue
		}

		// Circuit breaker only gates capability resolution. An explicitly
		// pinned model has no alternative, so it is always attempted.
		if req.Model == "" && !c.registry.IsEndpointAvailable(modelName) {
			c.logger.Debug("Endpoint circuit open, skipping", "model", modelName)
			continue
		}

		resp, err := c.tryEndpointWithRetry(ctx, endpoint, modelName, req)
		if err == nil {
			resp.RequestID = requestID
			resp.Model = modelName
			return resp, nil
		}

		lastErr = err
		c.logger.Warn("Endpoint failed, trying fallback",
			"model", modelName,
			"provider", endpoint.Provider,
			"error", err)

		if IsFatal(err) {
			return nil, err
		}
	}

	if lastErr == nil {
		return nil, fmt.Errorf("no usable endpoint for %s", requestLabel(req))
	}
	return nil, fmt.Errorf("all endpoints failed for %s: %w", requestLabel(req), lastErr)
}

// CompleteStream opens a streaming completion. Retries and fallback apply
// only while connecting; once the first event arrives the stream is
// committed and a later failure is delivered as a final StreamEvent with
// Err set.
func (c *Client) CompleteStream(ctx context.Context, req Request) (*Stream, error) {
	if len(req.Messages) == 0 {
		return nil, fmt.Errorf("at least one message is required")
	}

	chain, err := c.resolveChain(req)
	if err != nil {
		return nil, err
	}

	requestID := uuid.New().String()

	var lastErr error
	for _, modelName := range chain {
		endpoint := c.registry.GetEndpoint(modelName)
		if endpoint == nil {
			c.logger.Debug("No endpoint for model, skipping", "model", modelName)
			continue
		}

		if req.Model == "" && !c.registry.IsEndpointAvailable(modelName) {
			c.logger.Debug("Endpoint circuit open, skipping", "model", modelName)
			continue
		}

		if !endpoint.SupportsStreaming {
			c.logger.Debug("Endpoint does not stream, skipping", "model", modelName)
			lastErr = fmt.Errorf("endpoint %s does not support streaming", modelName)
			continue
		}

		provider := GetProvider(endpoint.Provider)
		if provider == nil {
			return nil, NewFatalError(fmt.Errorf("unknown provider: %s", endpoint.Provider))
		}

		body, err := c.openStream(ctx, provider, endpoint, modelName, req)
		if err != nil {
			lastErr = err
			c.logger.Warn("Stream open failed, trying fallback",
				"model", modelName,
				"provider", endpoint.Provider,
				"error", err)

			if IsFatal(err) {
				return nil, err
			}
			continue
		}

		events := make(chan StreamEvent)
		go c.readStream(ctx, provider, body, modelName, events)

		return &Stream{
			RequestID: requestID,
			Model:     modelName,
			Events:    events,
		}, nil
	}

	if lastErr == nil {
		return nil, fmt.Errorf("no usable endpoint for %s", requestLabel(req))
	}
	return nil, fmt.Errorf("all endpoints failed for %s: %w", requestLabel(req), lastErr)
}

// resolveChain returns the ordered model keys to attempt for a request.
func (c *Client) resolveChain(req Request) ([]string, error) {
	if req.Model != "" {
		return []string{req.Model}, nil
	}
	if req.Capability == "" {
		return nil, fmt.Errorf("model or capability is required")
	}

	capVal := model.ParseCapability(req.Capability)
	if capVal == "" {
		capVal = model.CapabilityGeneration
	}

	chain := c.registry.GetAvailableFallbackChain(capVal)
	if len(chain) == 0 {
		return nil, fmt.Errorf("no models configured for capability %s", req.Capability)
	}
	return chain, nil
}

func requestLabel(req Request) string {
	if req.Model != "" {
		return "model " + req.Model
	}
	return "capability " + req.Capability
}

// tryEndpointWithRetry attempts a request with retry logic.
func (c *Client) tryEndpointWithRetry(ctx context.Context, ep *model.EndpointConfig, modelName string, req Request) (*Response, error) {
	var lastErr error

	for attempt := 1; attempt <= c.retryConfig.MaxAttempts; attempt++ {
		resp, err := c.doRequest(ctx, ep, req)
		if err == nil {
			c.registry.MarkEndpointSuccess(modelName)
			return resp, nil
		}

		lastErr = err

		// Fatal errors indicate config or auth issues, not endpoint
		// health, so the endpoint is not marked unhealthy.
		if IsFatal(err) {
			return nil, err
		}

		if attempt < c.retryConfig.MaxAttempts {
			backoff := c.retryConfig.backoff(attempt)
			c.logger.Debug("Request failed, retrying",
				"attempt", attempt,
				"max_attempts", c.retryConfig.MaxAttempts,
				"backoff", backoff,
				"error", err)

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}
	}

	c.registry.MarkEndpointFailure(modelName)

	return nil, lastErr
}

// openStream attempts to open a streaming response with retry logic.
// Returns the response body once the server has accepted the request.
func (c *Client) openStream(ctx context.Context, provider Provider, ep *model.EndpointConfig, modelName string, req Request) (io.ReadCloser, error) {
	var lastErr error

	for attempt := 1; attempt <= c.retryConfig.MaxAttempts; attempt++ {
		body, err := c.doStreamRequest(ctx, provider, ep, req)
		if err == nil {
			return body, nil
		}

		lastErr = err

		if IsFatal(err) {
			return nil, err
		}

		if attempt < c.retryConfig.MaxAttempts {
			backoff := c.retryConfig.backoff(attempt)
			c.logger.Debug("Stream open failed, retrying",
				"attempt", attempt,
				"max_attempts", c.retryConfig.MaxAttempts,
				"backoff", backoff,
				"error", err)

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}
	}

	c.registry.MarkEndpointFailure(modelName)

	return nil, lastErr
}

// doRequest executes a single HTTP request to the LLM endpoint.
func (c *Client) doRequest(ctx context.Context, ep *model.EndpointConfig, req Request) (*Response, error) {
	provider := GetProvider(ep.Provider)
	if provider == nil {
		return nil, NewFatalError(fmt.Errorf("unknown provider: %s", ep.Provider))
	}

	body, err := provider.BuildRequestBody(req.Messages, ep.Model, BodyOptions{
		Temperature:  req.Temperature,
		MaxTokens:    req.MaxTokens,
		JSONResponse: req.JSONResponse,
	})
	if err != nil {
		return nil, NewFatalError(fmt.Errorf("build request body: %w", err))
	}

	url := provider.BuildURL(ep)

	c.logger.Debug("Sending LLM request",
		"provider", ep.Provider,
		"model", ep.Model,
		"url", url,
		"messages", len(req.Messages))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, NewFatalError(fmt.Errorf("create HTTP request: %w", err))
	}

	httpReq.Header.Set("Content-Type", "application/json")
	provider.SetHeaders(httpReq, ep)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		// Network errors are transient
		return nil, NewTransientError(fmt.Errorf("HTTP request failed: %w", err))
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseSize))
	if err != nil {
		return nil, NewTransientError(fmt.Errorf("read response body: %w", err))
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, classifyHTTPError(httpResp.StatusCode, respBody)
	}

	return provider.ParseResponse(respBody)
}

// doStreamRequest opens a single streaming HTTP request and returns the
// body for SSE consumption. Non-200 responses are drained and classified.
func (c *Client) doStreamRequest(ctx context.Context, provider Provider, ep *model.EndpointConfig, req Request) (io.ReadCloser, error) {
	body, err := provider.BuildRequestBody(req.Messages, ep.Model, BodyOptions{
		Temperature:  req.Temperature,
		MaxTokens:    req.MaxTokens,
		JSONResponse: req.JSONResponse,
		Stream:       true,
	})
	if err != nil {
		return nil, NewFatalError(fmt.Errorf("build request body: %w", err))
	}

	url := provider.BuildURL(ep)

	c.logger.Debug("Opening LLM stream",
		"provider", ep.Provider,
		"model", ep.Model,
		"url", url,
		"messages", len(req.Messages))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, NewFatalError(fmt.Errorf("create HTTP request: %w", err))
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")
	provider.SetHeaders(httpReq, ep)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, NewTransientError(fmt.Errorf("HTTP request failed: %w", err))
	}

	if httpResp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseSize))
		httpResp.Body.Close()
		return nil, classifyHTTPError(httpResp.StatusCode, respBody)
	}

	return httpResp.Body, nil
}

// readStream consumes SSE lines from the response body and forwards parsed
// events. It owns the body and the events channel.
func (c *Client) readStream(ctx context.Context, provider Provider, body io.ReadCloser, modelName string, events chan<- StreamEvent) {
	defer close(events)
	defer body.Close()

	emit := func(ev StreamEvent) bool {
		select {
		case events <- ev:
			return true
		case <-ctx.Done():
			return false
		}
	}

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), maxStreamLineSize)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			// Blank keep-alives, comments and event: lines carry no
			// payload we need.
			continue
		}

		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "" {
			continue
		}

		ev, err := provider.ParseStreamEvent([]byte(payload))
		if err != nil {
			c.registry.MarkEndpointFailure(modelName)
			emit(StreamEvent{Err: NewTransientError(fmt.Errorf("parse stream event: %w", err))})
			return
		}
		if ev == nil {
			continue
		}

		if ev.Done {
			c.registry.MarkEndpointSuccess(modelName)
			emit(*ev)
			return
		}

		if !emit(*ev) {
			return
		}
	}

	if err := scanner.Err(); err != nil {
		c.registry.MarkEndpointFailure(modelName)
		emit(StreamEvent{Err: NewTransientError(fmt.Errorf("read stream: %w", err))})
		return
	}

	// Some servers close the connection without a terminal event.
	c.registry.MarkEndpointSuccess(modelName)
	emit(StreamEvent{Done: true})
}
