package llm

import (
	"net/http"
	"sync"

	"prospectus/model"
)

// BodyOptions carries per-request generation settings into BuildRequestBody.
type BodyOptions struct {
	// Temperature controls randomness. nil uses the provider default.
	Temperature *float64

	// MaxTokens limits response length. 0 uses the provider default.
	MaxTokens int

	// JSONResponse asks the endpoint for a JSON object response where the
	// wire format supports it (OpenAI response_format).
	JSONResponse bool

	// Stream requests token-by-token delivery over SSE.
	Stream bool
}

// Provider adapts one backend wire format. OpenAI-compatible backends
// (OpenAI, Gemini, Ollama) share most of their implementation; Anthropic
// speaks its own messages protocol.
type Provider interface {
	// Name returns the provider identifier used in endpoint configs.
	Name() string

	// BuildURL returns the full completions URL for an endpoint.
	// An empty endpoint URL selects the provider's default host.
	BuildURL(ep *model.EndpointConfig) string

	// SetHeaders sets authentication and protocol headers. The API key is
	// read from the environment variable named by the endpoint config.
	SetHeaders(req *http.Request, ep *model.EndpointConfig)

	// BuildRequestBody marshals the provider-specific request payload.
	BuildRequestBody(messages []Message, modelID string, opts BodyOptions) ([]byte, error)

	// ParseResponse parses a complete (non-streaming) response body.
	ParseResponse(body []byte) (*Response, error)

	// ParseStreamEvent parses a single SSE data payload. A nil event with
	// a nil error means the payload carries nothing for the caller
	// (pings, role-only deltas, metadata events).
	ParseStreamEvent(payload []byte) (*StreamEvent, error)
}

var (
	providersMu sync.RWMutex
	providers   = make(map[string]Provider)
)

// RegisterProvider registers a provider implementation under its Name().
// Provider packages call this from init().
func RegisterProvider(p Provider) {
	providersMu.Lock()
	defer providersMu.Unlock()
	providers[p.Name()] = p
}

// GetProvider returns a registered provider or nil if not found.
func GetProvider(name string) Provider {
	providersMu.RLock()
	defer providersMu.RUnlock()
	return providers[name]
}

// ListProviders returns the names of all registered providers.
func ListProviders() []string {
	providersMu.RLock()
	defer providersMu.RUnlock()

	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	return names
}
