package providers

import (
	"net/http"
	"os"

	"prospectus/llm"
	"prospectus/model"
)

// OpenAIProvider implements the OpenAI API for direct OpenAI or OpenRouter
// usage. Separate from OllamaProvider so each can have its own default URL
// and auth, while sharing the wire format.
type OpenAIProvider struct {
	OllamaProvider // Embed for shared request/response format
}

func init() {
	llm.RegisterProvider(&OpenAIProvider{})
}

// Name returns the provider identifier.
func (o *OpenAIProvider) Name() string {
	return "openai"
}

// BuildURL constructs the OpenAI API endpoint.
func (o *OpenAIProvider) BuildURL(ep *model.EndpointConfig) string {
	return buildChatURL(endpointURL(ep), "https://api.openai.com/v1")
}

// SetHeaders adds OpenAI authentication headers.
func (o *OpenAIProvider) SetHeaders(req *http.Request, ep *model.EndpointConfig) {
	if key := apiKey(ep, "OPENAI_API_KEY"); key != "" {
		req.Header.Set("Authorization", "Bearer "+key)
	}

	// Support OpenRouter
	if siteURL := os.Getenv("OPENROUTER_SITE_URL"); siteURL != "" {
		req.Header.Set("HTTP-Referer", siteURL)
	}
	if siteName := os.Getenv("OPENROUTER_SITE_NAME"); siteName != "" {
		req.Header.Set("X-Title", siteName)
	}
}
