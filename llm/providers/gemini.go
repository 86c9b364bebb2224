package providers

import (
	"net/http"

	"prospectus/llm"
	"prospectus/model"
)

// geminiBaseURL is Google's OpenAI-compatible endpoint for Gemini models.
const geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai"

// GeminiProvider implements the Gemini API through Google's
// OpenAI-compatible endpoint, so it shares the openai wire format and only
// differs in host and credentials.
type GeminiProvider struct {
	OpenAIProvider
}

func init() {
	llm.RegisterProvider(&GeminiProvider{})
}

// Name returns the provider identifier.
func (g *GeminiProvider) Name() string {
	return "gemini"
}

// BuildURL constructs the Gemini chat completions endpoint.
func (g *GeminiProvider) BuildURL(ep *model.EndpointConfig) string {
	return buildChatURL(endpointURL(ep), geminiBaseURL)
}

// SetHeaders adds Google authentication headers.
func (g *GeminiProvider) SetHeaders(req *http.Request, ep *model.EndpointConfig) {
	if key := apiKey(ep, "GOOGLE_API_KEY"); key != "" {
		req.Header.Set("Authorization", "Bearer "+key)
	}
}
