package brochure

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"prospectus/llm"
	"prospectus/model"
	"prospectus/weburl"
)

// RankedLink is a link the selection model judged relevant for the brochure,
// tagged with a free-form category such as "about page". Order is preserved
// from the model's reply.
type RankedLink struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

// selectLinks asks the selection model which of the raw links belong in the
// brochure. All relevance judgment is the model's; this side only builds the
// prompt and parses the structured reply. An empty rawLinks list short
// circuits to no links.
func (b *Builder) selectLinks(ctx context.Context, baseURL string, rawLinks []string) ([]RankedLink, error) {
	if len(rawLinks) == 0 {
		return nil, nil
	}

	resp, err := b.llm.Complete(ctx, llm.Request{
		Capability: model.CapabilitySelection.String(),
		Messages: []llm.Message{
			{Role: "system", Content: linkSelectionSystemPrompt},
			{Role: "user", Content: linkSelectionUserPrompt(baseURL, rawLinks)},
		},
		JSONResponse: true,
	})
	if err != nil {
		return nil, fmt.Errorf("link selection: %w", err)
	}

	links, err := parseRankedLinks(resp.Content, baseURL)
	if err != nil {
		return nil, fmt.Errorf("link selection: %w", err)
	}

	b.logger.Debug("Links selected",
		"base_url", baseURL,
		"raw", len(rawLinks),
		"selected", len(links))

	return links, nil
}

// parseRankedLinks recovers the {"links": [...]} object from the model
// reply and normalizes each entry. Links come back possibly relative or
// schemeless; each is resolved against the base URL and dropped when it
// cannot be made into an absolute http(s) URL. A missing type falls back
// to "page".
func parseRankedLinks(content, baseURL string) ([]RankedLink, error) {
	var payload struct {
		Links []RankedLink `json:"links"`
	}

	if raw := llm.ExtractJSON(content); raw != "" {
		if err := json.Unmarshal([]byte(raw), &payload); err != nil {
			return nil, fmt.Errorf("malformed selection response: %w", err)
		}
	} else if raw := llm.ExtractJSONArray(content); raw != "" {
		// Some models answer with a bare array instead of the wrapper.
		if err := json.Unmarshal([]byte(raw), &payload.Links); err != nil {
			return nil, fmt.Errorf("malformed selection response: %w", err)
		}
	} else {
		return nil, fmt.Errorf("no JSON object in selection response")
	}

	links := make([]RankedLink, 0, len(payload.Links))
	for _, link := range payload.Links {
		if strings.TrimSpace(link.URL) == "" {
			continue
		}
		resolved, err := weburl.ResolveReference(baseURL, link.URL)
		if err != nil {
			continue
		}
		link.URL = resolved
		if strings.TrimSpace(link.Type) == "" {
			link.Type = "page"
		}
		links = append(links, link)
	}

	return links, nil
}
