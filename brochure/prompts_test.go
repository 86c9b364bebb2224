package brochure

import (
	"strings"
	"testing"
)

func TestLinkSelectionUserPrompt(t *testing.T) {
	links := []string{"/about", "https://acme.example/careers", "mailto:hi@acme.example"}
	prompt := linkSelectionUserPrompt("https://acme.example", links)

	if !strings.Contains(prompt, "https://acme.example -") {
		t.Error("prompt should name the website")
	}
	for _, link := range links {
		if !strings.Contains(prompt, link) {
			t.Errorf("prompt should list link %q", link)
		}
	}
	if !strings.Contains(prompt, "Do not include Terms of Service, Privacy, email links.") {
		t.Error("prompt should carry the exclusion instructions")
	}
}

func TestBrochureUserPrompt(t *testing.T) {
	prompt := brochureUserPrompt("Acme Corp", "## Landing Page:\n\nWe make anvils.", "")

	if !strings.Contains(prompt, "a company called: Acme Corp") {
		t.Error("prompt should name the company")
	}
	if !strings.Contains(prompt, "We make anvils.") {
		t.Error("prompt should carry the aggregated content")
	}
	if strings.Contains(prompt, "Additional instructions") {
		t.Error("prompt should omit the instructions block when none are given")
	}
}

func TestBrochureUserPromptCustomInstructions(t *testing.T) {
	prompt := brochureUserPrompt("Acme Corp", "content", "Mention the rocket skates.")

	if !strings.Contains(prompt, "Additional instructions: Mention the rocket skates.") {
		t.Error("prompt should carry the custom instructions")
	}

	// Instructions come before the page content.
	instrAt := strings.Index(prompt, "Additional instructions")
	contentAt := strings.Index(prompt, "content")
	if instrAt == -1 || contentAt == -1 || instrAt > contentAt {
		t.Error("custom instructions should precede the aggregated content")
	}
}
