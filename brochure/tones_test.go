package brochure

import (
	"strings"
	"testing"
)

func TestTonesCatalog(t *testing.T) {
	all := Tones()
	if len(all) != 5 {
		t.Fatalf("Tones() returned %d tones, want 5", len(all))
	}

	for _, tone := range all {
		if tone.Key == "" || tone.DisplayName == "" || tone.Description == "" {
			t.Errorf("tone %+v has empty fields", tone)
		}
		if tone.promptAddition == "" {
			t.Errorf("tone %q has no prompt addition", tone.Key)
		}
	}
}

func TestResolveTone(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"professional", "professional"},
		{"Friendly", "friendly"}, // display name, case-insensitive
		{"humorous", "humorous"},
		{"", "professional"},          // empty falls back
		{"sarcastic", "professional"}, // unknown falls back
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ResolveTone(tt.input); got.Key != tt.want {
				t.Errorf("ResolveTone(%q) = %q, want %q", tt.input, got.Key, tt.want)
			}
		})
	}
}

func TestToneShapesSystemPrompt(t *testing.T) {
	professional := brochureSystemPrompt(ResolveTone("professional"))
	technical := brochureSystemPrompt(ResolveTone("technical"))

	if professional == technical {
		t.Error("different tones produced the same system prompt")
	}
	for _, prompt := range []string{professional, technical} {
		if !strings.Contains(prompt, "markdown without code blocks") {
			t.Error("system prompt lost the base instructions")
		}
	}
	if !strings.Contains(technical, "technical stakeholders") {
		t.Error("technical tone addition missing from system prompt")
	}
}
