package scrape

import (
	"strings"
	"testing"
)

func TestExtractTitle(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		expected string
	}{
		{
			name:     "simple title",
			html:     "<html><head><title>Acme Corp</title></head><body><p>hi</p></body></html>",
			expected: "Acme Corp",
		},
		{
			name:     "title with whitespace",
			html:     "<html><head><title>  Spaced Title  </title></head><body></body></html>",
			expected: "Spaced Title",
		},
		{
			name:     "missing title",
			html:     "<html><head></head><body><p>Content</p></body></html>",
			expected: "No title found",
		},
	}

	extractor := NewExtractor(ModeText, 0, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := extractor.Extract("https://example.com", []byte(tt.html))
			if err != nil {
				t.Fatalf("Extract() error = %v", err)
			}
			if page.Title != tt.expected {
				t.Errorf("Title = %q, want %q", page.Title, tt.expected)
			}
		})
	}
}

func TestExtractContent(t *testing.T) {
	html := `<html><head><title>Acme Corp</title></head><body>
<script>var x = "invisible";</script>
<style>.hidden { display: none }</style>
<p>We make anvils.</p>
<input type="text" value="ignored">
<img src="logo.png" alt="ignored alt">
<p>Since 1949.</p>
</body></html>`

	extractor := NewExtractor(ModeText, 0, nil)
	page, err := extractor.Extract("https://example.com", []byte(html))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if !strings.HasPrefix(page.Content, "Acme Corp\n\n") {
		t.Errorf("Content should start with title and blank line, got %q", page.Content)
	}
	if !strings.Contains(page.Content, "We make anvils.") {
		t.Error("Content should contain visible paragraph text")
	}
	if !strings.Contains(page.Content, "Since 1949.") {
		t.Error("Content should contain second paragraph")
	}
	if strings.Contains(page.Content, "invisible") {
		t.Error("Content should not contain script text")
	}
	if strings.Contains(page.Content, "display: none") {
		t.Error("Content should not contain style text")
	}
}

func TestExtractContentNewlineSeparated(t *testing.T) {
	html := `<html><head><title>T</title></head><body><div>one</div><div>two</div></body></html>`

	extractor := NewExtractor(ModeText, 0, nil)
	page, err := extractor.Extract("https://example.com", []byte(html))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if page.Content != "T\n\none\ntwo" {
		t.Errorf("Content = %q, want %q", page.Content, "T\n\none\ntwo")
	}
}

func TestExtractLinks(t *testing.T) {
	html := `<html><head><title>T</title></head><body>
<a href="/about">About</a>
<a href="https://other.example.org/careers">Careers</a>
<a href="/about">About again</a>
<a href="mailto:hi@example.com">Mail</a>
<a href="javascript:void(0)">JS</a>
<a href="#section">Anchor</a>
<a href="">Empty</a>
<a>No href</a>
</body></html>`

	extractor := NewExtractor(ModeText, 0, nil)
	page, err := extractor.Extract("https://example.com/home", []byte(html))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	want := []string{
		"https://example.com/about",
		"https://other.example.org/careers",
	}
	if len(page.Links) != len(want) {
		t.Fatalf("Links = %v, want %v", page.Links, want)
	}
	for i, link := range want {
		if page.Links[i] != link {
			t.Errorf("Links[%d] = %q, want %q", i, page.Links[i], link)
		}
	}
}

func TestExtractLinksExcludeGlobs(t *testing.T) {
	html := `<html><body>
<a href="/about">About</a>
<a href="/privacy-policy">Privacy</a>
<a href="/legal/terms">Terms</a>
</body></html>`

	extractor := NewExtractor(ModeText, 0, []string{"**/privacy*", "**/legal/**"})
	page, err := extractor.Extract("https://example.com", []byte(html))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if len(page.Links) != 1 || page.Links[0] != "https://example.com/about" {
		t.Errorf("Links = %v, want only the about link", page.Links)
	}
}

func TestExtractLinksInsideStrippedElements(t *testing.T) {
	html := `<html><body>
<script><!-- <a href="/ghost">x</a> --></script>
<a href="/real">Real</a>
</body></html>`

	extractor := NewExtractor(ModeText, 0, nil)
	page, err := extractor.Extract("https://example.com", []byte(html))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if len(page.Links) != 1 || page.Links[0] != "https://example.com/real" {
		t.Errorf("Links = %v, want only the real link", page.Links)
	}
}

func TestExtractTruncation(t *testing.T) {
	body := strings.Repeat("wordy ", 100)
	html := "<html><head><title>T</title></head><body><p>" + body + "</p></body></html>"

	extractor := NewExtractor(ModeText, 50, nil)
	page, err := extractor.Extract("https://example.com", []byte(html))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if got := len([]rune(page.Content)); got != 50 {
		t.Errorf("content length = %d runes, want 50", got)
	}
}

func TestExtractTruncationMultibyte(t *testing.T) {
	html := "<html><head><title>店</title></head><body><p>" + strings.Repeat("寿司", 30) + "</p></body></html>"

	extractor := NewExtractor(ModeText, 10, nil)
	page, err := extractor.Extract("https://example.com", []byte(html))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	runes := []rune(page.Content)
	if len(runes) != 10 {
		t.Errorf("content length = %d runes, want 10", len(runes))
	}
	if !strings.HasPrefix(page.Content, "店\n\n") {
		t.Errorf("Content = %q, should keep whole runes", page.Content)
	}
}

func TestExtractMarkdownMode(t *testing.T) {
	html := `<html><head><title>Acme Corp</title></head><body>
<h1>Products</h1>
<ul><li>Anvils</li><li>Rockets</li></ul>
<script>var hidden = 1;</script>
</body></html>`

	extractor := NewExtractor(ModeMarkdown, 0, nil)
	page, err := extractor.Extract("https://example.com", []byte(html))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if !strings.Contains(page.Content, "# Products") {
		t.Errorf("Content should contain a markdown heading, got %q", page.Content)
	}
	if !strings.Contains(page.Content, "Anvils") {
		t.Error("Content should contain list items")
	}
	if strings.Contains(page.Content, "hidden") {
		t.Error("Content should not contain script text")
	}
}

func TestExtractReadabilityMode(t *testing.T) {
	html := `<html><head><title>Acme Corp</title></head><body>
<article>
<h1>Our Story</h1>
<p>Acme Corporation has been manufacturing quality anvils for discerning
coyotes since 1949. Our products are trusted across the desert southwest
for their reliability and satisfying weight.</p>
<p>Today the company employs over two hundred people across three sites
and ships to customers on every continent.</p>
</article>
</body></html>`

	extractor := NewExtractor(ModeReadability, 0, nil)
	page, err := extractor.Extract("https://example.com/story", []byte(html))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if !strings.HasPrefix(page.Content, "Acme Corp\n\n") {
		t.Errorf("Content should start with the title, got %q", page.Content)
	}
	if !strings.Contains(page.Content, "since 1949") {
		t.Error("Content should contain article text")
	}
}

func TestExtractUnknownModeFallsBackToText(t *testing.T) {
	html := "<html><head><title>T</title></head><body><p>plain</p></body></html>"

	extractor := NewExtractor("fancy", 0, nil)
	page, err := extractor.Extract("https://example.com", []byte(html))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if page.Content != "T\n\nplain" {
		t.Errorf("Content = %q, want %q", page.Content, "T\n\nplain")
	}
}

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		max      int
		expected string
	}{
		{name: "under limit", input: "short", max: 10, expected: "short"},
		{name: "at limit", input: "exact", max: 5, expected: "exact"},
		{name: "over limit", input: "toolong", max: 4, expected: "tool"},
		{name: "no limit", input: "anything", max: 0, expected: "anything"},
		{name: "multibyte", input: "寿司が好き", max: 2, expected: "寿司"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := truncateRunes(tt.input, tt.max); got != tt.expected {
				t.Errorf("truncateRunes(%q, %d) = %q, want %q", tt.input, tt.max, got, tt.expected)
			}
		})
	}
}
