package scrape

import (
	"bytes"
	"net/url"
	"regexp"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"github.com/bmatcuk/doublestar/v4"
	readability "github.com/go-shiori/go-readability"
	"golang.org/x/net/html"

	"prospectus/weburl"
)

// Content rendering modes.
const (
	ModeText        = "text"
	ModeMarkdown    = "markdown"
	ModeReadability = "readability"
)

// noTitle is the placeholder when a page has no title element.
const noTitle = "No title found"

// excessiveLinesRe collapses runs of blank lines left by markdown conversion.
var excessiveLinesRe = regexp.MustCompile(`\n{4,}`)

// Page is the extracted view of a single web page.
type Page struct {
	URL       string
	Title     string
	Content   string
	Links     []string
	FetchedAt time.Time
}

// Extractor parses fetched HTML into text content and outbound links.
type Extractor struct {
	mode         string
	maxContent   int
	excludeGlobs []string
	converter    *md.Converter
}

// NewExtractor creates an extractor. Mode selects how content is rendered
// (ModeText, ModeMarkdown, ModeReadability; anything else behaves as text).
// maxContent caps the content length in runes, with zero or negative meaning
// no cap. excludeGlobs drops collected links whose absolute URL matches any
// of the patterns.
func NewExtractor(mode string, maxContent int, excludeGlobs []string) *Extractor {
	e := &Extractor{
		mode:         mode,
		maxContent:   maxContent,
		excludeGlobs: excludeGlobs,
	}

	if mode == ModeMarkdown {
		converter := md.NewConverter("", true, nil)
		converter.Use(plugin.GitHubFlavored())
		e.converter = converter
	}

	return e
}

// Extract parses body into a Page. The title falls back to "No title found"
// when the document has none. Content is the title followed by the rendered
// body with script, style, img, and input elements removed, truncated to the
// configured cap. Links are always collected from the whole document after
// stripping, resolved against pageURL, deduplicated in document order, and
// filtered through the exclusion globs. FetchedAt is left for the caller.
func (e *Extractor) Extract(pageURL string, body []byte) (*Page, error) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, &ParseError{URL: pageURL, Err: err}
	}

	title := extractTitle(doc)
	if title == "" {
		title = noTitle
	}

	bodyNode := findElement(doc, "body")
	if bodyNode != nil {
		removeElements(bodyNode, []string{"script", "style", "img", "input"})
	}

	links := e.collectLinks(doc, pageURL)

	text := e.renderContent(doc, bodyNode, pageURL, body)
	content := truncateRunes(title+"\n\n"+text, e.maxContent)

	return &Page{
		URL:     pageURL,
		Title:   title,
		Content: content,
		Links:   links,
	}, nil
}

// renderContent produces the textual body per the configured mode. Markdown
// and readability failures fall back to plain visible text rather than
// erroring, so a page never fails extraction over rendering trouble.
func (e *Extractor) renderContent(doc, bodyNode *html.Node, pageURL string, raw []byte) string {
	switch e.mode {
	case ModeMarkdown:
		node := bodyNode
		if node == nil {
			node = doc
		}
		if e.converter != nil {
			if markdown, err := e.converter.ConvertString(renderNode(node)); err == nil {
				return cleanMarkdown(markdown)
			}
		}
		return visibleText(bodyNode)

	case ModeReadability:
		// Readability works on the original document, before stripping.
		if parsed, err := url.Parse(pageURL); err == nil {
			if article, err := readability.FromReader(bytes.NewReader(raw), parsed); err == nil {
				if text := strings.TrimSpace(article.TextContent); text != "" {
					return text
				}
			}
		}
		return visibleText(bodyNode)

	default:
		return visibleText(bodyNode)
	}
}

// collectLinks gathers every anchor href in the document, resolves it to an
// absolute URL, and drops duplicates and excluded targets.
func (e *Extractor) collectLinks(doc *html.Node, pageURL string) []string {
	var links []string
	seen := make(map[string]bool)

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			if href := attrValue(n, "href"); href != "" {
				resolved, err := weburl.ResolveReference(pageURL, href)
				if err == nil && !seen[resolved] && !e.excluded(resolved) {
					seen[resolved] = true
					links = append(links, resolved)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return links
}

// excluded reports whether url matches any exclusion glob.
func (e *Extractor) excluded(url string) bool {
	for _, pattern := range e.excludeGlobs {
		if ok, err := doublestar.Match(pattern, url); err == nil && ok {
			return true
		}
	}
	return false
}

// extractTitle returns the text of the first title element.
func extractTitle(doc *html.Node) string {
	var title string
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "title" && n.FirstChild != nil {
			title = strings.TrimSpace(n.FirstChild.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if title != "" {
				return
			}
			extract(c)
		}
	}
	extract(doc)

	return title
}

// visibleText walks the text nodes under n, trimming each and joining the
// non-empty pieces with newlines.
func visibleText(n *html.Node) string {
	if n == nil {
		return ""
	}

	var parts []string
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			if t := strings.TrimSpace(node.Data); t != "" {
				parts = append(parts, t)
			}
			return
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)

	return strings.Join(parts, "\n")
}

// findElement returns the first element with the given tag name.
func findElement(n *html.Node, tag string) *html.Node {
	var result *html.Node
	var find func(*html.Node)
	find = func(node *html.Node) {
		if result != nil {
			return
		}
		if node.Type == html.ElementNode && node.Data == tag {
			result = node
			return
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			find(c)
		}
	}
	find(n)

	return result
}

// removeElements removes all elements with the given tag names from the
// subtree rooted at n.
func removeElements(n *html.Node, tags []string) {
	tagSet := make(map[string]bool)
	for _, tag := range tags {
		tagSet[tag] = true
	}

	var toRemove []*html.Node
	var collect func(*html.Node)
	collect = func(node *html.Node) {
		if node.Type == html.ElementNode && tagSet[node.Data] {
			toRemove = append(toRemove, node)
			return
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)

	for _, node := range toRemove {
		if node.Parent != nil {
			node.Parent.RemoveChild(node)
		}
	}
}

// attrValue returns the value of the named attribute, or "".
func attrValue(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// renderNode renders a node and its children back to an HTML string.
func renderNode(n *html.Node) string {
	var sb strings.Builder
	_ = html.Render(&sb, n)
	return sb.String()
}

// cleanMarkdown tidies converted markdown output.
func cleanMarkdown(content string) string {
	content = excessiveLinesRe.ReplaceAllString(content, "\n\n\n")

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	content = strings.Join(lines, "\n")

	return strings.TrimSpace(content)
}

// truncateRunes cuts s to at most max runes.
func truncateRunes(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
