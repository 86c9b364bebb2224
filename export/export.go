// Package export writes finished brochures to disk, either as a standalone
// HTML document with embedded styling or as the raw markdown text.
package export

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
)

// Format specifies the output file format.
type Format string

const (
	// FormatHTML produces a standalone HTML document (.html).
	FormatHTML Format = "html"

	// FormatMarkdown produces the raw brochure markdown (.md).
	FormatMarkdown Format = "markdown"
)

// DefaultOutputDir is where exports land when no directory is configured.
const DefaultOutputDir = "exports"

// markdownRenderer converts brochure markdown to HTML. GFM covers the
// tables and strikethrough that generation models like to emit; heading IDs
// make sections linkable. Safe for concurrent use.
var markdownRenderer = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithParserOptions(parser.WithAutoHeadingID()),
)

// Exporter writes brochures into an output directory, creating it on
// demand. Filenames are derived from the company name and a timestamp, so
// repeated exports never clobber each other.
type Exporter struct {
	outputDir string

	now func() time.Time
}

// NewExporter returns an exporter rooted at outputDir, or DefaultOutputDir
// when empty.
func NewExporter(outputDir string) *Exporter {
	if outputDir == "" {
		outputDir = DefaultOutputDir
	}
	return &Exporter{
		outputDir: outputDir,
		now:       time.Now,
	}
}

// Export writes the brochure in the given format and returns the path of
// the written file.
func (e *Exporter) Export(markdown, companyName string, format Format) (string, error) {
	switch format {
	case FormatHTML:
		return e.HTML(markdown, companyName)
	case FormatMarkdown:
		return e.Markdown(markdown, companyName)
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

// HTML renders the brochure markdown and wraps it in a complete HTML
// document: embedded stylesheet, header with the company name, footer with
// the generation date. Returns the path of the written file.
func (e *Exporter) HTML(markdown, companyName string) (string, error) {
	now := e.now()

	var body bytes.Buffer
	if err := markdownRenderer.Convert([]byte(markdown), &body); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}

	var doc bytes.Buffer
	err := htmlDocument.Execute(&doc, documentData{
		CompanyName: companyName,
		Body:        template.HTML(body.String()),
		Generated:   now.Format("02 January, 2006"),
	})
	if err != nil {
		return "", fmt.Errorf("render document: %w", err)
	}

	return e.write(companyName, FormatHTML, doc.Bytes(), now)
}

// Markdown writes the brochure text as-is under the same naming scheme as
// HTML exports.
func (e *Exporter) Markdown(markdown, companyName string) (string, error) {
	if !strings.HasSuffix(markdown, "\n") {
		markdown += "\n"
	}
	return e.write(companyName, FormatMarkdown, []byte(markdown), e.now())
}

func (e *Exporter) write(companyName string, format Format, data []byte, t time.Time) (string, error) {
	if err := os.MkdirAll(e.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}

	info := FormatRegistry[format]
	name := sanitizeCompanyName(companyName) + "_" + t.Format("20060102_150405") + info.Extension
	path := filepath.Join(e.outputDir, name)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}
	return path, nil
}

// sanitizeCompanyName reduces a company name to something safe in a
// filename: letters, digits, spaces, dashes, and underscores survive,
// everything else is dropped. A name with nothing left falls back to
// "brochure".
func sanitizeCompanyName(name string) string {
	var sb strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '-' || r == '_' {
			sb.WriteRune(r)
		}
	}

	cleaned := strings.Trim(sb.String(), " ")
	if cleaned == "" {
		return "brochure"
	}
	return cleaned
}
