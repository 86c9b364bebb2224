package export

import (
	"fmt"
	"strings"
)

// FormatInfo provides metadata about an export format.
type FormatInfo struct {
	// Name is the format identifier.
	Name Format

	// MIMEType is the standard MIME type.
	MIMEType string

	// Extension is the file extension (with dot).
	Extension string

	// Description describes the format.
	Description string
}

// FormatRegistry contains metadata for all supported formats.
var FormatRegistry = map[Format]FormatInfo{
	FormatHTML: {
		Name:        FormatHTML,
		MIMEType:    "text/html; charset=utf-8",
		Extension:   ".html",
		Description: "Standalone HTML document with embedded styling",
	},
	FormatMarkdown: {
		Name:        FormatMarkdown,
		MIMEType:    "text/markdown; charset=utf-8",
		Extension:   ".md",
		Description: "Raw brochure markdown",
	},
}

// GetFormatInfo returns metadata for a format.
func GetFormatInfo(format Format) (FormatInfo, bool) {
	info, ok := FormatRegistry[format]
	return info, ok
}

// ParseFormat maps a user-supplied format name to a Format. "md" is
// accepted as shorthand for markdown.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "html":
		return FormatHTML, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("unsupported format: %q (expected html or md)", s)
	}
}
