package llm

import (
	"regexp"
	"strings"
)

// Models asked for structured output still wrap it in markdown fences,
// sprinkle // comments, or leave trailing commas. These helpers recover
// parseable JSON from such responses before unmarshaling.
var (
	// jsonBlockPattern matches a JSON object inside a markdown code block.
	jsonBlockPattern = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(\\{.*\\})\\s*```")
	// jsonObjectPattern matches any JSON object (greedy fallback).
	jsonObjectPattern = regexp.MustCompile(`(?s)\{[\s\S]*\}`)
	// jsonArrayBlockPattern matches a JSON array inside a markdown code block.
	jsonArrayBlockPattern = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(\\[.*\\])\\s*```")
	// jsonArrayPattern matches any JSON array (greedy fallback).
	jsonArrayPattern = regexp.MustCompile(`(?s)\[[\s\S]*\]`)
	// trailingCommaPattern matches trailing commas before ] or }.
	trailingCommaPattern = regexp.MustCompile(`,\s*([}\]])`)
)

// ExtractJSON extracts a JSON object from an LLM response string.
// Returns an empty string when no object can be found.
func ExtractJSON(content string) string {
	raw := extractRawJSON(content)
	if raw == "" {
		return ""
	}
	return cleanJSON(raw)
}

// ExtractJSONArray extracts a JSON array from an LLM response string.
// Used as a fallback when a model returns a bare array instead of the
// requested wrapper object.
func ExtractJSONArray(content string) string {
	if matches := jsonArrayBlockPattern.FindStringSubmatch(content); len(matches) > 1 {
		return cleanJSON(matches[1])
	}
	if match := jsonArrayPattern.FindString(content); match != "" {
		return cleanJSON(match)
	}
	return ""
}

func extractRawJSON(content string) string {
	// Prefer a fenced block, fall back to the widest object match.
	if matches := jsonBlockPattern.FindStringSubmatch(content); len(matches) > 1 {
		return matches[1]
	}
	if match := jsonObjectPattern.FindString(content); match != "" {
		return match
	}
	return ""
}

// cleanJSON removes JavaScript-style comments and trailing commas.
func cleanJSON(raw string) string {
	lines := strings.Split(raw, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		cleaned = append(cleaned, stripLineComment(line))
	}
	result := strings.Join(cleaned, "\n")

	return trailingCommaPattern.ReplaceAllString(result, "$1")
}

// stripLineComment removes a // comment from a JSON line without touching
// string values, so "https://example.com" survives intact.
func stripLineComment(line string) string {
	if !strings.Contains(line, "//") {
		return line
	}

	inString := false
	escaped := false
	for i := 0; i < len(line); i++ {
		ch := line[i]
		if escaped {
			escaped = false
			continue
		}
		if ch == '\\' && inString {
			escaped = true
			continue
		}
		if ch == '"' {
			inString = !inString
			continue
		}
		if !inString && ch == '/' && i+1 < len(line) && line[i+1] == '/' {
			return strings.TrimRight(line[:i], " \t")
		}
	}
	return line
}
