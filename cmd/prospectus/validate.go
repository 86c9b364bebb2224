package main

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

var htmlTagPattern = regexp.MustCompile(`<[^>]+>`)

// validateCompanyName enforces the 2 to 100 character bounds on the trimmed
// name.
func validateCompanyName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return fmt.Errorf("company name cannot be empty")
	}

	n := utf8.RuneCountInString(trimmed)
	if n < 2 {
		return fmt.Errorf("company name must be at least 2 characters")
	}
	if n > 100 {
		return fmt.Errorf("company name must be less than 100 characters")
	}
	return nil
}

func validateTemperature(t float64) error {
	if t < 0 || t > 1 {
		return fmt.Errorf("temperature must be between 0 and 1")
	}
	return nil
}

func validateMaxContentLength(n int) error {
	if n < 1000 || n > 10000 {
		return fmt.Errorf("max content length must be between 1000 and 10000")
	}
	return nil
}

// sanitizeText strips HTML tags and collapses whitespace in free-form user
// input before it reaches a prompt.
func sanitizeText(text string) string {
	text = htmlTagPattern.ReplaceAllString(text, "")
	return strings.Join(strings.Fields(text), " ")
}
