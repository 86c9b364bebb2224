package brochure

import (
	"strings"
	"unicode/utf8"
)

// Buffer accumulates page sections under a hard byte budget. Once the budget
// is reached further writes are dropped, cutting mid-section if necessary.
// The cut lands on a rune boundary so the result stays valid UTF-8 without
// ever exceeding the budget.
type Buffer struct {
	limit int
	sb    strings.Builder
	full  bool
}

// NewBuffer creates a buffer holding at most limit bytes. A zero or negative
// limit means unbounded.
func NewBuffer(limit int) *Buffer {
	return &Buffer{limit: limit}
}

// WriteSection appends s, truncating it if the budget would be exceeded.
// It reports whether the whole section fit.
func (b *Buffer) WriteSection(s string) bool {
	if b.full {
		return false
	}
	if b.limit <= 0 {
		b.sb.WriteString(s)
		return true
	}

	remaining := b.limit - b.sb.Len()
	if len(s) <= remaining {
		b.sb.WriteString(s)
		return true
	}

	b.sb.WriteString(truncateToRuneBoundary(s, remaining))
	b.full = true
	return false
}

// String returns the accumulated content.
func (b *Buffer) String() string {
	return b.sb.String()
}

// Len returns the accumulated length in bytes.
func (b *Buffer) Len() int {
	return b.sb.Len()
}

// Truncated reports whether any write was cut or dropped.
func (b *Buffer) Truncated() bool {
	return b.full
}

// truncateToRuneBoundary cuts s to at most max bytes without splitting a
// rune.
func truncateToRuneBoundary(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if len(s) <= max {
		return s
	}

	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
