package service

import (
	"strings"
	"unicode"
)

const (
	snippetRadius     = 100
	bookSnippetRadius = 50
	ellipsis          = "..."
)

// Snippet returns the text around the first case-insensitive match of query,
// radius runes on each side, marking truncated sides with "...". Without a
// match it returns the first 2*radius runes.
func Snippet(content, query string, radius int) string {
	runes := []rune(content)
	q := lowerRunes(query)
	idx := -1
	if len(q) > 0 {
		idx = indexRunes(lowerRunes(content), q)
	}
	if idx < 0 {
		limit := 2 * radius
		if len(runes) <= limit {
			return content
		}
		return string(runes[:limit]) + ellipsis
	}
	start := idx - radius
	if start < 0 {
		start = 0
	}
	end := idx + len(q) + radius
	if end > len(runes) {
		end = len(runes)
	}
	var sb strings.Builder
	if start > 0 {
		sb.WriteString(ellipsis)
	}
	sb.WriteString(string(runes[start:end]))
	if end < len(runes) {
		sb.WriteString(ellipsis)
	}
	return sb.String()
}

// lowerRunes lower-cases rune by rune so indexes line up with the input.
func lowerRunes(s string) []rune {
	out := []rune(s)
	for i, r := range out {
		out[i] = unicode.ToLower(r)
	}
	return out
}

func indexRunes(haystack, needle []rune) int {
	if len(needle) == 0 || len(needle) > len(haystack) {
		return -1
	}
outer:
	for i := 0; i+len(needle) <= len(haystack); i++ {
		for j := range needle {
			if haystack[i+j] != needle[j] {
				continue outer
			}
		}
		return i
	}
	return -1
}

func containsFold(s, substr string) bool {
	return indexRunes(lowerRunes(s), lowerRunes(substr)) >= 0
}
