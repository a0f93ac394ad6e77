// Package utils provides the string normalization helpers used when deriving
// compiled method names from operation ids.
package utils

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nonAlnum = regexp.MustCompile(`[^A-Za-z0-9]+`)

// RemoveAccents converts accented characters to their base forms.
func RemoveAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

// SplitWords splits a string on word boundaries, handling camelCase,
// PascalCase, snake_case, kebab-case, and whitespace.
func SplitWords(s string) []string {
	s = RemoveAccents(strings.TrimSpace(s))
	if s == "" {
		return nil
	}
	var words []string
	for _, part := range nonAlnum.Split(s, -1) {
		if part == "" {
			continue
		}
		words = append(words, splitCamelCase(part)...)
	}
	return words
}

// splitCamelCase splits camelCase and PascalCase runs, keeping acronyms
// together ("XMLHttp" becomes "XML", "Http").
func splitCamelCase(s string) []string {
	if s == "" {
		return nil
	}
	var parts []string
	var current strings.Builder
	rs := []rune(s)
	for i, r := range rs {
		boundary := false
		if i > 0 && isUpper(r) {
			if !isUpper(rs[i-1]) {
				boundary = true
			} else if i < len(rs)-1 && !isUpper(rs[i+1]) {
				boundary = true
			}
		}
		if boundary && current.Len() > 0 {
			parts = append(parts, current.String())
			current.Reset()
		}
		current.WriteRune(r)
	}
	if current.Len() > 0 {
		parts = append(parts, current.String())
	}
	return parts
}

func isUpper(r rune) bool {
	return r >= 'A' && r <= 'Z'
}

// ToPascalCase converts a string to PascalCase word-boundary form.
func ToPascalCase(s string) string {
	words := SplitWords(s)
	if len(words) == 0 {
		return ""
	}
	var b strings.Builder
	for _, w := range words {
		b.WriteString(strings.ToUpper(w[:1]))
		if len(w) > 1 {
			b.WriteString(strings.ToLower(w[1:]))
		}
	}
	return b.String()
}
