package parser

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

const noBreakSpace = "\u00a0"

// Normalize returns line in NFC form with non-breaking spaces replaced by
// plain spaces, so that visually identical text compares equal.
func Normalize(line string) string {
	if line == "" {
		return ""
	}
	return strings.ReplaceAll(norm.NFC.String(line), noBreakSpace, " ")
}

// splitLines splits text at the same boundaries a text editor would treat as
// line breaks. A trailing break does not produce an extra empty line.
func splitLines(text string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		if !isLineBreak(r) {
			i += size
			continue
		}
		lines = append(lines, text[start:i])
		next := i + size
		if r == '\r' && next < len(text) && text[next] == '\n' {
			next++
		}
		start, i = next, next
	}
	if start < len(text) {
		lines = append(lines, text[start:])
	}
	return lines
}

func isLineBreak(r rune) bool {
	switch r {
	case '\n', '\r', '\v', '\f', '\x1c', '\x1d', '\x1e', '\u0085', '\u2028', '\u2029':
		return true
	}
	return false
}

// strip trims surrounding whitespace. The ASCII information separators
// U+001C..U+001F count as whitespace here, unlike in strings.TrimSpace.
func strip(s string) string {
	return strings.TrimFunc(s, isStripSpace)
}

func isStripSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= '\x1c' && r <= '\x1f')
}
