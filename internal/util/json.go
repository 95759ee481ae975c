package util

import "strings"

// ExtractJSONObject returns the first balanced {...} region of text, or the
// text itself when none is found. Models often wrap JSON in prose or fences.
func ExtractJSONObject(text string) string {
	return extractBalanced(text, '{', '}')
}

// ExtractJSONArray returns the first balanced [...] region of text, or the
// text itself when none is found.
func ExtractJSONArray(text string) string {
	return extractBalanced(text, '[', ']')
}

// extractBalanced scans for the first balanced open/close region, skipping
// delimiters inside JSON string literals.
func extractBalanced(text string, open, close byte) string {
	start := strings.IndexByte(text, open)
	if start < 0 {
		return text
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		ch := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}
	return text
}
