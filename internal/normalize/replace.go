package normalize

import "strings"

// replaceCaseInsensitive replaces every occurrence of needle in haystack
// with replacement, comparing ASCII letters case-insensitively. Only the
// comparison folds case: unmatched bytes are copied from haystack verbatim.
//
// The fold is ASCII-only on purpose. Diagnostic paths and identifiers stay
// within ASCII, and an ASCII fold never changes byte lengths, which keeps
// the match offsets valid against the original string.
func replaceCaseInsensitive(haystack, needle, replacement string) string {
	if needle == "" {
		return haystack
	}

	foldedHay := foldASCII(haystack)
	foldedNeedle := foldASCII(needle)

	var b strings.Builder
	start := 0
	for {
		i := strings.Index(foldedHay[start:], foldedNeedle)
		if i < 0 {
			break
		}
		match := start + i
		b.WriteString(haystack[start:match])
		b.WriteString(replacement)
		start = match + len(needle)
	}
	if start == 0 {
		return haystack
	}
	b.WriteString(haystack[start:])
	return b.String()
}

// foldASCII lowercases ASCII letters only, leaving every other byte intact,
// so the result is byte-for-byte aligned with the input.
func foldASCII(s string) string {
	hasUpper := false
	for i := 0; i < len(s); i++ {
		if c := s[i]; 'A' <= c && c <= 'Z' {
			hasUpper = true
			break
		}
	}
	if !hasUpper {
		return s
	}
	b := []byte(s)
	for i, c := range b {
		if 'A' <= c && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
