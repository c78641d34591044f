package normalize

// Variations holds one normalized output per Level, in ascending level
// order. It is built once by Diagnostics and immutable afterwards; the list
// is never empty because the level list is fixed at compile time.
type Variations struct {
	variations []string
}

// Preferred returns the most aggressively normalized variation, the one
// shown to the user when no stored snapshot matches.
func (v Variations) Preferred() string {
	return v.variations[len(v.variations)-1]
}

// Any reports whether any variation satisfies f. The harness uses it to test
// equality against a stored snapshot without this package knowing the
// comparison semantics.
func (v Variations) Any(f func(string) bool) bool {
	for _, variation := range v.variations {
		if f(variation) {
			return true
		}
	}
	return false
}

// At returns the variation computed at the given level.
func (v Variations) At(level Level) string {
	return v.variations[level]
}
