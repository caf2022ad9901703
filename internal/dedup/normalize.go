// Package dedup collapses same-work duplicates that appear in multiple
// catalogs, keyed by DOI and by normalized title.
package dedup

import (
	"hash/fnv"
	"strings"
	"unicode"
)

// NormalizeTitle canonicalizes a title for duplicate comparison:
//   - Converts to lowercase
//   - Strips all punctuation and other non-letter, non-digit characters
//   - Collapses runs of whitespace to a single space
//   - Trims leading and trailing whitespace
//
// "Machine Learning!" and "machine learning" normalize identically.
func NormalizeTitle(title string) string {
	var b strings.Builder
	b.Grow(len(title))

	lastSpace := true
	for _, r := range strings.ToLower(title) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastSpace = false
		case unicode.IsSpace(r):
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
		}
		// Punctuation and symbols are dropped entirely.
	}

	return strings.TrimSpace(b.String())
}

// TitleKey hashes a normalized title to a fixed-size comparison key.
// FNV-1a keeps the seen-set O(1) per lookup without holding full title
// strings. Returns 0 for titles that normalize to empty.
func TitleKey(title string) uint64 {
	normalized := NormalizeTitle(title)
	if normalized == "" {
		return 0
	}
	h := fnv.New64a()
	h.Write([]byte(normalized))
	return h.Sum64()
}
