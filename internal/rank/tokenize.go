// Package rank implements the relevance pipeline: BM25 text scoring,
// quality filtering, per-source and global optimization, the optional
// multi-feature ranker with diversity re-ranking, and the shared
// tokenizer all of them use.
//
// Corpus statistics are recomputed fresh per request; nothing in this
// package caches across requests, so everything here is safe for
// concurrent use.
package rank

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	markupRe = regexp.MustCompile(`<[^>]*>`)
	splitRe  = regexp.MustCompile(`[^\p{L}\p{N}]+`)
)

// Tokenize lowercases text, strips markup, splits on non-word
// boundaries, and drops tokens of length <= 2 and numeric tokens that
// are not plausible publication years.
func Tokenize(text string) []string {
	if text == "" {
		return nil
	}

	text = markupRe.ReplaceAllString(text, " ")
	text = strings.ToLower(text)

	raw := splitRe.Split(text, -1)
	tokens := make([]string, 0, len(raw))
	for _, tok := range raw {
		if len(tok) <= 2 {
			continue
		}
		if n, err := strconv.Atoi(tok); err == nil && !isPlausibleYear(n) {
			continue
		}
		tokens = append(tokens, tok)
	}
	if len(tokens) == 0 {
		return nil
	}
	return tokens
}

// isPlausibleYear bounds the numeric tokens the tokenizer keeps. Years
// carry relevance signal ("climate 2020"); other numbers are noise.
func isPlausibleYear(n int) bool {
	return n >= 1500 && n <= 2100
}

// QueryTerms normalizes parsed query parts into scoring terms. Each
// part runs through the same tokenizer the corpus side uses, so quoted
// phrases split into single tokens and case or punctuation differences
// never cost a match. Duplicates collapse: a word appearing in both a
// phrase and a keyword counts once.
func QueryTerms(parts []string) []string {
	seen := make(map[string]struct{})
	terms := make([]string, 0, len(parts))
	for _, part := range parts {
		for _, tok := range Tokenize(part) {
			if _, dup := seen[tok]; dup {
				continue
			}
			seen[tok] = struct{}{}
			terms = append(terms, tok)
		}
	}
	if len(terms) == 0 {
		return nil
	}
	return terms
}

// termFrequencies counts token occurrences.
func termFrequencies(tokens []string) map[string]int {
	freqs := make(map[string]int, len(tokens))
	for _, tok := range tokens {
		freqs[tok]++
	}
	return freqs
}

// jaccard computes token-set Jaccard similarity between two token lists.
// Returns 0 when either side is empty.
func jaccard(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	setA := make(map[string]struct{}, len(a))
	for _, tok := range a {
		setA[tok] = struct{}{}
	}
	setB := make(map[string]struct{}, len(b))
	for _, tok := range b {
		setB[tok] = struct{}{}
	}
	inter := 0
	for tok := range setA {
		if _, ok := setB[tok]; ok {
			inter++
		}
	}
	union := len(setA) + len(setB) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}
