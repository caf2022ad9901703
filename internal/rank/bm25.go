package rank

import (
	"math"
	"strings"

	"github.com/helixir/paper-search-service/internal/domain"
)

// BM25Params holds the free parameters of the BM25 function. The
// defaults are conventional starting values, tunable via configuration.
type BM25Params struct {
	// K1 controls term-frequency saturation.
	K1 float64

	// B controls document-length normalization.
	B float64
}

// DefaultBM25Params returns the standard parameterization.
func DefaultBM25Params() BM25Params {
	return BM25Params{K1: 1.5, B: 0.75}
}

// BM25 scores text relevance between a query and the papers of one
// corpus. A scorer is fit against a fixed corpus (one source's results,
// or the global merged pool) and must not be reused across corpora: the
// document-frequency table and average length are corpus-specific.
type BM25 struct {
	params  BM25Params
	df      map[string]int
	freqs   []map[string]int
	lengths []int
	avgLen  float64
	index   map[*domain.Paper]int
}

// FitBM25 builds a scorer over the given corpus. The synthetic document
// for each paper is title (weighted 2x) + abstract + journal name.
func FitBM25(params BM25Params, papers []*domain.Paper) *BM25 {
	b := &BM25{
		params: params,
		df:     make(map[string]int),
		freqs:  make([]map[string]int, len(papers)),
		index:  make(map[*domain.Paper]int, len(papers)),
	}

	totalLen := 0
	b.lengths = make([]int, len(papers))
	for i, paper := range papers {
		tokens := documentTokens(paper)
		freqs := termFrequencies(tokens)
		b.freqs[i] = freqs
		b.lengths[i] = len(tokens)
		b.index[paper] = i
		totalLen += len(tokens)

		for term := range freqs {
			b.df[term]++
		}
	}

	if len(papers) > 0 {
		b.avgLen = float64(totalLen) / float64(len(papers))
	}
	return b
}

// documentTokens builds the synthetic scoring document for one paper.
// Title tokens are counted twice so title matches dominate.
func documentTokens(paper *domain.Paper) []string {
	title := Tokenize(paper.Title)
	abstract := Tokenize(paper.Abstract)
	journal := Tokenize(paper.Journal)

	tokens := make([]string, 0, 2*len(title)+len(abstract)+len(journal))
	tokens = append(tokens, title...)
	tokens = append(tokens, title...)
	tokens = append(tokens, abstract...)
	tokens = append(tokens, journal...)
	return tokens
}

// Size returns the number of documents in the fitted corpus.
func (b *BM25) Size() int {
	return len(b.freqs)
}

// Score computes the BM25 score of the query terms against one paper of
// the fitted corpus. Papers outside the corpus score zero.
func (b *BM25) Score(terms []string, paper *domain.Paper) float64 {
	i, ok := b.index[paper]
	if !ok || len(terms) == 0 {
		return 0
	}

	n := float64(len(b.freqs))
	docLen := float64(b.lengths[i])
	lenNorm := 1.0
	if b.avgLen > 0 {
		lenNorm = 1 - b.params.B + b.params.B*docLen/b.avgLen
	}

	score := 0.0
	for _, term := range terms {
		tf := float64(b.freqs[i][term])
		if tf == 0 {
			continue
		}
		df := float64(b.df[term])
		idf := math.Log((n - df + 0.5) / (df + 0.5))
		score += idf * (tf * (b.params.K1 + 1)) / (tf + b.params.K1*lenNorm)
	}
	return score
}

// ScoreWithBoosts applies the post-multipliers on top of the raw BM25
// score: x2.0 for a verbatim query match in the title, and a recency
// tie-break of x1.1 (year >= 2020) or x1.05 (year >= 2015).
func (b *BM25) ScoreWithBoosts(rawQuery string, terms []string, paper *domain.Paper) float64 {
	score := b.Score(terms, paper)
	return applyBoosts(score, rawQuery, paper)
}

func applyBoosts(score float64, rawQuery string, paper *domain.Paper) float64 {
	q := strings.ToLower(strings.TrimSpace(rawQuery))
	if q != "" && strings.Contains(strings.ToLower(paper.Title), q) {
		score *= 2.0
	}

	if year, ok := paper.YearInt(); ok {
		switch {
		case year >= 2020:
			score *= 1.1
		case year >= 2015:
			score *= 1.05
		}
	}
	return score
}

// sanitizeScore replaces NaN and infinite scores with a neutral 1.0 so
// one malformed candidate never poisons a ranking pass.
func sanitizeScore(score float64) float64 {
	if degradedScore(score) {
		return 1.0
	}
	return score
}

// degradedScore reports whether sanitizeScore will replace the value.
// Callers count these for the scoring-degraded metric.
func degradedScore(score float64) bool {
	return math.IsNaN(score) || math.IsInf(score, 0)
}
