package rank

import (
	"math"
	"strings"
	"time"

	"github.com/helixir/paper-search-service/internal/domain"
)

// Features is the per-candidate feature vector the advanced ranker
// scores. It lives for one ranking pass and is never exposed outside
// this package except as flattened explanation values.
type Features struct {
	BM25Title    float64
	BM25Abstract float64
	BM25Combined float64

	ExactTitleMatch float64
	PhraseMatch     float64

	QueryCoverageTitle    float64
	QueryCoverageAbstract float64

	CitationVelocity   float64
	CitationPercentile float64
	TemporalRelevance  float64

	SourceReputation   float64
	SemanticSimilarity float64
	TopicRelevance     float64
}

// featureOrder fixes the vector layout consumed by regression
// strategies. Changing the order invalidates trained coefficients.
var featureOrder = []string{
	"bm25_combined",
	"bm25_title",
	"bm25_abstract",
	"exact_title_match",
	"phrase_match",
	"query_coverage_title",
	"query_coverage_abstract",
	"citation_percentile",
	"citation_velocity",
	"temporal_relevance",
	"source_reputation",
	"semantic_similarity",
	"topic_relevance",
}

// Vector flattens the features in the fixed order of featureOrder.
func (f *Features) Vector() []float64 {
	return []float64{
		f.BM25Combined,
		f.BM25Title,
		f.BM25Abstract,
		f.ExactTitleMatch,
		f.PhraseMatch,
		f.QueryCoverageTitle,
		f.QueryCoverageAbstract,
		f.CitationPercentile,
		f.CitationVelocity,
		f.TemporalRelevance,
		f.SourceReputation,
		f.SemanticSimilarity,
		f.TopicRelevance,
	}
}

// Map returns the named feature values, for explanations.
func (f *Features) Map() map[string]float64 {
	vec := f.Vector()
	m := make(map[string]float64, len(vec))
	for i, name := range featureOrder {
		m[name] = vec[i]
	}
	return m
}

// FeatureExtractor derives the feature vector for candidates of one
// request. The BM25 scorers are fit on the merged candidate pool before
// extraction begins.
type FeatureExtractor struct {
	rawQuery string
	terms    []string
	phrases  []string

	titleScorer    *BM25
	abstractScorer *BM25
	combinedScorer *BM25

	reputations *ReputationTable
	now         time.Time
}

// NewFeatureExtractor fits the per-field BM25 scorers over the pool and
// prepares query-side state.
func NewFeatureExtractor(
	rawQuery string,
	terms []string,
	phrases []string,
	papers []*domain.Paper,
	params BM25Params,
	reputations *ReputationTable,
) *FeatureExtractor {
	return &FeatureExtractor{
		rawQuery:       rawQuery,
		terms:          terms,
		phrases:        phrases,
		titleScorer:    fitFieldBM25(params, papers, func(p *domain.Paper) string { return p.Title }),
		abstractScorer: fitFieldBM25(params, papers, func(p *domain.Paper) string { return p.Abstract }),
		combinedScorer: FitBM25(params, papers),
		reputations:    reputations,
		now:            time.Now(),
	}
}

// fitFieldBM25 fits a scorer over a single field by projecting each
// paper onto a field-only shadow corpus.
func fitFieldBM25(params BM25Params, papers []*domain.Paper, field func(*domain.Paper) string) *BM25 {
	b := &BM25{
		params: params,
		df:     make(map[string]int),
		freqs:  make([]map[string]int, len(papers)),
		index:  make(map[*domain.Paper]int, len(papers)),
	}

	totalLen := 0
	b.lengths = make([]int, len(papers))
	for i, paper := range papers {
		tokens := Tokenize(field(paper))
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

// Extract computes the feature vector for one candidate.
func (e *FeatureExtractor) Extract(c *Candidate) *Features {
	paper := c.Paper
	f := &Features{
		BM25Title:    sanitizeScore(e.titleScorer.Score(e.terms, paper)),
		BM25Abstract: sanitizeScore(e.abstractScorer.Score(e.terms, paper)),
		BM25Combined: sanitizeScore(e.combinedScorer.Score(e.terms, paper)),
	}

	titleLower := strings.ToLower(paper.Title)
	queryLower := strings.ToLower(strings.TrimSpace(e.rawQuery))
	if queryLower != "" && strings.Contains(titleLower, queryLower) {
		f.ExactTitleMatch = 1.0
	}

	// Phrase matches are capped at 1.0 so many short phrases cannot
	// dominate the linear blend.
	text := titleLower + " " + strings.ToLower(paper.Abstract)
	matches := 0.0
	for _, phrase := range e.phrases {
		if p := strings.ToLower(phrase); p != "" && strings.Contains(text, p) {
			matches += 0.5
		}
	}
	f.PhraseMatch = math.Min(matches, 1.0)

	titleTokens := Tokenize(paper.Title)
	abstractTokens := Tokenize(paper.Abstract)
	f.QueryCoverageTitle = coverage(e.terms, titleTokens)
	f.QueryCoverageAbstract = coverage(e.terms, abstractTokens)

	f.CitationVelocity, f.TemporalRelevance = e.ageSignals(paper)
	f.CitationPercentile = citationPercentile(paper.Citations())

	f.SourceReputation = e.reputations.Lookup(paper)

	docTokens := append(append([]string(nil), titleTokens...), abstractTokens...)
	f.SemanticSimilarity = jaccard(e.terms, docTokens)
	f.TopicRelevance = topicRelevance(e.terms, paper.Subjects)

	return f
}

// coverage is the fraction of query terms present in the token list.
func coverage(terms, tokens []string) float64 {
	if len(terms) == 0 || len(tokens) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		set[tok] = struct{}{}
	}
	found := 0
	for _, term := range terms {
		if _, ok := set[term]; ok {
			found++
		}
	}
	return float64(found) / float64(len(terms))
}

// ageSignals derives citation velocity and temporal relevance from the
// publication year. Papers with unknown years get zero velocity and a
// mid-range temporal score.
func (e *FeatureExtractor) ageSignals(paper *domain.Paper) (velocity, temporal float64) {
	year, ok := paper.YearInt()
	if !ok {
		return 0, 0.5
	}

	yearsOld := float64(e.now.Year() - year)
	if yearsOld < 0 {
		yearsOld = 0
	}

	velocity = float64(paper.Citations()) / math.Max(1, yearsOld)
	temporal = math.Exp(-yearsOld / 10)

	// An older paper that keeps accumulating citations is still
	// relevant; counteract pure age decay for such outliers.
	if yearsOld > 5 && velocity > 10 {
		temporal = math.Min(1.0, temporal*1.5)
	}
	return velocity, temporal
}

// citationPercentile maps a raw citation count onto fixed buckets.
func citationPercentile(citations int) float64 {
	switch {
	case citations <= 0:
		return 0.0
	case citations < 5:
		return 0.3
	case citations < 20:
		return 0.5
	case citations < 50:
		return 0.7
	case citations < 100:
		return 0.85
	case citations < 500:
		return 0.95
	default:
		return 0.99
	}
}

// topicRelevance is the fraction of query terms appearing in the
// paper's subject tags.
func topicRelevance(terms []string, subjects []string) float64 {
	if len(terms) == 0 || len(subjects) == 0 {
		return 0
	}
	var subjectTokens []string
	for _, s := range subjects {
		subjectTokens = append(subjectTokens, Tokenize(s)...)
	}
	return coverage(terms, subjectTokens)
}
