package rank

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/helixir/paper-search-service/internal/domain"
)

// ScoringStrategy turns a feature vector into one relevance score.
// Implementations are interchangeable and selected by configuration.
type ScoringStrategy interface {
	// Score produces the candidate's relevance from its features.
	Score(f *Features) float64

	// Name identifies the strategy in diagnostics.
	Name() string
}

// WeightedLinear is the hand-tuned linear blend of features. The
// weights sum to 1.0 and are calibration defaults, not exact-value
// requirements.
type WeightedLinear struct{}

var _ ScoringStrategy = WeightedLinear{}

// Score computes the fixed weighted sum. PhraseMatch and
// CitationVelocity contributions are capped so a single signal cannot
// run away with the blend.
func (WeightedLinear) Score(f *Features) float64 {
	velocity := math.Min(f.CitationVelocity/50, 1.0)

	return 0.20*f.BM25Combined +
		0.10*f.BM25Title +
		0.10*f.ExactTitleMatch +
		0.10*math.Min(f.PhraseMatch, 1.0) +
		0.10*f.QueryCoverageTitle +
		0.10*f.CitationPercentile +
		0.05*velocity +
		0.05*f.SourceReputation +
		0.10*f.TemporalRelevance +
		0.05*f.SemanticSimilarity +
		0.05*f.TopicRelevance
}

func (WeightedLinear) Name() string { return "weighted_linear" }

// Regression scores candidates with trained coefficients over the
// fixed feature order of Features.Vector.
type Regression struct {
	// Coefficients must match len(featureOrder).
	Coefficients []float64

	// Intercept is added to the weighted sum.
	Intercept float64
}

var _ ScoringStrategy = (*Regression)(nil)

// NewRegression validates the coefficient vector length.
func NewRegression(coefficients []float64, intercept float64) (*Regression, error) {
	if len(coefficients) != len(featureOrder) {
		return nil, fmt.Errorf("regression model expects %d coefficients, got %d",
			len(featureOrder), len(coefficients))
	}
	return &Regression{Coefficients: coefficients, Intercept: intercept}, nil
}

func (r *Regression) Score(f *Features) float64 {
	score := r.Intercept
	for i, v := range f.Vector() {
		score += r.Coefficients[i] * v
	}
	return score
}

func (r *Regression) Name() string { return "regression" }

// AdvancedRankerConfig tunes the feature-based ranker.
type AdvancedRankerConfig struct {
	// DiversityLambda balances relevance against redundancy in the MMR
	// pass. 1.0 disables diversification.
	DiversityLambda float64

	// MaxExplanations bounds the per-response explanation list.
	MaxExplanations int

	// BM25 parameterizes the per-field scorers.
	BM25 BM25Params
}

// DefaultAdvancedRankerConfig returns the standard tuning.
func DefaultAdvancedRankerConfig() AdvancedRankerConfig {
	return AdvancedRankerConfig{
		DiversityLambda: 0.5,
		MaxExplanations: 10,
		BM25:            DefaultBM25Params(),
	}
}

// AdvancedRanker scores candidates with a multi-signal feature vector,
// applies MMR diversity re-ranking, and emits per-result explanations.
// It replaces the optimizer's ordering, not its pooling.
type AdvancedRanker struct {
	cfg         AdvancedRankerConfig
	strategy    ScoringStrategy
	reputations *ReputationTable
}

// NewAdvancedRanker creates a ranker with the given strategy. A nil
// strategy falls back to the weighted linear blend; a nil reputation
// table falls back to the built-in seed.
func NewAdvancedRanker(cfg AdvancedRankerConfig, strategy ScoringStrategy, reputations *ReputationTable) *AdvancedRanker {
	def := DefaultAdvancedRankerConfig()
	if cfg.DiversityLambda <= 0 {
		cfg.DiversityLambda = def.DiversityLambda
	}
	if cfg.MaxExplanations <= 0 {
		cfg.MaxExplanations = def.MaxExplanations
	}
	if cfg.BM25.K1 == 0 {
		cfg.BM25 = def.BM25
	}
	if strategy == nil {
		strategy = WeightedLinear{}
	}
	if reputations == nil {
		reputations = DefaultReputationTable()
	}
	return &AdvancedRanker{cfg: cfg, strategy: strategy, reputations: reputations}
}

// Rank re-scores the candidate pool with the full feature set, orders
// by score, applies MMR diversification, and returns the reordered pool
// together with ranking diagnostics.
func (r *AdvancedRanker) Rank(rawQuery string, terms, phrases []string, pool []*Candidate) ([]*Candidate, *domain.RankingDiagnostics) {
	start := time.Now()
	diag := &domain.RankingDiagnostics{
		Strategy:        r.strategy.Name(),
		SourceSpread:    make(map[string]int),
		YearSpread:      make(map[string]int),
		CitationBuckets: make(map[string]int),
		DiversityLambda: r.cfg.DiversityLambda,
	}
	if len(pool) == 0 {
		diag.Duration = time.Since(start)
		return pool, diag
	}

	papers := make([]*domain.Paper, len(pool))
	for i, c := range pool {
		papers[i] = c.Paper
	}
	extractor := NewFeatureExtractor(rawQuery, terms, phrases, papers, r.cfg.BM25, r.reputations)

	features := make(map[*Candidate]*Features, len(pool))
	for _, c := range pool {
		f := extractor.Extract(c)
		features[c] = f
		c.FinalScore = sanitizeScore(r.strategy.Score(f))
	}

	sort.SliceStable(pool, func(i, j int) bool {
		return pool[i].FinalScore > pool[j].FinalScore
	})

	pool = Diversify(pool, r.cfg.DiversityLambda)

	r.fillDiagnostics(diag, pool, features)
	diag.Duration = time.Since(start)
	return pool, diag
}

// fillDiagnostics computes the score distribution, spreads, and the
// top-result explanations.
func (r *AdvancedRanker) fillDiagnostics(diag *domain.RankingDiagnostics, pool []*Candidate, features map[*Candidate]*Features) {
	minScore := math.Inf(1)
	maxScore := math.Inf(-1)
	sum := 0.0

	for _, c := range pool {
		s := c.FinalScore
		if s < minScore {
			minScore = s
		}
		if s > maxScore {
			maxScore = s
		}
		sum += s

		diag.SourceSpread[c.Source]++
		diag.YearSpread[c.Paper.Year]++
		diag.CitationBuckets[citationBucket(c.Paper.Citations())]++
	}

	diag.ScoreMin = minScore
	diag.ScoreMax = maxScore
	diag.ScoreMean = sum / float64(len(pool))

	limit := r.cfg.MaxExplanations
	if limit > len(pool) {
		limit = len(pool)
	}
	diag.Explanations = make([]domain.ScoreExplanation, 0, limit)
	for _, c := range pool[:limit] {
		f := features[c]
		diag.Explanations = append(diag.Explanations, domain.ScoreExplanation{
			Title:          c.Paper.Title,
			Score:          c.FinalScore,
			PrimaryFactors: primaryFactors(f),
			Features:       f.Map(),
		})
	}
}

// citationBucket labels a citation count for the diagnostics histogram.
func citationBucket(citations int) string {
	switch {
	case citations <= 0:
		return "0"
	case citations < 20:
		return "1-19"
	case citations < 100:
		return "20-99"
	case citations < 500:
		return "100-499"
	default:
		return "500+"
	}
}

// primaryFactors names the strongest signals behind a score.
func primaryFactors(f *Features) []string {
	var factors []string
	if f.ExactTitleMatch > 0 {
		factors = append(factors, "exact title match")
	}
	if f.PhraseMatch > 0 {
		factors = append(factors, "phrase match")
	}
	if f.BM25Combined > 1.0 {
		factors = append(factors, "strong text relevance")
	}
	if f.CitationPercentile >= 0.85 {
		factors = append(factors, "highly cited")
	}
	if f.TemporalRelevance >= 0.8 {
		factors = append(factors, "recent publication")
	}
	if f.SourceReputation >= 0.85 {
		factors = append(factors, "reputable source")
	}
	if len(factors) == 0 {
		factors = append(factors, "general relevance")
	}
	return factors
}
