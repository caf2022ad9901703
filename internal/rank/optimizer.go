package rank

import (
	"sort"

	"github.com/helixir/paper-search-service/internal/domain"
	"github.com/helixir/paper-search-service/internal/sources"
)

// Candidate is one scored paper flowing through the optimization
// pipeline. Created per request, consumed by the deduplicator, never
// persisted.
type Candidate struct {
	Paper  *domain.Paper
	Source string

	// Weight is the source's effective reputation weight for this
	// request's discipline.
	Weight float64

	// LocalScore is the weighted BM25 score against the source's own
	// corpus (stage A).
	LocalScore float64

	// GlobalScore is the weighted BM25 score against the merged pool
	// (stage B).
	GlobalScore float64

	// FinalScore is the blended score the final ordering uses.
	FinalScore float64
}

// OptimizerConfig carries the tunable constants of the two-stage
// optimizer. The defaults encode the intended policy (premium sources
// may dominate, weak sources keep a guaranteed floor); none of the
// exact values is load-bearing.
type OptimizerConfig struct {
	// PerSourceTarget is the nominal number of candidates each source
	// contributes to the global pool.
	PerSourceTarget int

	// PremiumWeight and GoodWeight split sources into the three
	// keep-count bands.
	PremiumWeight float64
	GoodWeight    float64

	// PremiumMultiplier and PremiumFloor bound the keep-count of
	// premium sources relative to PerSourceTarget.
	PremiumMultiplier float64
	PremiumFloor      float64

	// GoodMultiplier scales the keep-count of mid-trust sources.
	GoodMultiplier float64

	// MinimumKeep is the absolute per-source floor so thin or low-trust
	// sources still contribute to recall.
	MinimumKeep int

	// GlobalWeight and LocalWeight blend the two scoring passes.
	GlobalWeight float64
	LocalWeight  float64

	// MaxPoolSize truncates the merged pool after the global pass.
	MaxPoolSize int

	// BM25 parameterizes both scoring passes.
	BM25 BM25Params
}

// DefaultOptimizerConfig returns the standard tuning.
func DefaultOptimizerConfig() OptimizerConfig {
	return OptimizerConfig{
		PerSourceTarget:   50,
		PremiumWeight:     0.9,
		GoodWeight:        0.7,
		PremiumMultiplier: 2.0,
		PremiumFloor:      1.5,
		GoodMultiplier:    1.2,
		MinimumKeep:       30,
		GlobalWeight:      0.6,
		LocalWeight:       0.4,
		MaxPoolSize:       1000,
		BM25:              DefaultBM25Params(),
	}
}

// Optimizer runs the two-stage scoring pipeline: per-source quality
// filtering, local BM25 scoring and adaptive truncation (stage A), then
// a global re-fit over the merged pool with blended final scores
// (stage B). The quality filter arrives per call because the request
// may relax its author check.
type Optimizer struct {
	cfg OptimizerConfig
}

// NewOptimizer creates an optimizer. Zero-valued config fields fall
// back to the defaults.
func NewOptimizer(cfg OptimizerConfig) *Optimizer {
	def := DefaultOptimizerConfig()
	if cfg.PerSourceTarget <= 0 {
		cfg.PerSourceTarget = def.PerSourceTarget
	}
	if cfg.PremiumWeight == 0 {
		cfg.PremiumWeight = def.PremiumWeight
	}
	if cfg.GoodWeight == 0 {
		cfg.GoodWeight = def.GoodWeight
	}
	if cfg.PremiumMultiplier == 0 {
		cfg.PremiumMultiplier = def.PremiumMultiplier
	}
	if cfg.PremiumFloor == 0 {
		cfg.PremiumFloor = def.PremiumFloor
	}
	if cfg.GoodMultiplier == 0 {
		cfg.GoodMultiplier = def.GoodMultiplier
	}
	if cfg.MinimumKeep <= 0 {
		cfg.MinimumKeep = def.MinimumKeep
	}
	if cfg.GlobalWeight == 0 {
		cfg.GlobalWeight = def.GlobalWeight
	}
	if cfg.LocalWeight == 0 {
		cfg.LocalWeight = def.LocalWeight
	}
	if cfg.MaxPoolSize <= 0 {
		cfg.MaxPoolSize = def.MaxPoolSize
	}
	if cfg.BM25.K1 == 0 {
		cfg.BM25 = def.BM25
	}
	return &Optimizer{cfg: cfg}
}

// OptimizeSource runs stage A for one source: quality-filter the raw
// results, fit BM25 on the source's own corpus, score and weight every
// survivor, drop anything under the source's minimum quality score,
// then keep an adaptive count based on the source's trust band. The
// returned drop counts are per reason; degraded counts the scores the
// neutral fallback replaced.
func (o *Optimizer) OptimizeSource(
	rawQuery string,
	terms []string,
	papers []*domain.Paper,
	profile sources.Profile,
	discipline string,
	filter QualityFilter,
) (candidates []*Candidate, dropped map[string]int, degraded int) {
	kept, dropped := filter.Filter(papers, profile)
	if len(kept) == 0 {
		return nil, dropped, 0
	}

	weight := profile.WeightFor(discipline)
	scorer := FitBM25(o.cfg.BM25, kept)

	candidates = make([]*Candidate, 0, len(kept))
	sum := 0.0
	for _, paper := range kept {
		raw := scorer.ScoreWithBoosts(rawQuery, terms, paper)
		if degradedScore(raw) {
			degraded++
		}
		score := sanitizeScore(raw) * weight
		if profile.MinQuality > 0 && score < profile.MinQuality {
			dropped[DropReasonScore]++
			continue
		}
		sum += score
		candidates = append(candidates, &Candidate{
			Paper:      paper,
			Source:     profile.Name,
			Weight:     weight,
			LocalScore: score,
		})
	}
	if len(candidates) == 0 {
		return nil, dropped, degraded
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].LocalScore > candidates[j].LocalScore
	})

	keep := o.keepCount(weight, candidates, sum/float64(len(candidates)))
	if keep < len(candidates) {
		candidates = candidates[:keep]
	}
	return candidates, dropped, degraded
}

// keepCount computes the adaptive per-source keep-count. Premium
// sources keep their above-average scorers up to 2x the target with a
// 1.5x floor; mid-trust sources keep ~1.2x the target; everything else
// keeps the target with an absolute minimum.
func (o *Optimizer) keepCount(weight float64, sorted []*Candidate, avg float64) int {
	target := o.cfg.PerSourceTarget

	// Baseline every band is floored at, so a higher weight can never
	// retain fewer candidates than a lower one.
	base := target
	if base < o.cfg.MinimumKeep {
		base = o.cfg.MinimumKeep
	}

	keep := base
	switch {
	case weight >= o.cfg.PremiumWeight:
		aboveAvg := 0
		for _, c := range sorted {
			if c.LocalScore > avg {
				aboveAvg++
			}
		}
		keep = aboveAvg
		if floor := int(o.cfg.PremiumFloor * float64(target)); keep < floor {
			keep = floor
		}
		if limit := int(o.cfg.PremiumMultiplier * float64(target)); keep > limit {
			keep = limit
		}
	case weight >= o.cfg.GoodWeight:
		keep = int(o.cfg.GoodMultiplier * float64(target))
	}
	if keep < base {
		keep = base
	}

	if keep > len(sorted) {
		keep = len(sorted)
	}
	return keep
}

// Merge runs stage B: pool every source's kept candidates, re-fit BM25
// across the combined corpus to capture cross-source term statistics,
// blend the global and local scores, sort descending, and truncate to
// the pool bound. The input order within equal scores is preserved
// (stable sort), so pagination over the output is deterministic.
// degraded counts the scores the neutral fallback replaced.
func (o *Optimizer) Merge(rawQuery string, terms []string, perSource [][]*Candidate) (merged []*Candidate, degraded int) {
	total := 0
	for _, cs := range perSource {
		total += len(cs)
	}
	if total == 0 {
		return nil, 0
	}

	pool := make([]*Candidate, 0, total)
	papers := make([]*domain.Paper, 0, total)
	for _, cs := range perSource {
		pool = append(pool, cs...)
		for _, c := range cs {
			papers = append(papers, c.Paper)
		}
	}

	scorer := FitBM25(o.cfg.BM25, papers)
	for _, c := range pool {
		raw := scorer.ScoreWithBoosts(rawQuery, terms, c.Paper)
		if degradedScore(raw) {
			degraded++
		}
		global := sanitizeScore(raw) * c.Weight
		c.GlobalScore = global
		c.FinalScore = o.cfg.GlobalWeight*global + o.cfg.LocalWeight*c.LocalScore
	}

	sort.SliceStable(pool, func(i, j int) bool {
		return pool[i].FinalScore > pool[j].FinalScore
	})

	if len(pool) > o.cfg.MaxPoolSize {
		pool = pool[:o.cfg.MaxPoolSize]
	}
	return pool, degraded
}
